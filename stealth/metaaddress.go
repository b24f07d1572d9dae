package stealth

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/AmaanSayyad/Private-Pay-sub002/config"
)

// payment links carry the spend key first, then the viewing key
const linkPrefix = "pp:"

// String encodes the meta-address as a shareable payment link.
func (m *MetaAddress) String() string {
	raw := make([]byte, 0, 2*config.CompressedPubKeySize)
	raw = append(raw, m.SpendPubKey...)
	raw = append(raw, m.ViewPubKey...)
	return linkPrefix + hexutil.Encode(raw)
}

// Validate checks both public keys of the meta-address.
func (m *MetaAddress) Validate() error {
	if err := ValidatePublicKey(m.SpendPubKey); err != nil {
		return fmt.Errorf("spend key: %w", err)
	}
	if err := ValidatePublicKey(m.ViewPubKey); err != nil {
		return fmt.Errorf("viewing key: %w", err)
	}
	return nil
}

// ParseMetaAddress decodes a payment link produced by String and validates
// both embedded keys.
func ParseMetaAddress(link string) (*MetaAddress, error) {
	if !strings.HasPrefix(link, linkPrefix) {
		return nil, fmt.Errorf("payment link must start with %q", linkPrefix)
	}
	raw, err := hexutil.Decode(strings.TrimPrefix(link, linkPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to decode payment link: %v", err)
	}
	if len(raw) != 2*config.CompressedPubKeySize {
		return nil, fmt.Errorf("payment link encodes %d bytes, expected %d",
			len(raw), 2*config.CompressedPubKeySize)
	}
	meta := &MetaAddress{
		SpendPubKey: raw[:config.CompressedPubKeySize],
		ViewPubKey:  raw[config.CompressedPubKeySize:],
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}
