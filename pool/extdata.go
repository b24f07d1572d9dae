package pool

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ExtData is every mutable withdrawal parameter. Its hash is a public input
// of the withdrawal proof, so a relayer cannot change any field after the
// prover signed off: the proof says "I know a note under this root" and this
// hash pins where the payout goes.
type ExtData struct {
	DestinationChain string
	StealthAddress   common.Address
	EphemeralPubKey  []byte
	ViewHint         byte
	K                uint32
	AmountToBridge   uint64
	RelayerFee       uint64
	BridgeAddress    common.Address
	TokenID          string
}

// Hash digests the canonical encoding with Keccak256 and reduces it into the
// scalar field so it can serve as a public input. Variable-length fields are
// length-prefixed so distinct parameter sets never share an encoding.
func (e *ExtData) Hash() []byte {
	var buf bytes.Buffer
	writeLenPrefixed(&buf, []byte(e.DestinationChain))
	buf.Write(e.StealthAddress.Bytes())
	writeLenPrefixed(&buf, e.EphemeralPubKey)
	buf.WriteByte(e.ViewHint)

	var scratch [8]byte
	binary.BigEndian.PutUint32(scratch[:4], e.K)
	buf.Write(scratch[:4])
	binary.BigEndian.PutUint64(scratch[:], e.AmountToBridge)
	buf.Write(scratch[:])
	binary.BigEndian.PutUint64(scratch[:], e.RelayerFee)
	buf.Write(scratch[:])

	buf.Write(e.BridgeAddress.Bytes())
	writeLenPrefixed(&buf, []byte(e.TokenID))

	digest := new(big.Int).SetBytes(crypto.Keccak256(buf.Bytes()))
	digest.Mod(digest, fr.Modulus())
	out := make([]byte, fr.Bytes)
	digest.FillBytes(out)
	return out
}

func writeLenPrefixed(buf *bytes.Buffer, b []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(b)))
	buf.Write(n[:])
	buf.Write(b)
}

// checkFieldElement rejects public inputs that are not canonical field
// elements: empty, longer than the field's byte size, or numerically at or
// above the scalar field modulus.
func checkFieldElement(b []byte) error {
	if len(b) == 0 || len(b) > fr.Bytes {
		return ErrInvalidFieldElement
	}
	if new(big.Int).SetBytes(b).Cmp(fr.Modulus()) >= 0 {
		return ErrInvalidFieldElement
	}
	return nil
}
