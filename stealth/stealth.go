// Package stealth implements the one-time address scheme: a payer derives a
// fresh, unlinkable destination from a recipient's static meta-address and an
// ephemeral key, and the recipient later detects the payment and recovers the
// matching private key with the viewing and spend keys.
package stealth

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/AmaanSayyad/Private-Pay-sub002/config"
)

// ErrInvalidKey is returned when a public key is malformed or off-curve.
var ErrInvalidKey = errors.New("stealth: invalid public key")

// MetaAddress is the recipient's static key pair, created once and shared
// out-of-band. Both keys are 33-byte compressed curve points.
type MetaAddress struct {
	SpendPubKey []byte
	ViewPubKey  []byte
}

// MetaKeys holds the private halves of a meta-address. The viewing key alone
// can detect payments; spending them requires the spend key too.
type MetaKeys struct {
	SpendKey *ecdsa.PrivateKey
	ViewKey  *ecdsa.PrivateKey
}

// MetaAddress returns the public meta-address for the key set.
func (mk *MetaKeys) MetaAddress() *MetaAddress {
	return &MetaAddress{
		SpendPubKey: crypto.CompressPubkey(&mk.SpendKey.PublicKey),
		ViewPubKey:  crypto.CompressPubkey(&mk.ViewKey.PublicKey),
	}
}

// Payment is what the payer publishes alongside the funds: the one-time
// address plus the data the recipient needs to notice and spend it.
type Payment struct {
	Address         common.Address
	EphemeralPubKey []byte
	ViewHint        byte
	K               uint32
	StealthPubKey   []byte
}

// GenerateMetaAddress produces two independent keypairs (spend, viewing).
// It fails only if the underlying random source is unavailable.
func GenerateMetaAddress() (*MetaAddress, *MetaKeys, error) {
	spend, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate spend key: %v", err)
	}
	view, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate viewing key: %v", err)
	}
	keys := &MetaKeys{SpendKey: spend, ViewKey: view}
	return keys.MetaAddress(), keys, nil
}

// NewEphemeralKey returns a fresh keypair for a single payment. The private
// part is discarded after use unless the payer needs to retry.
func NewEphemeralKey() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ephemeral key: %v", err)
	}
	return key, nil
}

// DeriveStealthAddress computes the one-time address for the payment index k:
// the ephemeral key is combined with the viewing key into a shared secret,
// the secret and k give a tweak scalar, and the address is the digest of
// spendPubKey + tweak*G. The first byte of the shared secret accompanies the
// address as the recipient's scanning hint.
func DeriveStealthAddress(meta *MetaAddress, ephemeralPriv *ecdsa.PrivateKey, k uint32) (*Payment, error) {
	spendPub, err := parsePubKey(meta.SpendPubKey)
	if err != nil {
		return nil, fmt.Errorf("spend key: %w", err)
	}
	viewPub, err := parsePubKey(meta.ViewPubKey)
	if err != nil {
		return nil, fmt.Errorf("viewing key: %w", err)
	}

	secret := sharedSecret(ephemeralPriv.D, viewPub)
	stealthPub, err := tweakedPubKey(spendPub, secret, k)
	if err != nil {
		return nil, err
	}

	return &Payment{
		Address:         crypto.PubkeyToAddress(*stealthPub),
		EphemeralPubKey: crypto.CompressPubkey(&ephemeralPriv.PublicKey),
		ViewHint:        secret[0],
		K:               k,
		StealthPubKey:   crypto.CompressPubkey(stealthPub),
	}, nil
}

// RecoverStealthPrivateKey reconstructs the private key controlling the
// stealth address derived from ephemeralPub and index k. By ECDH symmetry
// the viewing key recomputes the payer's shared secret, and the returned key
// is spendKey + tweak mod n.
func RecoverStealthPrivateKey(viewPriv, spendPriv *ecdsa.PrivateKey, ephemeralPub []byte, k uint32) (*ecdsa.PrivateKey, error) {
	ephPub, err := parsePubKey(ephemeralPub)
	if err != nil {
		return nil, fmt.Errorf("ephemeral key: %w", err)
	}

	secret := sharedSecret(viewPriv.D, ephPub)
	tweak := tweakScalar(secret, k)

	n := crypto.S256().Params().N
	d := new(big.Int).Add(spendPriv.D, tweak)
	d.Mod(d, n)
	if d.Sign() == 0 {
		return nil, errors.New("stealth: derived private key is zero")
	}

	priv := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: crypto.S256()},
		D:         d,
	}
	priv.PublicKey.X, priv.PublicKey.Y = crypto.S256().ScalarBaseMult(d.Bytes())
	return priv, nil
}

// ValidatePublicKey checks that b is a well-formed compressed public key:
// exactly 33 bytes, leading parity byte 0x02 or 0x03, and on the curve.
func ValidatePublicKey(b []byte) error {
	if len(b) != config.CompressedPubKeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, config.CompressedPubKeySize, len(b))
	}
	if b[0] != 0x02 && b[0] != 0x03 {
		return fmt.Errorf("%w: bad parity prefix 0x%02x", ErrInvalidKey, b[0])
	}
	if _, err := crypto.DecompressPubkey(b); err != nil {
		return fmt.Errorf("%w: point not on curve", ErrInvalidKey)
	}
	return nil
}

// CheckPayment reports whether the announced payment is addressed to the
// holder of viewPriv and spendPub. The view hint filters out nearly all
// foreign announcements before the address is recomputed in full.
func CheckPayment(viewPriv *ecdsa.PrivateKey, spendPubKey []byte, a *Announcement) (bool, error) {
	spendPub, err := parsePubKey(spendPubKey)
	if err != nil {
		return false, fmt.Errorf("spend key: %w", err)
	}
	ok, _, err := recognize(viewPriv, spendPub, a)
	return ok, err
}

// sharedSecret hashes the ECDH point of d and pub into a uniform byte string.
// The raw curve point is never kept or logged.
func sharedSecret(d *big.Int, pub *ecdsa.PublicKey) []byte {
	x, y := crypto.S256().ScalarMult(pub.X, pub.Y, d.Bytes())
	point := ecdsa.PublicKey{Curve: crypto.S256(), X: x, Y: y}
	return crypto.Keccak256(crypto.CompressPubkey(&point))
}

// tweakScalar derives the offset scalar for index k from a shared secret.
func tweakScalar(secret []byte, k uint32) *big.Int {
	var kBytes [4]byte
	binary.BigEndian.PutUint32(kBytes[:], k)
	t := new(big.Int).SetBytes(crypto.Keccak256(secret, kBytes[:]))
	return t.Mod(t, crypto.S256().Params().N)
}

// tweakedPubKey returns spendPub + tweak(secret, k)*G.
func tweakedPubKey(spendPub *ecdsa.PublicKey, secret []byte, k uint32) (*ecdsa.PublicKey, error) {
	tweak := tweakScalar(secret, k)
	if tweak.Sign() == 0 {
		return nil, errors.New("stealth: tweak is zero, use a different index")
	}
	tx, ty := crypto.S256().ScalarBaseMult(tweak.Bytes())
	sx, sy := crypto.S256().Add(spendPub.X, spendPub.Y, tx, ty)
	if !crypto.S256().IsOnCurve(sx, sy) {
		return nil, errors.New("stealth: derived point not on curve")
	}
	return &ecdsa.PublicKey{Curve: crypto.S256(), X: sx, Y: sy}, nil
}

func parsePubKey(b []byte) (*ecdsa.PublicKey, error) {
	if err := ValidatePublicKey(b); err != nil {
		return nil, err
	}
	return crypto.DecompressPubkey(b)
}
