// Package mimc exposes the MiMC hash over a curve's scalar field as a plain
// byte-slice function. It is the same permutation the circuits use, so
// commitments, nullifiers and tree nodes computed here match their in-circuit
// counterparts.
package mimc

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/hash"

	// register the MiMC hash constructors for the supported curves
	_ "github.com/consensys/gnark-crypto/ecc/bls12-377/fr/mimc"
	_ "github.com/consensys/gnark-crypto/ecc/bls12-381/fr/mimc"
	_ "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// field elements are written to the hasher as 32-byte big-endian blocks
const blockSize = 32

// NewMimcF returns a hash function over the scalar field of the given curve.
// Each input is left-padded to 32 bytes and must encode a canonical field
// element; inputs longer than 32 bytes are a programming error.
func NewMimcF(curve ecc.ID) func(...[]byte) []byte {
	var h hash.Hash
	switch curve {
	case ecc.BN254:
		h = hash.MIMC_BN254
	case ecc.BLS12_377:
		h = hash.MIMC_BLS12_377
	case ecc.BLS12_381:
		h = hash.MIMC_BLS12_381
	default:
		panic(fmt.Sprintf("no mimc implementation for curve %s", curve))
	}
	return func(data ...[]byte) []byte {
		hasher := h.New()
		for _, d := range data {
			if len(d) > blockSize {
				panic(fmt.Sprintf("mimc input is %d bytes, max is %d", len(d), blockSize))
			}
			block := make([]byte, blockSize)
			copy(block[blockSize-len(d):], d)
			if _, err := hasher.Write(block); err != nil {
				panic(fmt.Sprintf("mimc write: %v", err))
			}
		}
		return hasher.Sum(nil)
	}
}
