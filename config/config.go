package config

import (
	"time"

	"github.com/AmaanSayyad/Private-Pay-sub002/mimc"

	"github.com/consensys/gnark-crypto/ecc"
)

// protocol constants
const (
	MerkleTreeLevels    = 20
	RootsCount          = 30
	Curve               = ecc.BN254
	RandomNonceByteSize = 31

	// number of leaves the pool can hold
	TreeCapacity = 1 << MerkleTreeLevels

	// fixed amount pulled from the depositor on every deposit, in base
	// token units, unless the pool is configured otherwise
	DefaultDenomination = 1_000_000

	// compressed public key encoding used throughout the stealth scheme
	CompressedPubKeySize = 33
)

// retry budget for transient dispatch failures; validation and proof
// failures are never retried
const (
	DispatchMaxRetries     = 4
	DispatchInitialBackoff = 250 * time.Millisecond
	DispatchMaxBackoff     = 5 * time.Second
)

type HashFunc = func(...[]byte) []byte

type TreeConfig struct {
	Depth      int
	ZeroValue  []byte
	ZeroHashes [][]byte
}

var (
	Tree TreeConfig
	Hash HashFunc
)

func init() {
	Tree = TreeConfig{
		Depth:     MerkleTreeLevels,
		ZeroValue: []byte{0},
	}
	Hash = mimc.NewMimcF(Curve)
	Tree.ZeroHashes = GenerateZeroHashes(Tree.Depth, Tree.ZeroValue)
}

func GenerateZeroHashes(depth int, zeroValue []byte) [][]byte {
	subtree := make([][]byte, depth+1)
	subtree[0] = Hash(zeroValue)
	for i := 1; i <= depth; i++ {
		subtree[i] = Hash(subtree[i-1], subtree[i-1])
	}
	return subtree
}
