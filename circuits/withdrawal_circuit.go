// Package circuits defines the zk-circuit guarding pool withdrawals.
package circuits

import (
	"runtime"

	"github.com/AmaanSayyad/Private-Pay-sub002/config"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/accumulator/merkle"
	"github.com/consensys/gnark/std/hash/mimc"
)

const MerkleTreeLevels = config.MerkleTreeLevels

var WithdrawalCircuitPackageName string

// init sets Name to the path of this file
func init() {
	_, WithdrawalCircuitPackageName, _, _ = runtime.Caller(0) // this file
}

// WithdrawalCircuit proves knowledge of a note (nullifierPreimage, secret)
// whose commitment is a leaf under Root, and that Nullifier is the hash of
// the note's preimage. ExtDataHash binds the withdrawal's public parameters
// (destination, fee, bridge coordinates) into the statement.
type WithdrawalCircuit struct {
	Root        frontend.Variable `gnark:",public"`
	Nullifier   frontend.Variable `gnark:",public"`
	ExtDataHash frontend.Variable `gnark:",public"`

	NullifierPreimage frontend.Variable
	Secret            frontend.Variable
	Index             frontend.Variable

	Path [MerkleTreeLevels + 1]frontend.Variable
}

func (c *WithdrawalCircuit) Define(api frontend.API) error {
	mimc, _ := mimc.NewMiMC(api)

	// hash(NullifierPreimage) == Nullifier
	verifyHashCommitment(api, &mimc, c.Nullifier, 1, c.NullifierPreimage)

	// Path[0] == hash(NullifierPreimage, Secret); the tree leaf inserted at
	// deposit is the hash of this value
	verifyHashCommitment(api, &mimc, c.Path[0], 1, c.NullifierPreimage, c.Secret)

	// the note commitment is in the merkle tree at Index
	mp := merkle.MerkleProof{
		RootHash: c.Root,
		Path:     c.Path[:],
	}
	mp.VerifyProof(api, &mimc, c.Index)

	// fold the external data into the constraint system so no prover can
	// claim a proof was made for different withdrawal parameters
	api.Mul(c.ExtDataHash, c.ExtDataHash)

	return nil
}
