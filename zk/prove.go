package zk

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"

	"github.com/AmaanSayyad/Private-Pay-sub002/circuits"
	"github.com/AmaanSayyad/Private-Pay-sub002/config"
	"github.com/AmaanSayyad/Private-Pay-sub002/note"
)

// Prover turns a note and its Merkle path into a serialized withdrawal proof.
type Prover struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
}

func NewProver(a *Artifacts) *Prover {
	return &Prover{ccs: a.CCS, pk: a.PK}
}

// Prove generates the proof that n's commitment is a leaf under root, with
// the withdrawal parameters bound through extDataHash. path is the proof
// returned by the client tree for the note's inner commitment.
func (p *Prover) Prove(n *note.Note, path [][]byte, root, extDataHash []byte) ([]byte, error) {
	if n.LeafIndex < 0 {
		return nil, errors.New("note has no leaf index, deposit it first")
	}
	if len(path) != config.MerkleTreeLevels+1 {
		return nil, fmt.Errorf("merkle path has %d elements, expected %d",
			len(path), config.MerkleTreeLevels+1)
	}

	assignment := &circuits.WithdrawalCircuit{
		Root:              root,
		Nullifier:         n.NullifierHash(),
		ExtDataHash:       extDataHash,
		NullifierPreimage: []byte(n.NullifierPreimage),
		Secret:            []byte(n.Secret),
		Index:             n.LeafIndex,
	}
	for i, elem := range path {
		assignment.Path[i] = elem
	}

	w, err := frontend.NewWitness(assignment, config.Curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to build witness: %v", err)
	}
	proof, err := groth16.Prove(p.ccs, p.pk, w)
	if err != nil {
		return nil, fmt.Errorf("failed to prove withdrawal: %v", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize proof: %v", err)
	}
	return buf.Bytes(), nil
}

// Verifier checks serialized withdrawal proofs against their public inputs.
// It satisfies the pool's proof-verifier dependency.
type Verifier struct {
	vk groth16.VerifyingKey
}

func NewVerifier(vk groth16.VerifyingKey) *Verifier {
	return &Verifier{vk: vk}
}

func (v *Verifier) VerifyWithdrawal(proof, root, nullifierHash, extDataHash []byte) error {
	decoded := groth16.NewProof(config.Curve)
	if _, err := decoded.ReadFrom(bytes.NewReader(proof)); err != nil {
		return fmt.Errorf("failed to decode proof: %v", err)
	}

	assignment := &circuits.WithdrawalCircuit{
		Root:        root,
		Nullifier:   nullifierHash,
		ExtDataHash: extDataHash,
	}
	w, err := frontend.NewWitness(assignment, config.Curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("failed to build public witness: %v", err)
	}
	if err := groth16.Verify(decoded, v.vk, w); err != nil {
		return fmt.Errorf("proof verification failed: %v", err)
	}
	return nil
}
