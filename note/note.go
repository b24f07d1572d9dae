// Package note defines the depositor's secret record: the preimages behind a
// pool commitment plus the coordinates needed to withdraw it later. Whoever
// holds a note can spend the deposit; losing it makes the deposit permanently
// unwithdrawable.
package note

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/AmaanSayyad/Private-Pay-sub002/config"
)

// Note is kept off-chain by whoever will withdraw the deposit.
// LeafIndex is -1 until the commitment has been inserted into the pool.
type Note struct {
	Secret            hexutil.Bytes  `json:"secret"`
	NullifierPreimage hexutil.Bytes  `json:"nullifierPreimage"`
	Commitment        hexutil.Bytes  `json:"commitment"`
	LeafIndex         int            `json:"leafIndex"`
	Denomination      uint64         `json:"denomination"`
	PoolAddress       common.Address `json:"poolAddress"`
}

// New creates a note with fresh random secret and nullifier preimage.
func New(denomination uint64, poolAddress common.Address) (*Note, error) {
	secret, err := randomNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret: %v", err)
	}
	preimage, err := randomNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nullifier preimage: %v", err)
	}
	n := &Note{
		Secret:            secret,
		NullifierPreimage: preimage,
		LeafIndex:         -1,
		Denomination:      denomination,
		PoolAddress:       poolAddress,
	}
	n.Commitment = config.Hash(n.InnerCommitment())
	return n, nil
}

// InnerCommitment returns Hash(nullifierPreimage, secret), the value whose
// hash is the tree leaf. The prover supplies it as the first path element.
func (n *Note) InnerCommitment() []byte {
	return config.Hash(n.NullifierPreimage, n.Secret)
}

// NullifierHash returns the single-use value revealed at withdrawal.
func (n *Note) NullifierHash() []byte {
	return config.Hash(n.NullifierPreimage)
}

// Check verifies that the stored commitment matches the preimages.
func (n *Note) Check() error {
	if len(n.Secret) == 0 || len(n.NullifierPreimage) == 0 {
		return errors.New("note is missing secret material")
	}
	if !bytes.Equal(n.Commitment, config.Hash(n.InnerCommitment())) {
		return errors.New("note commitment does not match its preimages")
	}
	return nil
}

// Save writes the note as indented JSON, readable only by the owner.
func (n *Note) Save(path string) error {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode note: %v", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write note file: %v", err)
	}
	return nil
}

// Load reads a note written by Save and checks its integrity.
func Load(path string) (*Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read note file: %v", err)
	}
	var n Note
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to decode note: %v", err)
	}
	if err := n.Check(); err != nil {
		return nil, err
	}
	return &n, nil
}

// randomNonce returns a fresh random value small enough to always be a
// canonical field element.
func randomNonce() ([]byte, error) {
	b := make([]byte, config.RandomNonceByteSize)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
