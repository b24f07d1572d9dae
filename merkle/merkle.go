// Package merkle implements the append-only Merkle tree a client mirrors off
// the pool's deposit events to build membership proofs. Nodes are hashed with
// the same circuit-friendly permutation the pool uses, so after replaying the
// same leaves the root here matches the pool's incremental root exactly.
package merkle

import (
	"bytes"
	"errors"

	"github.com/AmaanSayyad/Private-Pay-sub002/config"
)

type Tree struct {
	subTree    [][]byte
	zeroHashes [][]byte
	depth      int
	hashFunc   config.HashFunc
	leafHashes [][]byte
}

// NewTree returns an empty tree with c.Depth levels, hashing nodes with
// hashFunc. The zero hashes are copied so appending leaves never mutates c.
func NewTree(c config.TreeConfig, hashFunc config.HashFunc) *Tree {
	subTree := make([][]byte, len(c.ZeroHashes))
	copy(subTree, c.ZeroHashes)
	return &Tree{
		subTree:    subTree,
		zeroHashes: c.ZeroHashes,
		depth:      c.Depth,
		hashFunc:   hashFunc,
		leafHashes: make([][]byte, 0, 128),
	}
}

// AddLeaf appends a leaf node to the tree and returns its index.
func (t *Tree) AddLeaf(leaf []byte) int {
	t.leafHashes = append(t.leafHashes, leaf)
	currentHash := leaf
	index := len(t.leafHashes) - 1
	var left, right []byte
	for i := 0; i < t.depth; i++ {
		if index&1 == 0 {
			t.subTree[i] = currentHash
			left = currentHash
			right = t.zeroHashes[i]
		} else {
			left = t.subTree[i]
			right = currentHash
		}
		currentHash = t.hashFunc(left, right)
		index >>= 1
	}
	t.subTree[t.depth] = currentHash
	return len(t.leafHashes) - 1
}

// Root returns the current root of the tree.
func (t *Tree) Root() []byte {
	return t.subTree[len(t.subTree)-1]
}

// NumLeaves returns the number of leaves added so far.
func (t *Tree) NumLeaves() int {
	return len(t.leafHashes)
}

// Proof returns the Merkle proof for the leaf at the given index.
// The proof is a path that starts with the leaf preimage (not hashed)
// and includes the sibling hashes up to but excluding the root.
// It returns an error if hashing leafValue does not give the leaf at index.
func (t *Tree) Proof(leafValue []byte, index int) ([][]byte, error) {
	if index < 0 || index >= len(t.leafHashes) {
		return nil, errors.New("leaf index out of range")
	}
	leafHash := t.hashFunc(leafValue)
	if !bytes.Equal(t.leafHashes[index], leafHash) {
		return nil, errors.New("leaf value does not map to hash at index")
	}

	depth := t.depth
	proof := make([][]byte, 1, depth+1)
	proof[0] = leafValue

	// We need to decide whether we are left and add the right sibling to
	// the proof, or we are right and add the left sibling to the proof.
	// We can do this by checking the last bit of the leaf index:
	// if it's 0, we are left, if it's 1, we are right.
	// We right shift the index to check the next bit in the next iteration.
	currentLevel := make([][]byte, len(t.leafHashes))
	copy(currentLevel, t.leafHashes)
	if len(currentLevel)%2 == 1 {
		currentLevel = append(currentLevel, t.zeroHashes[0])
	}
	for i := 0; i < depth; i++ {
		if index&1 == 0 {
			proof = append(proof, currentLevel[index+1])
		} else {
			proof = append(proof, currentLevel[index-1])
		}

		nextLevel := make([][]byte, len(currentLevel)/2)
		for j := 0; j < len(currentLevel); j += 2 {
			nextLevel[j/2] = t.hashFunc(currentLevel[j], currentLevel[j+1])
		}
		if len(nextLevel)%2 == 1 && i+1 < depth {
			nextLevel = append(nextLevel, t.zeroHashes[i+1])
		}

		currentLevel = nextLevel
		index >>= 1
	}

	return proof, nil
}

// Verify returns true if the leaf preimage at path[0] is included in a tree
// with the given root. path is the proof returned by Proof.
func (t *Tree) Verify(leafIndex int, path [][]byte, root []byte) bool {
	if len(path) == 0 {
		return false
	}
	currentHash := t.hashFunc(path[0])

	// same left, right walk as in Proof
	for i := 1; i < len(path); i++ {
		if leafIndex&1 == 0 {
			currentHash = t.hashFunc(currentHash, path[i])
		} else {
			currentHash = t.hashFunc(path[i], currentHash)
		}
		leafIndex >>= 1
	}
	return bytes.Equal(currentHash, root)
}
