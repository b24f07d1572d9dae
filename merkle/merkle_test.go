package merkle

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/AmaanSayyad/Private-Pay-sub002/config"
)

// naiveRoot recomputes the root of the whole tree level by level, padding
// incomplete levels with the zero hashes, as a cross-check for the
// incremental AddLeaf walk.
func naiveRoot(leaves [][]byte, depth int, zeroHashes [][]byte, h config.HashFunc) []byte {
	level := make([][]byte, len(leaves))
	copy(level, leaves)
	for i := 0; i < depth; i++ {
		if len(level)%2 == 1 {
			level = append(level, zeroHashes[i])
		}
		next := make([][]byte, len(level)/2)
		for j := 0; j < len(level); j += 2 {
			next[j/2] = h(level[j], level[j+1])
		}
		level = next
	}
	return level[0]
}

func TestEmptyTreeRootIsZeroHash(t *testing.T) {
	tree := NewTree(config.Tree, config.Hash)
	if !bytes.Equal(tree.Root(), config.Tree.ZeroHashes[config.Tree.Depth]) {
		t.Fatal("empty tree root is not the top zero hash")
	}
}

func TestRootMatchesNaiveRecompute(t *testing.T) {
	tree := NewTree(config.Tree, config.Hash)
	var leaves [][]byte
	for i := 0; i < 7; i++ {
		leaf := config.Hash([]byte(fmt.Sprintf("leaf-%d", i)))
		idx := tree.AddLeaf(leaf)
		if idx != i {
			t.Fatalf("expected index %d, got %d", i, idx)
		}
		leaves = append(leaves, leaf)

		want := naiveRoot(leaves, config.Tree.Depth, config.Tree.ZeroHashes, config.Hash)
		if !bytes.Equal(tree.Root(), want) {
			t.Fatalf("root mismatch after %d leaves", i+1)
		}
	}
}

func TestProofRoundtrip(t *testing.T) {
	tree := NewTree(config.Tree, config.Hash)
	values := make([][]byte, 5)
	for i := range values {
		values[i] = config.Hash([]byte{byte(i + 1)})
		tree.AddLeaf(config.Hash(values[i]))
	}

	for i, v := range values {
		proof, err := tree.Proof(v, i)
		if err != nil {
			t.Fatalf("proof for leaf %d: %v", i, err)
		}
		if len(proof) != config.Tree.Depth+1 {
			t.Fatalf("expected proof of length %d, got %d", config.Tree.Depth+1, len(proof))
		}
		if !tree.Verify(i, proof, tree.Root()) {
			t.Fatalf("proof for leaf %d does not verify", i)
		}
	}
}

func TestProofStaysValidAsTreeGrows(t *testing.T) {
	tree := NewTree(config.Tree, config.Hash)
	value := config.Hash([]byte("first"))
	idx := tree.AddLeaf(config.Hash(value))

	for i := 0; i < 4; i++ {
		tree.AddLeaf(config.Hash([]byte{byte(i)}))
	}

	proof, err := tree.Proof(value, idx)
	if err != nil {
		t.Fatalf("proof: %v", err)
	}
	if !tree.Verify(idx, proof, tree.Root()) {
		t.Fatal("proof against the grown tree does not verify")
	}
}

func TestProofRejectsWrongValueAndIndex(t *testing.T) {
	tree := NewTree(config.Tree, config.Hash)
	value := config.Hash([]byte("note"))
	idx := tree.AddLeaf(config.Hash(value))

	if _, err := tree.Proof([]byte("other"), idx); err == nil {
		t.Fatal("expected error for wrong leaf value")
	}
	if _, err := tree.Proof(value, idx+1); err == nil {
		t.Fatal("expected error for out of range index")
	}

	proof, err := tree.Proof(value, idx)
	if err != nil {
		t.Fatalf("proof: %v", err)
	}
	proof[1] = config.Hash([]byte("tampered"))
	if tree.Verify(idx, proof, tree.Root()) {
		t.Fatal("tampered proof verified")
	}
}
