package note

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AmaanSayyad/Private-Pay-sub002/config"
)

func TestNewNoteDerivations(t *testing.T) {
	pool := common.HexToAddress("0x00000000000000000000000000000000deadbeef")
	n, err := New(10, pool)
	if err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	if len(n.Secret) != config.RandomNonceByteSize {
		t.Fatalf("secret is %d bytes, expected %d", len(n.Secret), config.RandomNonceByteSize)
	}
	if len(n.NullifierPreimage) != config.RandomNonceByteSize {
		t.Fatalf("preimage is %d bytes, expected %d", len(n.NullifierPreimage), config.RandomNonceByteSize)
	}
	if n.LeafIndex != -1 {
		t.Fatalf("fresh note has leaf index %d, expected -1", n.LeafIndex)
	}

	inner := config.Hash(n.NullifierPreimage, n.Secret)
	if !bytes.Equal(n.InnerCommitment(), inner) {
		t.Fatal("inner commitment derivation mismatch")
	}
	if !bytes.Equal(n.Commitment, config.Hash(inner)) {
		t.Fatal("commitment derivation mismatch")
	}
	if !bytes.Equal(n.NullifierHash(), config.Hash(n.NullifierPreimage)) {
		t.Fatal("nullifier hash derivation mismatch")
	}
	if err := n.Check(); err != nil {
		t.Fatalf("fresh note fails its own check: %v", err)
	}
}

func TestNotesAreUnique(t *testing.T) {
	n1, err := New(10, common.Address{})
	if err != nil {
		t.Fatalf("failed to create note: %v", err)
	}
	n2, err := New(10, common.Address{})
	if err != nil {
		t.Fatalf("failed to create note: %v", err)
	}
	if bytes.Equal(n1.Commitment, n2.Commitment) {
		t.Fatal("two fresh notes share a commitment")
	}
	if bytes.Equal(n1.NullifierHash(), n2.NullifierHash()) {
		t.Fatal("two fresh notes share a nullifier hash")
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.json")
	n, err := New(1_000_000, common.HexToAddress("0x1234"))
	if err != nil {
		t.Fatalf("failed to create note: %v", err)
	}
	n.LeafIndex = 42

	if err := n.Save(path); err != nil {
		t.Fatalf("failed to save note: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load note: %v", err)
	}

	if !bytes.Equal(loaded.Secret, n.Secret) ||
		!bytes.Equal(loaded.NullifierPreimage, n.NullifierPreimage) ||
		!bytes.Equal(loaded.Commitment, n.Commitment) {
		t.Fatal("loaded note differs from saved note")
	}
	if loaded.LeafIndex != 42 || loaded.Denomination != 1_000_000 {
		t.Fatal("loaded note metadata differs from saved note")
	}
	if loaded.PoolAddress != n.PoolAddress {
		t.Fatal("loaded pool address differs from saved note")
	}
}

func TestLoadRejectsTamperedNote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.json")
	n, err := New(10, common.Address{})
	if err != nil {
		t.Fatalf("failed to create note: %v", err)
	}
	n.Commitment[0] ^= 0xff
	if err := n.Save(path); err != nil {
		t.Fatalf("failed to save note: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error loading a tampered note")
	}
}
