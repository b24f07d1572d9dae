package pool

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestLedgerTransfers(t *testing.T) {
	alice := common.HexToAddress("0x0a")
	bob := common.HexToAddress("0x0b")

	l := NewLedger()
	l.Mint(alice, 100)

	if err := l.Transfer(alice, bob, 30); err != nil {
		t.Fatalf("Failed to transfer: %v", err)
	}
	if l.BalanceOf(alice) != 70 || l.BalanceOf(bob) != 30 {
		t.Fatalf("Unexpected balances: alice=%d bob=%d", l.BalanceOf(alice), l.BalanceOf(bob))
	}

	err := l.Transfer(alice, bob, 1000)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}
	if l.BalanceOf(alice) != 70 {
		t.Fatal("Failed transfer must not move funds")
	}
}

func TestLedgerAllowances(t *testing.T) {
	owner := common.HexToAddress("0x0a")
	spender := common.HexToAddress("0x0b")
	sink := common.HexToAddress("0x0c")

	l := NewLedger()
	l.Mint(owner, 50)

	err := l.TransferFrom(spender, owner, sink, 10)
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("Expected ErrInsufficientAllowance without an approval, got %v", err)
	}

	if err := l.Approve(owner, spender, 25); err != nil {
		t.Fatalf("Failed to approve: %v", err)
	}
	if l.Allowance(owner, spender) != 25 {
		t.Fatalf("Expected allowance 25, got %d", l.Allowance(owner, spender))
	}

	if err := l.TransferFrom(spender, owner, sink, 10); err != nil {
		t.Fatalf("Failed to transfer from: %v", err)
	}
	if l.Allowance(owner, spender) != 15 {
		t.Fatalf("Expected allowance to shrink to 15, got %d", l.Allowance(owner, spender))
	}
	if l.BalanceOf(sink) != 10 {
		t.Fatalf("Expected sink balance 10, got %d", l.BalanceOf(sink))
	}

	err = l.TransferFrom(spender, owner, sink, 20)
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("Expected ErrInsufficientAllowance over the remaining approval, got %v", err)
	}
}
