package pool

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Token is the host-chain token the pool denominates deposits in. The pool
// pulls deposits with TransferFrom (the depositor approves the pool first),
// pays relayer fees with Transfer, and approves bridge adapters to pull
// payouts.
type Token interface {
	BalanceOf(account common.Address) uint64
	Transfer(from, to common.Address, amount uint64) error
	TransferFrom(spender, from, to common.Address, amount uint64) error
	Approve(owner, spender common.Address, amount uint64) error
	Allowance(owner, spender common.Address) uint64
}

// Ledger is an in-memory Token backing tests and the demo flow.
type Ledger struct {
	mu         sync.Mutex
	balances   map[common.Address]uint64
	allowances map[common.Address]map[common.Address]uint64
}

func NewLedger() *Ledger {
	return &Ledger{
		balances:   make(map[common.Address]uint64),
		allowances: make(map[common.Address]map[common.Address]uint64),
	}
}

// Mint credits account out of thin air.
func (l *Ledger) Mint(account common.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

func (l *Ledger) BalanceOf(account common.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

func (l *Ledger) Transfer(from, to common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

func (l *Ledger) TransferFrom(spender, from, to common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	allowed := l.allowances[from][spender]
	if allowed < amount {
		return fmt.Errorf("%w: %d approved, %d requested", ErrInsufficientAllowance, allowed, amount)
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	l.allowances[from][spender] = allowed - amount
	return nil
}

func (l *Ledger) Approve(owner, spender common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[common.Address]uint64)
	}
	l.allowances[owner][spender] = amount
	return nil
}

func (l *Ledger) Allowance(owner, spender common.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowances[owner][spender]
}

func (l *Ledger) move(from, to common.Address, amount uint64) error {
	if l.balances[from] < amount {
		return fmt.Errorf("%w: %d held, %d requested", ErrInsufficientBalance, l.balances[from], amount)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}
