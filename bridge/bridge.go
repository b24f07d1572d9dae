// Package bridge provides the dispatcher adapters the pool hands withdrawn
// funds to. The adapters here are in-memory stand-ins for the external bridge
// network: they pull the pre-approved payout from the pool, record the
// destination-chain leg, and either fully commit or fail without side effects.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AmaanSayyad/Private-Pay-sub002/stealth"
)

// ErrUnknownToken is returned when a token-service dispatch names a token
// identifier the bridge was not configured to carry.
var ErrUnknownToken = errors.New("bridge: token is not registered")

// Dispatcher is the call contract the pool uses to move a withdrawal to its
// stealth destination, possibly on another chain. The pool pre-approves the
// dispatcher address to pull the amount before calling SendToStealthAddress.
type Dispatcher interface {
	Address() common.Address
	SendToStealthAddress(ctx context.Context, destinationChain string, stealthAddress common.Address, ephemeralPublicKey []byte, viewHint byte, k uint32, tokenIdentifier string, amount uint64) error
}

// Token is the slice of the pool token an adapter needs: pulling its
// pre-approved payout out of the pool when a leg is dispatched.
type Token interface {
	TransferFrom(spender, from, to common.Address, amount uint64) error
}

// Leg is one dispatched transfer to a stealth destination. The ephemeral key,
// view hint and index k ride along so the recipient can recognize the payment
// on the destination chain.
type Leg struct {
	DestinationChain string
	StealthAddress   common.Address
	EphemeralPubKey  []byte
	ViewHint         byte
	K                uint32
	TokenID          string
	Amount           uint64
}

// Announcement converts the leg into the record recipient-side scanners
// consume.
func (l Leg) Announcement() stealth.Announcement {
	return stealth.Announcement{
		DestinationChain: l.DestinationChain,
		Address:          l.StealthAddress,
		EphemeralPubKey:  l.EphemeralPubKey,
		ViewHint:         l.ViewHint,
		K:                l.K,
		TokenID:          l.TokenID,
		Amount:           l.Amount,
	}
}

// DirectBridge emulates the native-transfer bridge variant: the payout moves
// from the pool to the bridge account and a transfer leg addressed to the
// stealth address is recorded for the destination chain.
type DirectBridge struct {
	mu    sync.Mutex
	token Token
	addr  common.Address
	pool  common.Address
	legs  []Leg
}

func NewDirectBridge(token Token, addr, pool common.Address) *DirectBridge {
	return &DirectBridge{token: token, addr: addr, pool: pool}
}

func (b *DirectBridge) Address() common.Address {
	return b.addr
}

func (b *DirectBridge) SendToStealthAddress(ctx context.Context, destinationChain string, stealthAddress common.Address, ephemeralPublicKey []byte, viewHint byte, k uint32, tokenIdentifier string, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.token.TransferFrom(b.addr, b.pool, b.addr, amount); err != nil {
		return fmt.Errorf("failed to pull payout from pool: %w", err)
	}
	b.legs = append(b.legs, Leg{
		DestinationChain: destinationChain,
		StealthAddress:   stealthAddress,
		EphemeralPubKey:  append([]byte(nil), ephemeralPublicKey...),
		ViewHint:         viewHint,
		K:                k,
		TokenID:          tokenIdentifier,
		Amount:           amount,
	})
	return nil
}

// Legs returns the dispatched legs, oldest first.
func (b *DirectBridge) Legs() []Leg {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Leg(nil), b.legs...)
}

// TokenServiceBridge emulates the lock-and-mint bridge variant: the pulled
// amount is locked under a registered token identifier and a mint leg is
// recorded for the destination chain. Only identifiers registered at
// construction can be dispatched.
type TokenServiceBridge struct {
	mu     sync.Mutex
	token  Token
	addr   common.Address
	pool   common.Address
	tokens map[string]bool
	locked map[string]uint64
	legs   []Leg
}

func NewTokenServiceBridge(token Token, addr, pool common.Address, tokenIDs ...string) *TokenServiceBridge {
	tokens := make(map[string]bool, len(tokenIDs))
	for _, id := range tokenIDs {
		tokens[id] = true
	}
	return &TokenServiceBridge{
		token:  token,
		addr:   addr,
		pool:   pool,
		tokens: tokens,
		locked: make(map[string]uint64),
	}
}

func (b *TokenServiceBridge) Address() common.Address {
	return b.addr
}

func (b *TokenServiceBridge) SendToStealthAddress(ctx context.Context, destinationChain string, stealthAddress common.Address, ephemeralPublicKey []byte, viewHint byte, k uint32, tokenIdentifier string, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.tokens[tokenIdentifier] {
		return fmt.Errorf("%w: %q", ErrUnknownToken, tokenIdentifier)
	}
	if err := b.token.TransferFrom(b.addr, b.pool, b.addr, amount); err != nil {
		return fmt.Errorf("failed to pull payout from pool: %w", err)
	}
	b.locked[tokenIdentifier] += amount
	b.legs = append(b.legs, Leg{
		DestinationChain: destinationChain,
		StealthAddress:   stealthAddress,
		EphemeralPubKey:  append([]byte(nil), ephemeralPublicKey...),
		ViewHint:         viewHint,
		K:                k,
		TokenID:          tokenIdentifier,
		Amount:           amount,
	})
	return nil
}

// Locked returns the amount locked under a token identifier.
func (b *TokenServiceBridge) Locked(tokenID string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked[tokenID]
}

// Legs returns the dispatched legs, oldest first.
func (b *TokenServiceBridge) Legs() []Leg {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Leg(nil), b.legs...)
}
