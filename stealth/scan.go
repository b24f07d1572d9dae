package stealth

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"runtime"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/AmaanSayyad/Private-Pay-sub002/logger"
)

// Announcement is the public record a stealth payment leaves behind:
// everything a recipient needs to test whether the payment is theirs, and
// nothing that identifies them to anyone else.
type Announcement struct {
	DestinationChain string
	Address          common.Address
	EphemeralPubKey  []byte
	ViewHint         byte
	K                uint32
	TokenID          string
	Amount           uint64
}

// Match pairs a recognized announcement with the recomputed stealth public
// key, so the owner can double-check the destination before recovering the
// private key and spending.
type Match struct {
	Announcement  Announcement
	StealthPubKey []byte
}

// Scanner recognizes incoming stealth payments for one meta-address. It only
// needs the viewing private key and the spend public key, so it can run on a
// host that must never hold spending power.
type Scanner struct {
	viewKey  *ecdsa.PrivateKey
	spendPub *ecdsa.PublicKey
	workers  int
}

// NewScanner returns a scanner with the given worker count; workers <= 0
// means one per CPU.
func NewScanner(viewPriv *ecdsa.PrivateKey, spendPubKey []byte, workers int) (*Scanner, error) {
	spendPub, err := parsePubKey(spendPubKey)
	if err != nil {
		return nil, fmt.Errorf("spend key: %w", err)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scanner{viewKey: viewPriv, spendPub: spendPub, workers: workers}, nil
}

// Scan fans announcements out to stateless workers and returns the channel
// their matches arrive on. Workers share nothing: each reads immutable keys
// and writes to the single output channel, so the caller is the only owner
// of result state. The channel closes when the input closes or ctx is done.
func (s *Scanner) Scan(ctx context.Context, announcements <-chan Announcement) <-chan Match {
	log := logger.Logger()
	out := make(chan Match, s.workers)

	var wg sync.WaitGroup
	wg.Add(s.workers)
	for i := 0; i < s.workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case a, ok := <-announcements:
					if !ok {
						return
					}
					matched, stealthPub, err := recognize(s.viewKey, s.spendPub, &a)
					if err != nil {
						log.Debug().Err(err).Msg("skipping malformed announcement")
						continue
					}
					if !matched {
						continue
					}
					m := Match{Announcement: a, StealthPubKey: crypto.CompressPubkey(stealthPub)}
					select {
					case out <- m:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// ScanSlice scans a fixed batch of announcements and gathers the matches.
func (s *Scanner) ScanSlice(ctx context.Context, announcements []Announcement) ([]Match, error) {
	in := make(chan Announcement)
	go func() {
		defer close(in)
		for _, a := range announcements {
			select {
			case in <- a:
			case <-ctx.Done():
				return
			}
		}
	}()

	var matches []Match
	for m := range s.Scan(ctx, in) {
		matches = append(matches, m)
	}
	return matches, ctx.Err()
}

// recognize runs the view-hint prefilter, then the full ECDH recomputation
// and address comparison. On a match it returns the stealth public key.
func recognize(viewPriv *ecdsa.PrivateKey, spendPub *ecdsa.PublicKey, a *Announcement) (bool, *ecdsa.PublicKey, error) {
	ephPub, err := parsePubKey(a.EphemeralPubKey)
	if err != nil {
		return false, nil, fmt.Errorf("ephemeral key: %w", err)
	}
	secret := sharedSecret(viewPriv.D, ephPub)
	if secret[0] != a.ViewHint {
		return false, nil, nil
	}
	stealthPub, err := tweakedPubKey(spendPub, secret, a.K)
	if err != nil {
		return false, nil, err
	}
	if crypto.PubkeyToAddress(*stealthPub) != a.Address {
		return false, nil, nil
	}
	return true, stealthPub, nil
}
