package pool

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/AmaanSayyad/Private-Pay-sub002/bridge"
	"github.com/AmaanSayyad/Private-Pay-sub002/config"
	"github.com/AmaanSayyad/Private-Pay-sub002/merkle"
	"github.com/AmaanSayyad/Private-Pay-sub002/note"
	"github.com/AmaanSayyad/Private-Pay-sub002/stealth"
	"github.com/AmaanSayyad/Private-Pay-sub002/zk"
)

var (
	zkOnce      sync.Once
	zkArtifacts *zk.Artifacts
	zkErr       error
)

func groth16Artifacts(t *testing.T) *zk.Artifacts {
	t.Helper()
	zkOnce.Do(func() {
		zkArtifacts, zkErr = zk.Setup()
	})
	if zkErr != nil {
		t.Fatalf("failed to set up circuit: %v", zkErr)
	}
	return zkArtifacts
}

// The whole journey under real proofs: a payer derives a stealth destination
// for the recipient and deposits a note; a relayer withdraws it with a
// Groth16 membership proof and the bridge records the destination leg; the
// recipient's scanner finds the leg and recovers the key that controls the
// stealth address. A relayer who tampers with the destination is rejected,
// and so is a replay of the spent note.
func TestEndToEndPrivatePayment(t *testing.T) {
	a := groth16Artifacts(t)
	ctx := context.Background()

	meta, keys, err := stealth.GenerateMetaAddress()
	if err != nil {
		t.Fatalf("Failed to generate meta-address: %v", err)
	}
	eph, err := stealth.NewEphemeralKey()
	if err != nil {
		t.Fatalf("Failed to generate ephemeral key: %v", err)
	}
	payment, err := stealth.DeriveStealthAddress(meta, eph, 3)
	if err != nil {
		t.Fatalf("Failed to derive stealth address: %v", err)
	}

	ledger := NewLedger()
	direct := bridge.NewDirectBridge(ledger, bridgeAddr, poolAddr)
	p, err := New(Config{
		Denomination: 10,
		PoolAddress:  poolAddr,
		Token:        ledger,
		Verifier:     zk.NewVerifier(a.VK),
		Direct:       direct,
	})
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}

	n, err := note.New(10, poolAddr)
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}
	ledger.Mint(depositor, 10)
	if err := ledger.Approve(depositor, poolAddr, 10); err != nil {
		t.Fatalf("Failed to approve pool: %v", err)
	}
	rec, err := p.Deposit(ctx, depositor, n.Commitment)
	if err != nil {
		t.Fatalf("Failed to deposit: %v", err)
	}
	n.LeafIndex = rec.LeafIndex

	// the withdrawer rebuilds the tree from the deposit records
	client := merkle.NewTree(config.Tree, config.Hash)
	for _, d := range p.Deposits() {
		client.AddLeaf(d.Commitment)
	}
	if !bytes.Equal(client.Root(), p.LatestRoot()) {
		t.Fatal("Client tree root diverged from the pool root")
	}

	root := client.Root()
	path, err := client.Proof(n.InnerCommitment(), n.LeafIndex)
	if err != nil {
		t.Fatalf("Failed to build merkle path: %v", err)
	}

	extData := &ExtData{
		DestinationChain: "ethereum",
		StealthAddress:   payment.Address,
		EphemeralPubKey:  payment.EphemeralPubKey,
		ViewHint:         payment.ViewHint,
		K:                payment.K,
		AmountToBridge:   9,
		RelayerFee:       1,
		BridgeAddress:    direct.Address(),
	}
	proof, err := zk.NewProver(a).Prove(n, path, root, extData.Hash())
	if err != nil {
		t.Fatalf("Failed to prove: %v", err)
	}

	req := &WithdrawalRequest{
		Root:             root,
		NullifierHash:    n.NullifierHash(),
		RelayerFee:       1,
		DestinationChain: "ethereum",
		StealthAddress:   payment.Address,
		EphemeralPubKey:  payment.EphemeralPubKey,
		ViewHint:         payment.ViewHint,
		K:                payment.K,
		Mode:             BridgeDirect,
		Proof:            proof,
	}

	// a relayer redirecting the payout changes the bound parameters and the
	// proof no longer verifies
	hijacked := *req
	hijacked.StealthAddress = common.HexToAddress("0x66")
	if _, err := p.Withdraw(ctx, relayer, &hijacked); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("Expected ErrInvalidProof for a redirected payout, got %v", err)
	}

	wrec, err := p.Withdraw(ctx, relayer, req)
	if err != nil {
		t.Fatalf("Failed to withdraw: %v", err)
	}
	if wrec.AmountToBridge != 9 || wrec.RelayerFee != 1 {
		t.Fatalf("Unexpected withdrawal record: %+v", wrec)
	}
	if ledger.BalanceOf(relayer) != 1 || ledger.BalanceOf(bridgeAddr) != 9 {
		t.Fatalf("Unexpected balances: relayer=%d bridge=%d", ledger.BalanceOf(relayer), ledger.BalanceOf(bridgeAddr))
	}

	if _, err := p.Withdraw(ctx, relayer, req); !errors.Is(err, ErrNullifierAlreadyUsed) {
		t.Fatalf("Expected ErrNullifierAlreadyUsed on replay, got %v", err)
	}

	// the recipient scans the dispatched legs and finds the payment
	legs := direct.Legs()
	announcements := make([]stealth.Announcement, 0, len(legs))
	for _, l := range legs {
		announcements = append(announcements, l.Announcement())
	}
	scanner, err := stealth.NewScanner(keys.ViewKey, meta.SpendPubKey, 2)
	if err != nil {
		t.Fatalf("Failed to create scanner: %v", err)
	}
	matches, err := scanner.ScanSlice(ctx, announcements)
	if err != nil {
		t.Fatalf("Failed to scan: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected exactly one match, got %d", len(matches))
	}
	got := matches[0].Announcement
	if got.Address != payment.Address || got.Amount != 9 {
		t.Fatalf("Unexpected match: %+v", got)
	}

	// and recovers the key that controls the destination
	priv, err := stealth.RecoverStealthPrivateKey(keys.ViewKey, keys.SpendKey, got.EphemeralPubKey, got.K)
	if err != nil {
		t.Fatalf("Failed to recover stealth private key: %v", err)
	}
	if crypto.PubkeyToAddress(priv.PublicKey) != payment.Address {
		t.Fatal("Recovered key does not control the stealth address")
	}
}
