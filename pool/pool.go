// Package pool implements the fixed-denomination shielded commitment pool.
// Deposits insert commitments into an incremental Merkle tree; withdrawals
// release funds against a zero-knowledge membership proof plus a single-use
// nullifier, dispatching the payout to a stealth destination through a
// bridge adapter. Deposit and withdrawal are unlinkable beyond "a withdrawal
// happened sometime after some deposit into the same pool".
package pool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/AmaanSayyad/Private-Pay-sub002/bridge"
	"github.com/AmaanSayyad/Private-Pay-sub002/config"
	"github.com/AmaanSayyad/Private-Pay-sub002/logger"
)

// ProofVerifier checks a withdrawal proof against its public inputs.
type ProofVerifier interface {
	VerifyWithdrawal(proof, root, nullifierHash, extDataHash []byte) error
}

// BridgeMode selects which configured dispatcher carries the payout.
type BridgeMode int

const (
	BridgeDirect BridgeMode = iota
	BridgeTokenService
)

func (m BridgeMode) String() string {
	switch m {
	case BridgeDirect:
		return "direct"
	case BridgeTokenService:
		return "token_service"
	default:
		return "unknown"
	}
}

// Config wires the pool's collaborators. Token and Verifier are required; a
// nil dispatcher disables its bridge mode. A zero Tree falls back to the
// protocol tree configuration.
type Config struct {
	Denomination    uint64
	RootHistorySize int
	Tree            config.TreeConfig
	PoolAddress     common.Address
	Token           Token
	Verifier        ProofVerifier
	Direct          bridge.Dispatcher
	TokenService    bridge.Dispatcher
	Metrics         prometheus.Registerer
}

// DefaultConfig returns the protocol defaults; the caller still supplies the
// collaborators.
func DefaultConfig() Config {
	return Config{
		Denomination:    config.DefaultDenomination,
		RootHistorySize: config.RootsCount,
		Tree:            config.Tree,
	}
}

// Pool holds the commitment tree, the recent-root ring and the nullifier
// set. Entry points run one at a time, mirroring the serialized-transaction
// model of the host chain the contract form of this pool runs on.
type Pool struct {
	mu     sync.Mutex
	holder atomic.Uint64 // goroutine id of the running transaction, 0 when idle

	cfg        Config
	tree       *incrementalTree
	roots      *rootHistory
	nullifiers map[string]bool

	deposits    []DepositRecord
	withdrawals []WithdrawalRecord

	metrics *poolMetrics
	log     zerolog.Logger
}

// DepositRecord is emitted for every accepted deposit. Replaying records in
// leaf order through merkle.Tree rebuilds the pool's tree exactly.
type DepositRecord struct {
	Commitment hexutil.Bytes `json:"commitment"`
	LeafIndex  int           `json:"leafIndex"`
	Timestamp  time.Time     `json:"timestamp"`
}

// WithdrawalRecord is emitted for every completed withdrawal.
type WithdrawalRecord struct {
	NullifierHash    hexutil.Bytes  `json:"nullifierHash"`
	Relayer          common.Address `json:"relayer"`
	DestinationChain string         `json:"destinationChain"`
	StealthAddress   common.Address `json:"stealthAddress"`
	AmountToBridge   uint64         `json:"amountToBridge"`
	RelayerFee       uint64         `json:"relayerFee"`
}

// WithdrawalRequest carries the public withdrawal parameters and the proof.
// Everything except Root, NullifierHash and Proof is bound into the proof's
// external-data hash, so none of it can change after proving.
type WithdrawalRequest struct {
	Root             hexutil.Bytes
	NullifierHash    hexutil.Bytes
	RelayerFee       uint64
	DestinationChain string
	StealthAddress   common.Address
	EphemeralPubKey  hexutil.Bytes
	ViewHint         byte
	K                uint32
	Mode             BridgeMode
	TokenID          string
	Proof            hexutil.Bytes
}

func New(cfg Config) (*Pool, error) {
	if cfg.Token == nil {
		return nil, errors.New("pool: token backend is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("pool: proof verifier is required")
	}
	if cfg.Denomination == 0 {
		cfg.Denomination = config.DefaultDenomination
	}
	if cfg.RootHistorySize <= 0 {
		cfg.RootHistorySize = config.RootsCount
	}
	if cfg.Tree.Depth == 0 {
		cfg.Tree = config.Tree
	}
	tree := newIncrementalTree(cfg.Tree, config.Hash)
	return &Pool{
		cfg:        cfg,
		tree:       tree,
		roots:      newRootHistory(cfg.RootHistorySize, tree.root),
		nullifiers: make(map[string]bool),
		metrics:    newPoolMetrics(cfg.Metrics),
		log:        logger.Logger().With().Str("component", "pool").Logger(),
	}, nil
}

// enter serializes transactions and rejects reentrancy. A token or dispatcher
// callback re-enters on the goroutine that already holds the lock, where
// blocking on Lock would deadlock; comparing goroutine ids tells such a
// callback apart from an independent caller, which simply queues and then
// runs against the committed state.
func (p *Pool) enter() error {
	gid := goroutineID()
	if p.holder.Load() == gid {
		return ErrReentrantCall
	}
	p.mu.Lock()
	p.holder.Store(gid)
	return nil
}

func (p *Pool) leave() {
	p.holder.Store(0)
	p.mu.Unlock()
}

// goroutineID parses the id from the current goroutine's stack header
// ("goroutine 123 [running]: ..."). Ids are unique among live goroutines and
// never zero.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := buf[len("goroutine "):n]
	end := bytes.IndexByte(header, ' ')
	id, err := strconv.ParseUint(string(header[:end]), 10, 64)
	if err != nil {
		panic(fmt.Sprintf("failed to parse goroutine id: %v", err))
	}
	return id
}

// Deposit pulls one denomination from the depositor and inserts commitment
// into the tree. Validation precedes the funds movement, so a rejected
// deposit leaves both the tree and the depositor untouched.
func (p *Pool) Deposit(ctx context.Context, depositor common.Address, commitment []byte) (*DepositRecord, error) {
	if err := p.enter(); err != nil {
		p.metrics.reject("deposit", err)
		return nil, err
	}
	defer p.leave()

	if err := checkFieldElement(commitment); err != nil {
		p.metrics.reject("deposit", err)
		return nil, fmt.Errorf("commitment: %w", err)
	}
	if p.tree.full() {
		p.metrics.reject("deposit", ErrTreeFull)
		return nil, ErrTreeFull
	}
	if err := p.cfg.Token.TransferFrom(p.cfg.PoolAddress, depositor, p.cfg.PoolAddress, p.cfg.Denomination); err != nil {
		p.metrics.reject("deposit", err)
		return nil, fmt.Errorf("failed to collect deposit: %w", err)
	}

	index, root := p.tree.insert(commitment)
	p.roots.push(root)

	rec := DepositRecord{
		Commitment: append(hexutil.Bytes(nil), commitment...),
		LeafIndex:  index,
		Timestamp:  time.Now().UTC(),
	}
	p.deposits = append(p.deposits, rec)
	p.metrics.deposits.Inc()
	p.metrics.leaves.Set(float64(p.tree.size()))
	p.log.Info().Int("leafIndex", index).Str("root", hexutil.Encode(root)).Msg("deposit accepted")
	return &rec, nil
}

// Withdraw releases one denomination against a membership proof: the payout
// net of the relayer fee is dispatched to the stealth destination and the
// nullifier is spent. State commits only after the dispatcher succeeds;
// any earlier failure leaves no observable change.
func (p *Pool) Withdraw(ctx context.Context, relayer common.Address, req *WithdrawalRequest) (*WithdrawalRecord, error) {
	if err := p.enter(); err != nil {
		p.metrics.reject("withdraw", err)
		return nil, err
	}
	defer p.leave()

	if err := checkFieldElement(req.Root); err != nil {
		p.metrics.reject("withdraw", err)
		return nil, fmt.Errorf("root: %w", err)
	}
	if err := checkFieldElement(req.NullifierHash); err != nil {
		p.metrics.reject("withdraw", err)
		return nil, fmt.Errorf("nullifier hash: %w", err)
	}
	if !p.roots.known(req.Root) {
		p.metrics.reject("withdraw", ErrUnknownRoot)
		return nil, ErrUnknownRoot
	}
	if p.nullifiers[string(req.NullifierHash)] {
		p.metrics.reject("withdraw", ErrNullifierAlreadyUsed)
		return nil, ErrNullifierAlreadyUsed
	}
	if req.RelayerFee > p.cfg.Denomination {
		p.metrics.reject("withdraw", ErrInvalidRelayerFee)
		return nil, ErrInvalidRelayerFee
	}
	dispatcher, err := p.dispatcher(req.Mode)
	if err != nil {
		p.metrics.reject("withdraw", err)
		return nil, err
	}

	amountToBridge := p.cfg.Denomination - req.RelayerFee
	extData := &ExtData{
		DestinationChain: req.DestinationChain,
		StealthAddress:   req.StealthAddress,
		EphemeralPubKey:  req.EphemeralPubKey,
		ViewHint:         req.ViewHint,
		K:                req.K,
		AmountToBridge:   amountToBridge,
		RelayerFee:       req.RelayerFee,
		BridgeAddress:    dispatcher.Address(),
		TokenID:          req.TokenID,
	}
	if err := p.cfg.Verifier.VerifyWithdrawal(req.Proof, req.Root, req.NullifierHash, extData.Hash()); err != nil {
		p.metrics.reject("withdraw", ErrInvalidProof)
		return nil, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}

	// Funds move in two legs: fee to the relayer, payout pulled by the
	// dispatcher. The fee leg is reversed if the dispatch fails, so a failed
	// withdrawal commits nothing; a reversal that itself fails is reported
	// back to the caller rather than only logged.
	if req.RelayerFee > 0 {
		if err := p.cfg.Token.Transfer(p.cfg.PoolAddress, relayer, req.RelayerFee); err != nil {
			p.metrics.reject("withdraw", err)
			return nil, fmt.Errorf("failed to pay relayer fee: %w", err)
		}
	}
	if err := p.dispatch(ctx, dispatcher, req, amountToBridge); err != nil {
		p.metrics.reject("withdraw", ErrDispatchFailed)
		if req.RelayerFee > 0 {
			if rbErr := p.cfg.Token.Transfer(relayer, p.cfg.PoolAddress, req.RelayerFee); rbErr != nil {
				p.log.Error().Err(rbErr).Msg("failed to reverse relayer fee")
				return nil, fmt.Errorf("%w: %v (relayer fee reversal failed: %v)", ErrDispatchFailed, err, rbErr)
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	p.nullifiers[string(req.NullifierHash)] = true
	rec := WithdrawalRecord{
		NullifierHash:    append(hexutil.Bytes(nil), req.NullifierHash...),
		Relayer:          relayer,
		DestinationChain: req.DestinationChain,
		StealthAddress:   req.StealthAddress,
		AmountToBridge:   amountToBridge,
		RelayerFee:       req.RelayerFee,
	}
	p.withdrawals = append(p.withdrawals, rec)
	p.metrics.withdrawals.WithLabelValues(req.Mode.String()).Inc()
	p.log.Info().
		Str("nullifier", hexutil.Encode(req.NullifierHash)).
		Str("mode", req.Mode.String()).
		Uint64("amountToBridge", amountToBridge).
		Uint64("relayerFee", req.RelayerFee).
		Msg("withdrawal dispatched")
	return &rec, nil
}

func (p *Pool) dispatcher(mode BridgeMode) (bridge.Dispatcher, error) {
	var d bridge.Dispatcher
	switch mode {
	case BridgeDirect:
		d = p.cfg.Direct
	case BridgeTokenService:
		d = p.cfg.TokenService
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotConfiguredForMode, mode)
	}
	return d, nil
}

// dispatch approves the dispatcher for the payout and hands it the leg. The
// approval is cleared again on failure.
func (p *Pool) dispatch(ctx context.Context, d bridge.Dispatcher, req *WithdrawalRequest, amount uint64) error {
	if err := p.cfg.Token.Approve(p.cfg.PoolAddress, d.Address(), amount); err != nil {
		return fmt.Errorf("failed to approve payout: %w", err)
	}
	if err := d.SendToStealthAddress(ctx, req.DestinationChain, req.StealthAddress, req.EphemeralPubKey, req.ViewHint, req.K, req.TokenID, amount); err != nil {
		if clearErr := p.cfg.Token.Approve(p.cfg.PoolAddress, d.Address(), 0); clearErr != nil {
			p.log.Error().Err(clearErr).Msg("failed to clear payout approval")
		}
		return err
	}
	return nil
}

// LatestRoot returns the most recent tree root.
func (p *Pool) LatestRoot() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.roots.latest()...)
}

// Roots returns the root history, newest first.
func (p *Pool) Roots() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roots.snapshot()
}

// IsKnownRoot reports whether root is still within the provable window.
func (p *Pool) IsKnownRoot(root []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roots.known(root)
}

// IsSpent reports whether a nullifier hash has been used.
func (p *Pool) IsSpent(nullifierHash []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nullifiers[string(nullifierHash)]
}

// NumLeaves returns the number of commitments deposited so far.
func (p *Pool) NumLeaves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.size()
}

// Denomination returns the fixed deposit amount.
func (p *Pool) Denomination() uint64 {
	return p.cfg.Denomination
}

// Address returns the pool's token account.
func (p *Pool) Address() common.Address {
	return p.cfg.PoolAddress
}

// Deposits returns the deposit records, oldest first.
func (p *Pool) Deposits() []DepositRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]DepositRecord(nil), p.deposits...)
}

// Withdrawals returns the withdrawal records, oldest first.
func (p *Pool) Withdrawals() []WithdrawalRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]WithdrawalRecord(nil), p.withdrawals...)
}
