package pool

import "errors"

// Every rejection aborts the whole call: no partial tree, nullifier or
// balance update is ever observable behind one of these.
var (
	ErrInvalidFieldElement      = errors.New("pool: value is not a canonical field element")
	ErrTreeFull                 = errors.New("pool: commitment tree is full")
	ErrUnknownRoot              = errors.New("pool: root is not in the recent root history")
	ErrNullifierAlreadyUsed     = errors.New("pool: nullifier has already been spent")
	ErrInvalidProof             = errors.New("pool: withdrawal proof is invalid")
	ErrInvalidRelayerFee        = errors.New("pool: relayer fee exceeds the denomination")
	ErrPoolNotConfiguredForMode = errors.New("pool: requested bridge mode is not configured")
	ErrDispatchFailed           = errors.New("pool: bridge dispatch failed")
	ErrReentrantCall            = errors.New("pool: reentrant call")

	ErrInsufficientBalance   = errors.New("pool: insufficient token balance")
	ErrInsufficientAllowance = errors.New("pool: insufficient token allowance")
)
