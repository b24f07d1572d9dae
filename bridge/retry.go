package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"

	"github.com/AmaanSayyad/Private-Pay-sub002/config"
	"github.com/AmaanSayyad/Private-Pay-sub002/logger"
)

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable: a timeout or connectivity failure on the
// bridge leg rather than a validation failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// RetryDispatcher wraps a Dispatcher with bounded exponential backoff over
// transient failures. Anything not marked Transient is returned immediately:
// validation and cryptographic failures are never retried.
type RetryDispatcher struct {
	next       Dispatcher
	maxRetries uint64
	initial    time.Duration
	max        time.Duration
}

// WithRetry wraps next with the dispatch retry budget from config.
func WithRetry(next Dispatcher) *RetryDispatcher {
	return WithRetryPolicy(next, config.DispatchMaxRetries, config.DispatchInitialBackoff, config.DispatchMaxBackoff)
}

// WithRetryPolicy wraps next with an explicit retry budget: up to maxRetries
// retries after the first attempt, with delays growing from initial to max.
func WithRetryPolicy(next Dispatcher, maxRetries uint64, initial, max time.Duration) *RetryDispatcher {
	return &RetryDispatcher{next: next, maxRetries: maxRetries, initial: initial, max: max}
}

func (r *RetryDispatcher) Address() common.Address {
	return r.next.Address()
}

func (r *RetryDispatcher) SendToStealthAddress(ctx context.Context, destinationChain string, stealthAddress common.Address, ephemeralPublicKey []byte, viewHint byte, k uint32, tokenIdentifier string, amount uint64) error {
	log := logger.Logger()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initial
	bo.MaxInterval = r.max

	op := func() error {
		err := r.next.SendToStealthAddress(ctx, destinationChain, stealthAddress, ephemeralPublicKey, viewHint, k, tokenIdentifier, amount)
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		log.Warn().Err(err).Dur("retryIn", next).Str("destinationChain", destinationChain).Msg("bridge dispatch failed, retrying")
	}
	return backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(bo, r.maxRetries), ctx), notify)
}
