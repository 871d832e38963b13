// Package retry wraps spreadsheet reads in a classification-aware retry
// loop. Quota errors wait out the longer rate-limit backoff, flaky
// transport errors take the normal doubling backoff, and client-side
// mistakes (bad range, bad credentials) abort on the spot.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Action is the classifier's verdict on a failed attempt.
type Action int

const (
	// Stop aborts immediately; retrying cannot help.
	Stop Action = iota
	// Retry schedules another attempt after the normal backoff.
	Retry
	// After schedules another attempt after the rate-limit backoff.
	After
)

// Classify maps an attempt's error to the action to take next.
type Classify func(err error) Action

// Policy bounds the retry loop. A MaxAttempts below one is treated as one.
type Policy struct {
	MaxAttempts      int
	InitialBackoff   time.Duration
	RateLimitBackoff time.Duration

	// OnRetry fires before each wait, never on the final failure.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

type Operation[T any] func() (T, error)
type VoidOperation func() error

// Do runs op until it succeeds, the classifier aborts, the policy is
// exhausted, or the context is cancelled mid-wait. The normal backoff
// doubles per attempt; a rate-limit verdict resets it to the longer
// RateLimitBackoff before the wait.
func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.InitialBackoff

	for attempt := 1; ; attempt++ {
		val, err := op()
		if err == nil {
			return val, nil
		}

		switch classify(err) {
		case Stop:
			return zero, &PermanentError{Err: err}
		case After:
			backoff = p.RateLimitBackoff
		}

		if attempt == attempts {
			return zero, fmt.Errorf("giving up after %d attempts: %w", attempts, err)
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return zero, fmt.Errorf("retry interrupted: %w", ctx.Err())
		}
		backoff *= 2
	}
}

// DoVoid is Do for operations with no result value.
func DoVoid(ctx context.Context, p Policy, classify Classify, op VoidOperation) error {
	_, err := Do(ctx, p, classify, func() (struct{}, error) { return struct{}{}, op() })
	return err
}

// PermanentError marks a failure the classifier ruled out of retrying.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
