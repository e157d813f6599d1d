// Package retry provides a declarative retry policy with exponential
// backoff and jitter, applied through a generic combinator.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Policy describes how an operation is retried. The zero value is not
// usable; start from DefaultPolicy.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt.
	BaseDelay time.Duration

	// MaxDelay caps the computed wait for any single attempt.
	MaxDelay time.Duration

	// Multiplier scales the delay between consecutive attempts.
	Multiplier float64

	// Jitter is the fractional random spread applied to each wait
	// (0.2 means ±20%).
	Jitter float64

	// Retryable classifies errors. When nil every error is retryable.
	// Context cancellation and deadline expiry are never retried,
	// regardless of this function.
	Retryable func(error) bool
}

// DefaultPolicy returns the engine's standard fetch policy: two
// attempts, one second base delay, ±20% jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.2,
	}
}

// Do runs op under the policy, sleeping between attempts. It returns
// the first success or the last error once attempts are exhausted or
// the error is classified non-retryable.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := range attempts {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !shouldRetry(p, err) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(p.wait(attempt)):
		}
	}

	return zero, lastErr
}

func shouldRetry(p Policy, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// wait computes the backoff for the given zero-based attempt.
func (p Policy) wait(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt))
	if ceil := float64(p.MaxDelay); p.MaxDelay > 0 && d > ceil {
		d = ceil
	}

	if p.Jitter > 0 {
		d += d * p.Jitter * (2*rand.Float64() - 1)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
