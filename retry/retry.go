// Package retry provides generic retry with exponential backoff for
// transient facilitator and network failures. Backoff sleeps respect context
// cancellation.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config holds retry configuration.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// InitialDelay is the backoff before the first retry. Subsequent delays
	// double, capped at MaxDelay.
	InitialDelay time.Duration

	// MaxDelay caps the backoff.
	MaxDelay time.Duration
}

// DefaultConfig matches the agent's payment retry policy: two retries with a
// one-second doubling backoff.
var DefaultConfig = Config{
	MaxRetries:   2,
	InitialDelay: 1 * time.Second,
	MaxDelay:     30 * time.Second,
}

// IsRetryable reports whether an error should trigger another attempt.
type IsRetryable func(error) bool

// Do runs fn up to 1+MaxRetries times, backing off exponentially between
// attempts. Non-retryable errors and context cancellation end the loop
// immediately.
func Do[T any](ctx context.Context, cfg Config, isRetryable IsRetryable, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("retry aborted: %w", err)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return zero, err
		}

		if attempt < cfg.MaxRetries {
			select {
			case <-time.After(delay):
				delay *= 2
				if delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}

	return zero, fmt.Errorf("retries exhausted: %w", lastErr)
}
