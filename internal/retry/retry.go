// Package retry runs an operation repeatedly with a fixed delay between
// attempts, honoring context cancellation.
package retry

import (
	"context"
	"time"
)

type Operation func(ctx context.Context) error

type Config struct {
	MaxAttempts int           // total attempts, including the first
	Delay       time.Duration // fixed wait between attempts
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Delay:       time.Second,
	}
}

// Do executes op until it succeeds or MaxAttempts is exhausted, returning
// the last error. A cancelled context wins over further attempts.
func Do(ctx context.Context, cfg Config, op Operation) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < cfg.MaxAttempts {
			select {
			case <-time.After(cfg.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}
