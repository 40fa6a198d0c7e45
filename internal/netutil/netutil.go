// Package netutil provides the retry and throttling helpers shared by the
// oracle clients.
package netutil

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Retry runs fn up to attempts times with a fixed delay between tries.
// It returns nil on the first success and the last error once the budget is
// exhausted. The context cancels both the waits and the attempts.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := fn(ctx); err != nil {
			lastErr = err
			logrus.WithFields(logrus.Fields{
				"attempt": i + 1,
				"of":      attempts,
			}).Debugf("Retryable operation failed: %v", err)

			if i < attempts-1 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			continue
		}
		return nil
	}

	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

// Throttle paces calls so consecutive operations are at least interval apart.
// A zero interval disables pacing.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle creates a throttle with the given minimum spacing.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		return &Throttle{}
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call is allowed or the context is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.limiter == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}
