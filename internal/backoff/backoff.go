// Package backoff runs an operation until it succeeds, with exponential
// waits between attempts. The model client and the advisory LLM share it.
package backoff

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Policy bounds the attempts and the wait between them.
type Policy struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// Hinter is implemented by errors carrying a server-requested wait,
// usually from a Retry-After header.
type Hinter interface {
	RetryAfterHint() time.Duration
}

// Delay returns the wait after the given zero-based attempt. A hint on
// err wins over the computed wait.
func (p Policy) Delay(attempt int, err error) time.Duration {
	var h Hinter
	if errors.As(err, &h) {
		if d := h.RetryAfterHint(); d > 0 {
			return d
		}
	}

	wait := float64(p.InitialWait) * math.Pow(p.Multiplier, float64(attempt))
	wait = min(wait, float64(p.MaxWait))
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}

// Do calls op until it returns nil, retry rejects the error, the attempts
// run out, or ctx ends. Context errors are never retried. The last
// operation error is returned, or ctx.Err() if ctx ended while waiting.
func Do(ctx context.Context, p Policy, retry func(error) bool, op func() error) error {
	attempts := max(p.MaxAttempts, 1)

	var err error
	for attempt := range attempts {
		if err = op(); err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || !retry(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		t := time.NewTimer(p.Delay(attempt, err))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}
