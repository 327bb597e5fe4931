package predictor

import (
	"context"
	"errors"
	"time"

	"github.com/lalo8115/proyecto-vuelos/internal/backoff"
	"github.com/lalo8115/proyecto-vuelos/internal/features"
)

// RetryConfig bounds retries of transient model server failures.
type RetryConfig = backoff.Policy

// DefaultRetryConfig is used when the configuration leaves retries unset.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 200 * time.Millisecond,
		MaxWait:     2 * time.Second,
		Multiplier:  2.0,
	}
}

type retryPredictor struct {
	inner  Predictor
	policy RetryConfig
}

// WithRetry retries outages and rate limits. Bad responses fail at once.
func WithRetry(p Predictor, cfg RetryConfig) Predictor {
	return &retryPredictor{inner: p, policy: cfg}
}

func (r *retryPredictor) Predict(ctx context.Context, v features.Vector) (float64, error) {
	var prob float64
	err := backoff.Do(ctx, r.policy, transient, func() error {
		var err error
		prob, err = r.inner.Predict(ctx, v)
		return err
	})
	if err != nil {
		return 0, err
	}
	return prob, nil
}

func transient(err error) bool {
	var rl *ErrRateLimit
	var unavail *ErrUnavailable
	return errors.As(err, &rl) || errors.As(err, &unavail)
}
