package llm

import (
	"context"
	"errors"

	"github.com/lalo8115/proyecto-vuelos/internal/backoff"
)

type retryProvider struct {
	inner  Provider
	policy RetryConfig
}

// WithRetry retries rate limits and outages. A response that fails schema
// validation gets one more try.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retryProvider{inner: p, policy: cfg}
}

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	invalidSeen := false
	retry := func(err error) bool {
		var inv *ErrInvalidResponse
		if errors.As(err, &inv) {
			if invalidSeen {
				return false
			}
			invalidSeen = true
			return true
		}
		var rl *ErrRateLimit
		var down *ErrProviderUnavailable
		return errors.As(err, &rl) || errors.As(err, &down)
	}

	var resp *Response
	err := backoff.Do(ctx, r.policy, retry, func() error {
		var err error
		resp, err = r.inner.Generate(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *retryProvider) ModelID() string {
	return r.inner.ModelID()
}
