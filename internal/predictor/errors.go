package predictor

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable indicates the model server is down, unreachable or
// returned a server error. These are retried.
type ErrUnavailable struct {
	StatusCode int
	Err        error
}

func (e *ErrUnavailable) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model server unavailable (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model server unavailable: %v", e.Err)
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrRateLimit indicates the model server asked us to slow down.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("model server rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

func (e *ErrRateLimit) RetryAfterHint() time.Duration { return e.RetryAfter }

// ErrBadResponse indicates the server answered but not with a usable
// probability. Not retried.
type ErrBadResponse struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ErrBadResponse) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("bad model response (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("bad model response: %v", e.Err)
}

func (e *ErrBadResponse) Unwrap() error { return e.Err }

var errNoResponses = errors.New("mock has no queued responses")
