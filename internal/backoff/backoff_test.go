package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Policy{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}

type hinted struct{ wait time.Duration }

func (h hinted) Error() string                 { return "slow down" }
func (h hinted) RetryAfterHint() time.Duration { return h.wait }

func always(error) bool { return true }

func TestDo_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, always, func() error {
		calls++
		if calls < 2 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, always, func() error {
		calls++
		return errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)
}

func TestDo_RetryRejects(t *testing.T) {
	permanent := errors.New("bad input")
	calls := 0
	err := Do(context.Background(), fast, func(e error) bool { return !errors.Is(e, permanent) }, func() error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextErrorsNotRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, always, func() error {
		calls++
		return context.DeadlineExceeded
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestDo_CanceledWhileWaiting(t *testing.T) {
	slow := fast
	slow.InitialWait, slow.MaxWait = time.Hour, time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, slow, always, func() error { return errors.New("down") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_ZeroAttemptsMeansOne(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), Policy{}, always, func() error {
		calls++
		return errors.New("down")
	})
	assert.Equal(t, 1, calls)
}

func TestDelay(t *testing.T) {
	p := Policy{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}

	first := p.Delay(0, errors.New("x"))
	assert.InDelta(t, float64(100*time.Millisecond), float64(first), float64(20*time.Millisecond))

	capped := p.Delay(5, errors.New("x"))
	assert.LessOrEqual(t, capped, 360*time.Millisecond)

	assert.Equal(t, 7*time.Second, p.Delay(0, hinted{wait: 7 * time.Second}))
	assert.InDelta(t, float64(100*time.Millisecond), float64(p.Delay(0, hinted{})), float64(20*time.Millisecond))
}
