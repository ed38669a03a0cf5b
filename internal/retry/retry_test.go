package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("session unavailable")

func fastPolicy(maxAttempts uint) Policy {
	return Policy{
		MaxAttempts:     maxAttempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Retryable:       func(err error) bool { return errors.Is(err, errTransient) },
	}
}

func TestPolicy_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := fastPolicy(5).Do(ctx, func(context.Context) error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-transient error stops immediately", func(t *testing.T) {
		permanent := errors.New("constraint violation")
		calls := 0
		err := fastPolicy(5).Do(ctx, func(context.Context) error {
			calls++
			return permanent
		})
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := fastPolicy(3).Do(ctx, func(context.Context) error {
			calls++
			return errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, calls)
	})

	t.Run("nil predicate retries nothing", func(t *testing.T) {
		p := fastPolicy(5)
		p.Retryable = nil
		calls := 0
		err := p.Do(ctx, func(context.Context) error {
			calls++
			return errTransient
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("context errors are not retried", func(t *testing.T) {
		p := fastPolicy(5)
		p.Retryable = func(error) bool { return true }
		calls := 0
		err := p.Do(ctx, func(context.Context) error {
			calls++
			return context.DeadlineExceeded
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, calls)
	})

	t.Run("notifies before each retry", func(t *testing.T) {
		p := fastPolicy(3)
		notified := 0
		p.OnRetry = func(err error, _ time.Duration) {
			assert.ErrorIs(t, err, errTransient)
			notified++
		}
		_ = p.Do(ctx, func(context.Context) error { return errTransient })
		assert.Equal(t, 2, notified)
	})
}

func TestValue(t *testing.T) {
	calls := 0
	got, err := Value(context.Background(), fastPolicy(4), func(context.Context) ([]string, error) {
		calls++
		if calls == 1 {
			return nil, errTransient
		}
		return []string{"a", "b"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, calls)
}

func TestDefault(t *testing.T) {
	p := Default(nil)
	assert.Equal(t, uint(10), p.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, p.InitialInterval)
	assert.Equal(t, 5*time.Second, p.MaxInterval)
}
