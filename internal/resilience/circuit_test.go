package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transientErr() error {
	return NewTransientError(eris.New("backend down"), 503)
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := ExecuteVal(context.Background(), cb, func(ctx context.Context) (int, error) {
			return 0, transientErr()
		})
		require.Error(t, err)
	}
	assert.Equal(t, CircuitOpen, cb.State())

	_, err := ExecuteVal(context.Background(), cb, func(ctx context.Context) (int, error) {
		t.Fatal("fn must not run while open")
		return 0, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_NonTransientDoesNotTrip(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	for i := 0; i < 10; i++ {
		_, _ = ExecuteVal(context.Background(), cb, func(ctx context.Context) (int, error) {
			return 0, eris.New("malformed response")
		})
	}
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeRecovers(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Second)
	now := time.Now()
	cb.nowFunc = func() time.Time { return now }

	_, _ = ExecuteVal(context.Background(), cb, func(ctx context.Context) (int, error) {
		return 0, transientErr()
	})
	require.Equal(t, CircuitOpen, cb.State())

	// Advance past the reset timeout; the next call is a probe.
	now = now.Add(11 * time.Second)
	assert.Equal(t, CircuitHalfOpen, cb.State())

	val, err := ExecuteVal(context.Background(), cb, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, val)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Second)
	now := time.Now()
	cb.nowFunc = func() time.Time { return now }

	_, _ = ExecuteVal(context.Background(), cb, func(ctx context.Context) (int, error) {
		return 0, transientErr()
	})
	now = now.Add(11 * time.Second)

	_, err := ExecuteVal(context.Background(), cb, func(ctx context.Context) (int, error) {
		return 0, transientErr()
	})
	require.Error(t, err)
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuitBreaker_SuccessResetsCounter(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	for i := 0; i < 2; i++ {
		_, _ = ExecuteVal(context.Background(), cb, func(ctx context.Context) (int, error) {
			return 0, transientErr()
		})
	}
	_, err := ExecuteVal(context.Background(), cb, func(ctx context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	// Two more failures should not reach the threshold of three.
	for i := 0; i < 2; i++ {
		_, _ = ExecuteVal(context.Background(), cb, func(ctx context.Context) (int, error) {
			return 0, transientErr()
		})
	}
	assert.Equal(t, CircuitClosed, cb.State())
}
