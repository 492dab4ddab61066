package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreaker(threshold int, resetTimeout time.Duration) (*CircuitBreaker, *time.Time) {
	now := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: threshold,
		ResetTimeout:     resetTimeout,
	})
	cb.nowFunc = func() time.Time { return now }
	return cb, &now
}

func TestCircuitOpensAfterThreshold(t *testing.T) {
	cb, _ := testBreaker(3, time.Minute)
	boom := eris.New("lookup failed")

	for i := 0; i < 3; i++ {
		err := cb.Execute(context.Background(), func(context.Context) error { return boom })
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrCircuitOpen))
	}

	err := cb.Execute(context.Background(), func(context.Context) error {
		t.Fatal("open circuit must not call through")
		return nil
	})
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuitSuccessResetsFailureCount(t *testing.T) {
	cb, _ := testBreaker(3, time.Minute)
	boom := eris.New("lookup failed")

	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), func(context.Context) error { return boom })
	}
	require.NoError(t, cb.Execute(context.Background(), func(context.Context) error { return nil }))

	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), func(context.Context) error { return boom })
	}
	assert.Equal(t, CircuitClosed, cb.State(), "counter restarted after success")
}

func TestCircuitHalfOpenProbeRecovers(t *testing.T) {
	cb, now := testBreaker(1, 30*time.Second)
	_ = cb.Execute(context.Background(), func(context.Context) error { return eris.New("down") })
	require.Equal(t, CircuitOpen, cb.State())

	*now = now.Add(31 * time.Second)
	assert.Equal(t, CircuitHalfOpen, cb.State())

	require.NoError(t, cb.Execute(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitHalfOpenProbeFailureReopens(t *testing.T) {
	cb, now := testBreaker(1, 30*time.Second)
	_ = cb.Execute(context.Background(), func(context.Context) error { return eris.New("down") })

	*now = now.Add(31 * time.Second)
	err := cb.Execute(context.Background(), func(context.Context) error { return eris.New("still down") })
	require.Error(t, err)
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuitShouldTripFilter(t *testing.T) {
	var te *TransientError
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     time.Minute,
		ShouldTrip:       func(err error) bool { return errors.As(err, &te) },
	})

	_ = cb.Execute(context.Background(), func(context.Context) error {
		return eris.New("permanent, does not trip")
	})
	assert.Equal(t, CircuitClosed, cb.State())

	_ = cb.Execute(context.Background(), func(context.Context) error {
		return NewTransientError(eris.New("503"), 503)
	})
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuitReset(t *testing.T) {
	cb, _ := testBreaker(1, time.Hour)
	_ = cb.Execute(context.Background(), func(context.Context) error { return eris.New("down") })
	require.Equal(t, CircuitOpen, cb.State())

	cb.Reset()
	assert.Equal(t, CircuitClosed, cb.State())
	require.NoError(t, cb.Execute(context.Background(), func(context.Context) error { return nil }))
}

func TestExecuteValPassesValueThrough(t *testing.T) {
	cb, _ := testBreaker(5, time.Minute)
	val, err := ExecuteVal(context.Background(), cb, func(context.Context) (string, error) {
		return "forsikringsavtaleloven § 4-2", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "forsikringsavtaleloven § 4-2", val)
}

func TestCircuitStateChangeCallback(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     time.Hour,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	_ = cb.Execute(context.Background(), func(context.Context) error { return eris.New("down") })
	assert.Equal(t, []string{"closed->open"}, transitions)
}
