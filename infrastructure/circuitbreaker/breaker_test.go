package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	b := New(Config{FailureThreshold: 2, Timeout: time.Minute})
	ctx := context.Background()

	require.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, StateClosed, b.State())
	require.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(ctx, func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: 10 * time.Second})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	var transitions []string
	b.cfg.OnStateChange = func(from, to State) { transitions = append(transitions, from.String()+">"+to.String()) }

	require.Error(t, b.Execute(ctx, fail))
	now = now.Add(11 * time.Second)

	require.NoError(t, b.Execute(ctx, succeed))
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Execute(ctx, succeed))
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{"closed>open", "open>half-open", "half-open>closed"}, transitions)
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	b := New(Config{FailureThreshold: 1, Timeout: time.Second})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	require.Error(t, b.Execute(ctx, fail))
	now = now.Add(2 * time.Second)
	require.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_CancelledContextNotCounted(t *testing.T) {
	t.Parallel()

	b := New(Config{FailureThreshold: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = b.Execute(ctx, func() error { return ctx.Err() })
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	t.Parallel()

	b := New(Config{FailureThreshold: 1})
	require.Error(t, b.Execute(context.Background(), fail))
	require.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
}
