package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zhuiying-client/internal/logging"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	return NewCircuitBreaker(&Config{
		Name:             "test",
		MaxFailures:      2,
		Timeout:          time.Minute,
		HalfOpenMaxCalls: 1,
		Now:              clock.Now,
	})
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	clock := &fakeClock{now: time.Unix(0, 0)}
	cb := newTestBreaker(clock)
	boom := errors.New("boom")
	fail := func() error { return boom }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Execute(ctx, fail), boom)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.ErrorIs(t, cb.Execute(ctx, fail), boom)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(ctx, func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	clock.now = clock.now.Add(2 * time.Minute)
	assert.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	clock := &fakeClock{now: time.Unix(0, 0)}
	cb := newTestBreaker(clock)
	boom := errors.New("boom")

	_ = cb.Execute(ctx, func() error { return boom })
	_ = cb.Execute(ctx, func() error { return boom })
	clock.now = clock.now.Add(2 * time.Minute)

	assert.ErrorIs(t, cb.Execute(ctx, func() error { return boom }), boom)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_IgnoresNonFailures(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	business := errors.New("business rule")
	cb := NewCircuitBreaker(&Config{
		Name:        "test",
		MaxFailures: 1,
		Timeout:     time.Minute,
		IsFailure:   func(err error) bool { return !errors.Is(err, business) },
	})

	for i := 0; i < 5; i++ {
		_ = cb.Execute(ctx, func() error { return business })
	}
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	cb := newTestBreaker(&fakeClock{now: time.Unix(0, 0)})
	_ = cb.Execute(ctx, func() error { return errors.New("a") })
	_ = cb.Execute(ctx, func() error { return errors.New("b") })
	assert.Equal(t, StateOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
}
