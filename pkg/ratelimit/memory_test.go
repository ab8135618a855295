package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Check(t *testing.T) {
	now := time.Date(2024, time.June, 23, 10, 15, 30, 0, time.UTC)
	window := 15 * time.Minute
	max := 5

	m := NewMemory(WithClock(func() time.Time { return now }), WithSweepProbability(0))
	ctx := context.Background()

	var first Decision
	for i := 1; i <= max; i++ {
		d, err := m.Check(ctx, "203.0.113.7", window, max)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "call %d should be allowed", i)
		assert.Equal(t, max-i, d.Remaining)
		if i == 1 {
			first = d
		}
		assert.Equal(t, first.ResetTime, d.ResetTime)
		now = now.Add(time.Second)
	}

	d, err := m.Check(ctx, "203.0.113.7", window, max)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, first.ResetTime, d.ResetTime)
	assert.Equal(t, time.Date(2024, time.June, 23, 10, 30, 30, 0, time.UTC), d.ResetTime)

	// other identifiers are unaffected
	d, err = m.Check(ctx, "198.51.100.1", window, max)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemory_WindowReset(t *testing.T) {
	now := time.Date(2024, time.June, 23, 10, 0, 0, 0, time.UTC)
	m := NewMemory(WithClock(func() time.Time { return now }), WithSweepProbability(0))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := m.Check(ctx, "ip", time.Minute, 2)
		require.NoError(t, err)
	}

	now = now.Add(time.Minute)

	d, err := m.Check(ctx, "ip", time.Minute, 2)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, now.Add(time.Minute), d.ResetTime)
}

func TestMemory_BoundaryBurst(t *testing.T) {
	now := time.Date(2024, time.June, 23, 10, 0, 0, 0, time.UTC)
	m := NewMemory(WithClock(func() time.Time { return now }), WithSweepProbability(0))
	ctx := context.Background()

	allowed := 0
	check := func() {
		d, err := m.Check(ctx, "ip", time.Minute, 5)
		require.NoError(t, err)
		if d.Allowed {
			allowed++
		}
	}

	// one early request opens the window, the burst lands right before and right after its edge
	check()
	now = now.Add(59 * time.Second)
	for i := 0; i < 5; i++ {
		check()
	}
	now = now.Add(time.Second)
	for i := 0; i < 5; i++ {
		check()
	}

	assert.Equal(t, 10, allowed)
}

func TestMemory_Sweep(t *testing.T) {
	now := time.Date(2024, time.June, 23, 10, 0, 0, 0, time.UTC)
	m := NewMemory(WithClock(func() time.Time { return now }), WithSweepProbability(0))
	ctx := context.Background()

	_, _ = m.Check(ctx, "old", time.Minute, 5)
	now = now.Add(30 * time.Second)
	_, _ = m.Check(ctx, "fresh", time.Minute, 5)
	require.Equal(t, 2, m.Len())

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestMemory_OpportunisticSweep(t *testing.T) {
	now := time.Date(2024, time.June, 23, 10, 0, 0, 0, time.UTC)
	roll := 0.5
	m := NewMemory(
		WithClock(func() time.Time { return now }),
		WithSweepProbability(0.01),
		WithRand(func() float64 { return roll }),
	)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, _ = m.Check(ctx, id, time.Minute, 5)
	}
	now = now.Add(2 * time.Minute)

	_, _ = m.Check(ctx, "d", time.Minute, 5)
	assert.Equal(t, 4, m.Len(), "no sweep when the roll misses")

	roll = 0.001
	_, _ = m.Check(ctx, "e", time.Minute, 5)
	assert.Equal(t, 2, m.Len(), "expired a, b and c are swept")
}

func TestMemory_InvalidLimit(t *testing.T) {
	m := NewMemory()
	_, err := m.Check(context.Background(), "ip", 0, 5)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = m.Check(context.Background(), "ip", time.Minute, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestDecision_RetryAfter(t *testing.T) {
	now := time.Date(2024, time.June, 23, 10, 0, 0, 0, time.UTC)

	d := Decision{Allowed: false, ResetTime: now.Add(90 * time.Second)}
	assert.Equal(t, 90*time.Second, d.RetryAfter(now))

	d.Allowed = true
	assert.Zero(t, d.RetryAfter(now))
}
