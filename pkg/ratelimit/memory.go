package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const DefaultSweepProbability = 0.01

type entry struct {
	count     int
	resetTime time.Time
}

// Memory is a process-local Limiter. State is lost on restart and is not shared between instances.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry

	sweepProbability float64
	now              func() time.Time
	rand             func() float64
}

type MemoryOption func(*Memory)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithSweepProbability sets the fraction of calls that also discard expired entries.
func WithSweepProbability(p float64) MemoryOption {
	return func(m *Memory) { m.sweepProbability = p }
}

// WithRand overrides the random source used to decide when to sweep.
func WithRand(r func() float64) MemoryOption {
	return func(m *Memory) { m.rand = r }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:          make(map[string]*entry),
		sweepProbability: DefaultSweepProbability,
		now:              time.Now,
		rand:             rand.Float64,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Check(_ context.Context, identifier string, window time.Duration, max int) (Decision, error) {
	if err := validate(window, max); err != nil {
		return Decision{}, err
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sweepProbability > 0 && m.rand() < m.sweepProbability {
		m.sweepLocked(now)
	}

	e, ok := m.entries[identifier]
	if !ok || !now.Before(e.resetTime) {
		e = &entry{count: 1, resetTime: now.Add(window)}
		m.entries[identifier] = e
		return Decision{Allowed: true, Limit: max, Remaining: max - 1, ResetTime: e.resetTime}, nil
	}

	if e.count < max {
		e.count++
		return Decision{Allowed: true, Limit: max, Remaining: max - e.count, ResetTime: e.resetTime}, nil
	}

	return Decision{Allowed: false, Limit: max, Remaining: 0, ResetTime: e.resetTime}, nil
}

// Sweep discards every entry whose window has elapsed and reports how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(now)
}

// Len reports the number of tracked identifiers.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.resetTime) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}
