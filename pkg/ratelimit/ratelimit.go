// Package ratelimit implements fixed window request counters keyed by a client identifier.
//
// A fixed window resets its count entirely when the window elapses, so a burst that straddles a
// window boundary can be admitted up to twice the nominal maximum. Callers that need a stricter
// bound should not use this package.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidLimit = errors.New("ratelimit: window and max must be positive")

// Decision is the outcome of a single Check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetTime time.Time
}

// RetryAfter returns how long a denied caller should wait before the window resets.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.Allowed || !d.ResetTime.After(now) {
		return 0
	}
	return d.ResetTime.Sub(now)
}

// Limiter counts requests per identifier within a fixed window.
type Limiter interface {
	Check(ctx context.Context, identifier string, window time.Duration, max int) (Decision, error)
}

func validate(window time.Duration, max int) error {
	if window <= 0 || max <= 0 {
		return ErrInvalidLimit
	}
	return nil
}
