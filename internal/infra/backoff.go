package infra

import (
	"time"
)

const (
	// Standard backoff constants
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// Backoff computes capped exponential delays: Base * 2^n, at most Max.
// The zero value behaves like CalculateBackoff.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the wait before retry number n (0-based).
// A negative n returns Base.
func (b Backoff) Delay(n int) time.Duration {
	base, limit := b.Base, b.Max
	if base <= 0 {
		base = baseDelay
	}
	if limit <= 0 {
		limit = maxDelay
	}
	if limit < base {
		limit = base
	}

	if n < 0 {
		return base
	}

	d := base
	for i := 0; i < n; i++ {
		if d >= limit/2 {
			return limit
		}
		d *= 2
	}
	if d > limit {
		return limit
	}
	return d
}

// CalculateBackoff returns the exponential backoff duration for a given retry count
// with the default 1s base and 60s cap.
func CalculateBackoff(retryCount int) time.Duration {
	return Backoff{}.Delay(retryCount)
}
