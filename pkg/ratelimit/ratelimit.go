// Package ratelimit provides the politeness throttles used between search
// queries and site fetches. Both pipelines are sequential, so the throttles
// exist to pace outbound traffic, not to guard shared state.
package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Throttle inserts a uniformly random pause between successive units of
// work. A zero Max disables the throttle entirely.
type Throttle struct {
	Min time.Duration
	Max time.Duration

	rng *rand.Rand
}

// NewThrottle creates a throttle sleeping between min and max per call. If
// max < min, max is raised to min. rng may be nil, in which case a
// time-seeded source is used; tests inject a fixed seed for determinism.
func NewThrottle(min, max time.Duration, rng *rand.Rand) *Throttle {
	if max < min {
		max = min
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Throttle{Min: min, Max: max, rng: rng}
}

// Wait sleeps for a random duration in [Min, Max], or returns early with the
// context's error if it is cancelled first.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.Max <= 0 {
		return nil
	}
	d := t.Min
	if span := t.Max - t.Min; span > 0 {
		d += time.Duration(t.rng.Int63n(int64(span) + 1))
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Limiter enforces a steady request rate with optional jitter. It is used
// for subpage fetches, where a fixed cadence is preferable to a random pause.
type Limiter struct {
	ticker   *time.Ticker
	jitter   float64 // 0.0 to 1.0
	interval time.Duration
	ch       <-chan time.Time
}

// NewLimiter creates a limiter allowing rps requests per second. If rps <= 0
// the limiter never blocks. Jitter is clamped to [0, 1].
func NewLimiter(rps float64, jitter float64) *Limiter {
	if rps <= 0 {
		return &Limiter{jitter: jitter}
	}
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}
	interval := time.Duration(float64(time.Second) / rps)
	ticker := time.NewTicker(interval)
	return &Limiter{
		ticker:   ticker,
		jitter:   jitter,
		interval: interval,
		ch:       ticker.C,
	}
}

// Wait blocks until the next tick, plus a random jitter fraction of the
// interval, or until the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.ch == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ch:
		if l.jitter > 0 {
			extra := time.Duration(float64(l.interval) * l.jitter * rand.Float64())
			if extra > 0 {
				select {
				case <-time.After(extra):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return nil
}

// Stop releases the limiter's ticker.
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
}
