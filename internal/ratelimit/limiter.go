// Package ratelimit implements the sliding-window limiter that guards every
// outbound exchange call.
//
// The limiter keeps the issuance time of each admitted call. A call is admitted
// when the number of calls issued in the trailing window, including itself,
// stays at or below capacity. Otherwise the caller waits until the oldest
// timestamp leaves the window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults match the exchange's basic-tier budget with headroom.
const (
	DefaultCapacity = 45
	DefaultWindow   = time.Minute
)

// Limiter is a sliding-window rate limiter safe for concurrent use.
type Limiter struct {
	capacity int
	window   time.Duration

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	onWait func(d time.Duration)

	mu     sync.Mutex
	issued []time.Time // oldest first
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithWindow overrides the 60s window.
func WithWindow(d time.Duration) Option {
	return func(l *Limiter) {
		l.window = d
	}
}

// WithClock replaces the wall clock and sleep function (tests).
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) {
		l.now = now
		l.sleep = sleep
	}
}

// WithWaitHook registers a callback invoked before every wait.
func WithWaitHook(fn func(d time.Duration)) Option {
	return func(l *Limiter) {
		l.onWait = fn
	}
}

// New creates a limiter admitting at most capacity calls per window.
// A non-positive capacity falls back to DefaultCapacity.
func New(capacity int, opts ...Option) *Limiter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Limiter{
		capacity: capacity,
		window:   DefaultWindow,
		now:      time.Now,
		sleep:    sleepContext,
		issued:   make([]time.Time, 0, capacity),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Capacity returns the maximum number of calls per window.
func (l *Limiter) Capacity() int {
	return l.capacity
}

// Wait blocks until one more call can be issued, then records it.
// Returns ctx.Err() if the context ends while waiting; nothing is recorded then.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		wait, admitted := l.tryAdmit()
		if admitted {
			return nil
		}

		if l.onWait != nil {
			l.onWait(wait)
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// tryAdmit prunes expired timestamps and records a call if there is room.
// When full it returns how long until the oldest call leaves the window.
func (l *Limiter) tryAdmit() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)

	if len(l.issued) < l.capacity {
		l.issued = append(l.issued, now)
		return 0, true
	}

	wait := l.window - now.Sub(l.issued[0])
	if wait <= 0 {
		// Unreachable after pruning; admit rather than sleep.
		l.issued = append(l.issued[1:], now)
		return 0, true
	}
	return wait, false
}

// pruneLocked drops timestamps at least one window old. Caller must hold mu.
func (l *Limiter) pruneLocked(now time.Time) {
	keep := 0
	for keep < len(l.issued) && now.Sub(l.issued[keep]) >= l.window {
		keep++
	}
	if keep > 0 {
		l.issued = append(l.issued[:0], l.issued[keep:]...)
	}
}

// InFlight returns the number of calls counted in the current window.
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(l.now())
	return len(l.issued)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
