// Package pace enforces a minimum spacing between outbound vendor calls so a
// crawl stays inside the vendor's request quota.
package pace

import (
	"errors"
	"time"
)

// ErrInvalidRate is returned when a Pacer is constructed with a non-positive
// calls-per-second budget.
var ErrInvalidRate = errors.New("pace: calls per second must be positive")

// Clock abstracts wall-clock time so tests can simulate pacing delays
// without sleeping for real.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// Pacer spaces successive calls at least 1/rate apart. One goroutine owns a
// Pacer; sharing one across goroutines requires external mutual exclusion.
// Workers that crawl in parallel each get their own Pacer instead.
type Pacer struct {
	interval time.Duration
	clock    Clock
	next     time.Time
}

// New creates a Pacer for the given calls-per-second budget using the system
// clock.
func New(callsPerSec float64) (*Pacer, error) {
	return NewWithClock(callsPerSec, SystemClock())
}

// NewWithClock is New with an injectable clock.
func NewWithClock(callsPerSec float64, clock Clock) (*Pacer, error) {
	if callsPerSec <= 0 {
		return nil, ErrInvalidRate
	}
	return &Pacer{
		interval: time.Duration(float64(time.Second) / callsPerSec),
		clock:    clock,
	}, nil
}

// Interval returns the minimum spacing between calls.
func (p *Pacer) Interval() time.Duration { return p.interval }

// Acquire blocks until the budget permits the next call, then arms the next
// earliest-allowed time at now + 1/rate. The first call never waits.
func (p *Pacer) Acquire() {
	if wait := p.next.Sub(p.clock.Now()); wait > 0 {
		p.clock.Sleep(wait)
	}
	p.next = p.clock.Now().Add(p.interval)
}
