package utils

import "time"

// Pacer enforces a minimum wall-clock period per loop iteration. It is a
// floor, not a target: iterations that overrun are never shortened or
// compensated.
type Pacer struct {
	min   time.Duration
	now   func() time.Time
	sleep func(time.Duration)
}

func NewPacer(min time.Duration) *Pacer {
	return NewPacerWithClock(min, time.Now, time.Sleep)
}

// NewPacerWithClock allows replacing the wall clock and the blocking sleep,
// mostly for tests.
func NewPacerWithClock(min time.Duration, now func() time.Time, sleep func(time.Duration)) *Pacer {
	return &Pacer{min: min, now: now, sleep: sleep}
}

func (p *Pacer) Now() time.Time {
	return p.now()
}

func (p *Pacer) MinPeriod() time.Duration {
	return p.min
}

// Pace blocks until at least MinPeriod has passed since start and returns the
// time spent working before the wait. The wait itself is not part of the
// returned value, so callers get the same work-time signal regardless of the
// configured floor.
func (p *Pacer) Pace(start time.Time) time.Duration {
	spent := p.now().Sub(start)
	if spent < 0 {
		spent = 0
	}

	if spent < p.min {
		p.sleep(p.min - spent)
	}

	return spent
}
