package recoil

import (
	"fmt"
	"time"

	"github.com/alwan/alwan/internal/aim"
)

type Mode string

const (
	// ModeMove pushes the pointer directly while fire is held.
	ModeMove Mode = "move"
	// ModeOffset accumulates a vertical bias that is handed to target
	// acquisition on the next frame.
	ModeOffset Mode = "offset"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMove, ModeOffset:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown recoil mode %q, expected %q or %q", s, ModeMove, ModeOffset)
}

// Config rates are expressed per second.
type Config struct {
	Mode        Mode
	RateX       float64
	RateY       float64
	RecoverRate float64
	MaxOffset   float64
}

// Accumulator owns the recoil offset of a single session. Not safe for
// concurrent use.
type Accumulator struct {
	cfg    Config
	offset float64
}

func New(cfg Config) *Accumulator {
	return &Accumulator{cfg: cfg}
}

// Offset is the current vertical bias, always within [0, MaxOffset].
func (a *Accumulator) Offset() float64 {
	return a.offset
}

func (a *Accumulator) Reset() {
	a.offset = 0
}

// Update advances the accumulator by one frame. In move mode it returns the
// displacement to add on top of the aim output; in offset mode the returned
// vector is always zero and the effect is visible through Offset.
func (a *Accumulator) Update(enabled bool, elapsed time.Duration, fireHeld bool) aim.Vector {
	if !enabled {
		a.offset = 0
		return aim.Vector{}
	}
	if elapsed <= 0 {
		return aim.Vector{}
	}

	dt := elapsed.Seconds()

	switch a.cfg.Mode {
	case ModeMove:
		if fireHeld {
			return aim.Vector{X: a.cfg.RateX * dt, Y: a.cfg.RateY * dt}
		}
	case ModeOffset:
		if fireHeld {
			a.offset += a.cfg.RateY * dt
		} else {
			a.offset -= a.cfg.RecoverRate * dt
		}
		a.offset = a.clamp(a.offset)
	}

	return aim.Vector{}
}

func (a *Accumulator) clamp(v float64) float64 {
	upper := a.cfg.MaxOffset
	if upper < 0 {
		upper = 0
	}
	if v > upper {
		return upper
	}
	if v < 0 {
		return 0
	}
	return v
}
