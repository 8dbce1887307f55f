package health

import (
	"log/slog"
	"time"
)

// LoopMonitor tracks ticks whose work time exceeds the pacing floor.
// It only reports; it never changes how the loop is paced.
type LoopMonitor struct {
	OverrunStart     time.Time
	MinPeriod        time.Duration // ticks slower than this count as overruns
	OverrunSustained time.Duration // how long overruns must persist before warning
	Enabled          bool
	Logger           *slog.Logger
	warned           bool
	worst            time.Duration
}

// NewLoopMonitor returns a disabled monitor when sustained is zero.
func NewLoopMonitor(logger *slog.Logger, minPeriod, sustained time.Duration) *LoopMonitor {
	return &LoopMonitor{
		MinPeriod:        minPeriod,
		OverrunSustained: sustained,
		Enabled:          sustained > 0 && minPeriod > 0,
		Logger:           logger,
	}
}

// Check records the work time of one tick. Returns true on the tick where a
// sustained overrun is first detected.
func (lm *LoopMonitor) Check(now time.Time, elapsed time.Duration) bool {
	if !lm.Enabled {
		return false
	}

	if elapsed <= lm.MinPeriod {
		if !lm.OverrunStart.IsZero() {
			if lm.warned {
				lm.Logger.Info("Loop back within its period",
					slog.Duration("overrunDuration", now.Sub(lm.OverrunStart)),
					slog.Duration("worstTick", lm.worst))
			}
			lm.Reset()
		}
		return false
	}

	if lm.OverrunStart.IsZero() {
		lm.OverrunStart = now
		lm.Logger.Debug("Tick overran the minimum loop period",
			slog.Duration("elapsed", elapsed),
			slog.Duration("minPeriod", lm.MinPeriod))
	}
	if elapsed > lm.worst {
		lm.worst = elapsed
	}

	if lm.warned || now.Sub(lm.OverrunStart) < lm.OverrunSustained {
		return false
	}

	lm.warned = true
	lm.Logger.Warn("Sustained loop overrun, collaborators are slower than the minimum loop period",
		slog.Duration("elapsed", elapsed),
		slog.Duration("worstTick", lm.worst),
		slog.Duration("minPeriod", lm.MinPeriod),
		slog.Duration("sustained", now.Sub(lm.OverrunStart)))

	return true
}

// Reset clears the overrun tracking state
func (lm *LoopMonitor) Reset() {
	lm.OverrunStart = time.Time{}
	lm.warned = false
	lm.worst = 0
}
