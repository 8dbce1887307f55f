package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/alwan/alwan/internal/aim"
	"github.com/alwan/alwan/internal/config"
	"github.com/alwan/alwan/internal/health"
	"github.com/alwan/alwan/internal/recoil"
	"github.com/alwan/alwan/internal/utils"
	"github.com/google/uuid"
)

// Session is everything that lives between two reloads. It is owned by the
// loop goroutine and discarded as a whole on reload.
type Session struct {
	ID      string
	cfg     *config.Config
	collab  *Collaborators
	recoil  *recoil.Accumulator
	params  aim.Params
	move    aim.Vector
	pacer   *utils.Pacer
	monitor *health.LoopMonitor
	rnd     *rand.Rand
	logger  *slog.Logger
	ticks   uint64
}

func newSession(cfg *config.Config, collab *Collaborators, pacer *utils.Pacer, logger *slog.Logger) *Session {
	id := uuid.NewString()
	logger = logger.With(slog.String("session", id))

	return &Session{
		ID:     id,
		cfg:    cfg,
		collab: collab,
		recoil: recoil.New(cfg.RecoilConfig()),
		params: aim.Params{
			SmoothingFactor:  cfg.Aim.SmoothingFactor,
			Speed:            cfg.Aim.Speed,
			YSpeedMultiplier: cfg.Aim.YSpeedMultiplier,
		},
		pacer:   pacer,
		monitor: health.NewLoopMonitor(logger, pacer.MinPeriod(), time.Duration(cfg.Loop.OverrunSustained)*time.Second),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
	}
}

// RecoilOffset is the bias handed to the next acquisition.
func (s *Session) RecoilOffset() float64 {
	return s.recoil.Offset()
}

// Displacement is the movement computed on the last tick.
func (s *Session) Displacement() aim.Vector {
	return s.move
}

// run ticks until a reload is requested (nil), the context is cancelled, or
// a collaborator fails.
func (s *Session) run(ctx context.Context) error {
	var elapsed time.Duration

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := s.pacer.Now()
		reload, err := s.tick(elapsed)
		if err != nil {
			return err
		}
		if reload {
			return nil
		}

		elapsed = s.pacer.Pace(start)
		s.monitor.Check(start.Add(elapsed), elapsed)
	}
}

// tick runs one iteration. The reload check comes first; when it fires
// nothing else happens this tick.
func (s *Session) tick(elapsed time.Duration) (bool, error) {
	s.ticks++
	st := s.collab.Input.Poll()
	if st.Reload {
		return true, nil
	}

	var (
		acq  Acquisition
		move aim.Vector
	)

	if st.Aim || st.Trigger || s.cfg.AcquireEveryTick() {
		var err error
		acq, err = s.collab.Acquirer.Acquire(s.recoil.Offset())
		if err != nil {
			return false, fmt.Errorf("target acquisition failed: %w", err)
		}

		if st.Trigger && acq.Trigger {
			delay := utils.RandomDelay(s.rnd, s.cfg.Trigger.Delay, s.cfg.Trigger.Randomization)
			if err := s.collab.Mouse.Click(delay); err != nil {
				return false, fmt.Errorf("trigger click failed: %w", err)
			}
		}

		move = aim.Compute(st.Aim, acq.Target, acq.Found, s.params)
	}

	if st.RapidFire {
		if err := s.collab.Mouse.Click(0); err != nil {
			return false, fmt.Errorf("rapid fire click failed: %w", err)
		}
	}

	move = move.Add(s.recoil.Update(st.Recoil, elapsed, s.collab.Input.FireHeld()))
	s.move = move

	if s.cfg.Debug.LogTicks {
		s.logger.Debug("Tick",
			slog.Uint64("tick", s.ticks),
			slog.Duration("elapsed", elapsed),
			slog.Bool("aim", st.Aim),
			slog.Bool("trigger", st.Trigger),
			slog.Bool("found", acq.Found),
			slog.Float64("recoilOffset", s.recoil.Offset()),
			slog.Float64("moveX", move.X),
			slog.Float64("moveY", move.Y))
	}

	if !move.IsZero() {
		if err := s.collab.Mouse.Move(move.X, move.Y); err != nil {
			return false, fmt.Errorf("pointer move failed: %w", err)
		}
	}

	return false, nil
}
