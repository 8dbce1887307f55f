package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alwan/alwan/internal/utils"
)

type LoopState int

const (
	StateActive LoopState = iota
	StateReloading
)

func (s LoopState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateReloading:
		return "reloading"
	}
	return "unknown"
}

// Loop is the outer reload loop. Every pass loads the configuration, builds
// a Session around fresh collaborators and runs it until a reload request.
type Loop struct {
	provider ConfigProvider
	backend  Backend
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(time.Duration)
	state    LoopState
	sessions int
	onStart  func(*Session)
}

type Option func(*Loop)

// WithClock replaces the wall clock and the pacing sleep.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(l *Loop) {
		l.now = now
		l.sleep = sleep
	}
}

// WithSessionHook is called with every new session before its first tick.
func WithSessionHook(fn func(*Session)) Option {
	return func(l *Loop) {
		l.onStart = fn
	}
}

func NewLoop(provider ConfigProvider, backend Backend, logger *slog.Logger, opts ...Option) *Loop {
	l := &Loop{
		provider: provider,
		backend:  backend,
		logger:   logger,
		now:      time.Now,
		sleep:    time.Sleep,
		state:    StateReloading,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) State() LoopState {
	return l.state
}

// Sessions is the number of sessions started so far.
func (l *Loop) Sessions() int {
	return l.sessions
}

// Run never returns on its own: only context cancellation or a failing
// collaborator ends it.
func (l *Loop) Run(ctx context.Context) error {
	for {
		s, err := l.startSession()
		if err != nil {
			return err
		}

		err = s.run(ctx)
		l.transition(StateReloading)
		s.recoil.Reset()
		if closeErr := s.collab.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("error closing session collaborators: %w", closeErr))
		}
		if err != nil {
			return err
		}

		l.logger.Info("Reloading", slog.String("session", s.ID))
	}
}

func (l *Loop) startSession() (*Session, error) {
	cfg, err := l.provider.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	collab, err := l.backend(cfg, l.logger)
	if err != nil {
		return nil, fmt.Errorf("error building session collaborators: %w", err)
	}

	pacer := utils.NewPacerWithClock(cfg.MinLoopTime(), l.now, l.sleep)
	s := newSession(cfg, collab, pacer, l.logger)
	l.sessions++
	if l.onStart != nil {
		l.onStart(s)
	}

	l.transition(StateActive)
	s.logger.Info("Alwan ON",
		slog.Duration("minLoopTime", cfg.MinLoopTime()),
		slog.String("recoilMode", cfg.Recoil.Mode),
		slog.String("mouse", cfg.Mouse.Type))

	return s, nil
}

func (l *Loop) transition(to LoopState) {
	if l.state == to {
		return
	}
	l.logger.Debug("Loop state changed", slog.String("from", l.state.String()), slog.String("to", to.String()))
	l.state = to
}
