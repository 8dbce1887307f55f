package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/alwan/alwan/internal/aim"
	"github.com/alwan/alwan/internal/config"
	"github.com/alwan/alwan/internal/input"
	"github.com/alwan/alwan/internal/utils"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type scriptedInput struct {
	polls    []input.State
	fireHeld bool
	polled   int
	// exhausted runs once the script has no more states left
	exhausted func()
	closed    bool
}

func (in *scriptedInput) Poll() input.State {
	if in.polled >= len(in.polls) {
		if in.exhausted != nil {
			in.exhausted()
		}
		return input.State{}
	}
	st := in.polls[in.polled]
	in.polled++
	return st
}

func (in *scriptedInput) FireHeld() bool {
	return in.fireHeld
}

func (in *scriptedInput) Close() error {
	in.closed = true
	return nil
}

type fakeAcquirer struct {
	result Acquisition
	err    error
	biases []float64
}

func (a *fakeAcquirer) Acquire(bias float64) (Acquisition, error) {
	a.biases = append(a.biases, bias)
	return a.result, a.err
}

type fakeMouse struct {
	moves  []aim.Vector
	clicks []time.Duration
	closed bool
}

func (m *fakeMouse) Move(dx, dy float64) error {
	m.moves = append(m.moves, aim.Vector{X: dx, Y: dy})
	return nil
}

func (m *fakeMouse) Click(delay time.Duration) error {
	m.clicks = append(m.clicks, delay)
	return nil
}

func (m *fakeMouse) Close() error {
	m.closed = true
	return nil
}

// stepClock advances by step on every reading.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func (c *stepClock) Sleep(d time.Duration) {
	c.t = c.t.Add(d)
}

func testConfig(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("config.Parse() error: %v", err)
	}
	return cfg
}

func testSession(cfg *config.Config, collab *Collaborators) *Session {
	clock := &stepClock{t: time.Unix(0, 0), step: 5 * time.Millisecond}
	return newSession(cfg, collab, utils.NewPacerWithClock(cfg.MinLoopTime(), clock.Now, clock.Sleep), discardLogger)
}

func TestTickAppliesSmoothedDisplacement(t *testing.T) {
	cfg := testConfig(t, "aim:\n  smoothingFactor: 2\n  speed: 1.5\n  ySpeedMultiplier: 1\n")
	acq := &fakeAcquirer{result: Acquisition{Target: aim.Vector{X: 10, Y: 20}, Found: true}}
	mouse := &fakeMouse{}
	s := testSession(cfg, &Collaborators{
		Input:    &scriptedInput{polls: []input.State{{Aim: true}}},
		Acquirer: acq,
		Mouse:    mouse,
	})

	reload, err := s.tick(0)
	if err != nil || reload {
		t.Fatalf("tick() = %v, %v", reload, err)
	}
	if len(mouse.moves) != 1 || mouse.moves[0] != (aim.Vector{X: 7.5, Y: 15}) {
		t.Fatalf("moves = %+v, want [{7.5 15}]", mouse.moves)
	}
	if s.Displacement() != (aim.Vector{X: 7.5, Y: 15}) {
		t.Fatalf("Displacement() = %+v", s.Displacement())
	}
	if len(mouse.clicks) != 0 {
		t.Fatalf("unexpected clicks %v", mouse.clicks)
	}
}

func TestTickTriggerClickWithoutDelay(t *testing.T) {
	cfg := testConfig(t, "trigger:\n  delay: 0\n  randomization: 50\n")
	mouse := &fakeMouse{}
	s := testSession(cfg, &Collaborators{
		Input:    &scriptedInput{polls: []input.State{{Trigger: true}}},
		Acquirer: &fakeAcquirer{result: Acquisition{Trigger: true}},
		Mouse:    mouse,
	})

	if _, err := s.tick(0); err != nil {
		t.Fatal(err)
	}
	if len(mouse.clicks) != 1 || mouse.clicks[0] != 0 {
		t.Fatalf("clicks = %v, want [0s]", mouse.clicks)
	}
	if len(mouse.moves) != 0 {
		t.Fatalf("trigger alone must not move the pointer: %+v", mouse.moves)
	}
}

func TestTickTriggerDelayWithinWindow(t *testing.T) {
	cfg := testConfig(t, "trigger:\n  delay: 20\n  randomization: 15\n")
	polls := make([]input.State, 200)
	for i := range polls {
		polls[i] = input.State{Trigger: true}
	}
	mouse := &fakeMouse{}
	s := testSession(cfg, &Collaborators{
		Input:    &scriptedInput{polls: polls},
		Acquirer: &fakeAcquirer{result: Acquisition{Trigger: true}},
		Mouse:    mouse,
	})

	for range polls {
		if _, err := s.tick(time.Millisecond); err != nil {
			t.Fatal(err)
		}
	}
	for _, d := range mouse.clicks {
		if d < 20*time.Millisecond || d >= 35*time.Millisecond {
			t.Fatalf("click delay %s outside [20ms, 35ms)", d)
		}
	}
	if len(mouse.clicks) != len(polls) {
		t.Fatalf("clicks = %d, want %d", len(mouse.clicks), len(polls))
	}
}

func TestTickTriggerNeedsAcquisitionFlag(t *testing.T) {
	cfg := testConfig(t, "")
	mouse := &fakeMouse{}
	s := testSession(cfg, &Collaborators{
		Input:    &scriptedInput{polls: []input.State{{Trigger: true}, {Aim: true}}},
		Acquirer: &fakeAcquirer{result: Acquisition{Trigger: false}},
		Mouse:    mouse,
	})
	s.tick(0)

	s.collab.Acquirer = &fakeAcquirer{result: Acquisition{Trigger: true}}
	s.tick(0)

	if len(mouse.clicks) != 0 {
		t.Fatalf("clicks = %v, want none", mouse.clicks)
	}
}

func TestTickRapidFireIsIndependent(t *testing.T) {
	cfg := testConfig(t, "")
	acq := &fakeAcquirer{}
	mouse := &fakeMouse{}
	s := testSession(cfg, &Collaborators{
		Input:    &scriptedInput{polls: []input.State{{RapidFire: true}}},
		Acquirer: acq,
		Mouse:    mouse,
	})

	if _, err := s.tick(0); err != nil {
		t.Fatal(err)
	}
	if len(acq.biases) != 0 {
		t.Fatal("rapid fire alone must not acquire")
	}
	if len(mouse.clicks) != 1 || mouse.clicks[0] != 0 {
		t.Fatalf("clicks = %v, want one immediate click", mouse.clicks)
	}
}

func TestTickReloadShortCircuits(t *testing.T) {
	cfg := testConfig(t, "debug:\n  enabled: true\n  alwaysOn: true\n")
	acq := &fakeAcquirer{result: Acquisition{Target: aim.Vector{X: 50}, Found: true, Trigger: true}}
	mouse := &fakeMouse{}
	s := testSession(cfg, &Collaborators{
		Input:    &scriptedInput{polls: []input.State{{Reload: true, Aim: true, Trigger: true, RapidFire: true, Recoil: true}}, fireHeld: true},
		Acquirer: acq,
		Mouse:    mouse,
	})

	reload, err := s.tick(10 * time.Millisecond)
	if err != nil || !reload {
		t.Fatalf("tick() = %v, %v; want reload", reload, err)
	}
	if len(acq.biases) != 0 || len(mouse.moves) != 0 || len(mouse.clicks) != 0 {
		t.Fatalf("work done on a reload tick: acquires=%d moves=%d clicks=%d", len(acq.biases), len(mouse.moves), len(mouse.clicks))
	}
}

func TestTickDebugAlwaysOnAcquiresWithoutMoving(t *testing.T) {
	cfg := testConfig(t, "debug:\n  enabled: true\n  alwaysOn: true\n")
	acq := &fakeAcquirer{result: Acquisition{Target: aim.Vector{X: 50, Y: 50}, Found: true, Trigger: true}}
	mouse := &fakeMouse{}
	s := testSession(cfg, &Collaborators{
		Input:    &scriptedInput{polls: []input.State{{}}},
		Acquirer: acq,
		Mouse:    mouse,
	})

	if _, err := s.tick(0); err != nil {
		t.Fatal(err)
	}
	if len(acq.biases) != 1 {
		t.Fatalf("acquisitions = %d, want 1", len(acq.biases))
	}
	if len(mouse.moves) != 0 || len(mouse.clicks) != 0 {
		t.Fatalf("nothing engaged but moves=%v clicks=%v", mouse.moves, mouse.clicks)
	}
}

func TestTickMoveModeRecoilAddsDisplacement(t *testing.T) {
	cfg := testConfig(t, "recoil:\n  mode: move\n  recoilX: 10\n  recoilY: 40\n")
	mouse := &fakeMouse{}
	s := testSession(cfg, &Collaborators{
		Input:    &scriptedInput{polls: []input.State{{Aim: true, Recoil: true}}, fireHeld: true},
		Acquirer: &fakeAcquirer{result: Acquisition{Target: aim.Vector{X: 2, Y: 2}, Found: true}},
		Mouse:    mouse,
	})

	if _, err := s.tick(500 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	// aim: 2 per axis with the default smoothing, recoil: 5 and 20
	want := aim.Vector{X: 2 + 5, Y: 2 + 20}
	if len(mouse.moves) != 1 || math.Abs(mouse.moves[0].X-want.X) > 1e-9 || math.Abs(mouse.moves[0].Y-want.Y) > 1e-9 {
		t.Fatalf("moves = %+v, want [%+v]", mouse.moves, want)
	}
	if s.RecoilOffset() != 0 {
		t.Fatalf("move mode changed the offset: %v", s.RecoilOffset())
	}
}

func TestTickOffsetModeFeedsNextAcquisition(t *testing.T) {
	cfg := testConfig(t, "recoil:\n  mode: offset\n  recoilY: 100\n  maxOffset: 50\n")
	acq := &fakeAcquirer{}
	mouse := &fakeMouse{}
	s := testSession(cfg, &Collaborators{
		Input:    &scriptedInput{polls: []input.State{{Aim: true, Recoil: true}, {Aim: true, Recoil: true}}, fireHeld: true},
		Acquirer: acq,
		Mouse:    mouse,
	})

	s.tick(time.Second)
	s.tick(time.Second)

	if len(acq.biases) != 2 || acq.biases[0] != 0 || acq.biases[1] != 50 {
		t.Fatalf("biases = %v, want [0 50]", acq.biases)
	}
	if len(mouse.moves) != 0 {
		t.Fatalf("offset mode must not move the pointer by itself: %+v", mouse.moves)
	}
}

func TestTickCollaboratorErrorsPropagate(t *testing.T) {
	boom := errors.New("capture lost")
	cfg := testConfig(t, "")
	s := testSession(cfg, &Collaborators{
		Input:    &scriptedInput{polls: []input.State{{Aim: true}}},
		Acquirer: &fakeAcquirer{err: boom},
		Mouse:    &fakeMouse{},
	})

	if _, err := s.tick(0); !errors.Is(err, boom) {
		t.Fatalf("tick() error = %v, want %v", err, boom)
	}
}

type sequenceProvider struct {
	docs  []string
	loads int
	t     *testing.T
}

func (p *sequenceProvider) Load() (*config.Config, error) {
	doc := p.docs[len(p.docs)-1]
	if p.loads < len(p.docs) {
		doc = p.docs[p.loads]
	}
	p.loads++
	return testConfig(p.t, doc), nil
}

func TestRunReloadStartsFreshSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aimRecoil := input.State{Aim: true, Recoil: true}
	inputs := []*scriptedInput{
		{polls: []input.State{aimRecoil, aimRecoil, aimRecoil, {Reload: true}}, fireHeld: true},
		{polls: []input.State{aimRecoil}, fireHeld: true, exhausted: cancel},
	}
	acquirers := []*fakeAcquirer{{}, {}}
	mice := []*fakeMouse{{}, {}}

	built := 0
	backend := func(cfg *config.Config, _ *slog.Logger) (*Collaborators, error) {
		i := built
		built++
		return &Collaborators{Input: inputs[i], Acquirer: acquirers[i], Mouse: mice[i]}, nil
	}

	provider := &sequenceProvider{t: t, docs: []string{
		"recoil:\n  mode: offset\n  recoilY: 1000\n  maxOffset: 50\n",
	}}
	clock := &stepClock{t: time.Unix(0, 0), step: 5 * time.Millisecond}

	var sessions []*Session
	loop := NewLoop(provider, backend, discardLogger,
		WithClock(clock.Now, clock.Sleep),
		WithSessionHook(func(s *Session) { sessions = append(sessions, s) }))

	err := loop.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	if provider.loads != 2 || built != 2 || loop.Sessions() != 2 {
		t.Fatalf("loads=%d built=%d sessions=%d, want 2 each", provider.loads, built, loop.Sessions())
	}
	if sessions[0].ID == sessions[1].ID {
		t.Fatal("sessions share an ID")
	}

	first := acquirers[0].biases
	if len(first) != 3 || first[2] <= 0 {
		t.Fatalf("first session biases = %v, want the third one positive", first)
	}
	if sessions[0].RecoilOffset() != 0 {
		t.Fatalf("first session kept recoil offset %v after teardown", sessions[0].RecoilOffset())
	}

	second := acquirers[1].biases
	if len(second) != 1 || second[0] != 0 {
		t.Fatalf("second session biases = %v, want [0]", second)
	}

	for i := range inputs {
		if !inputs[i].closed || !mice[i].closed {
			t.Fatalf("session %d collaborators not closed", i)
		}
	}
	if len(mice[0].moves) != 0 || len(mice[0].clicks) != 0 {
		t.Fatalf("no target found, but first session injected moves=%v clicks=%v", mice[0].moves, mice[0].clicks)
	}
	if loop.State() != StateReloading {
		t.Fatalf("State() = %s after Run returned", loop.State())
	}
}

func TestRunStopsOnCollaboratorFailure(t *testing.T) {
	boom := errors.New("injector gone")
	in := &scriptedInput{polls: []input.State{{RapidFire: true}}}
	backend := func(*config.Config, *slog.Logger) (*Collaborators, error) {
		return &Collaborators{Input: in, Acquirer: &fakeAcquirer{}, Mouse: failingMouse{err: boom}}, nil
	}

	loop := NewLoop(&sequenceProvider{t: t, docs: []string{""}}, backend, discardLogger)
	err := loop.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if !in.closed {
		t.Fatal("collaborators not closed after failure")
	}
}

func TestRunBackendFailure(t *testing.T) {
	boom := errors.New("no screen")
	backend := func(*config.Config, *slog.Logger) (*Collaborators, error) {
		return nil, boom
	}

	err := NewLoop(&sequenceProvider{t: t, docs: []string{""}}, backend, discardLogger).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
}

type failingMouse struct {
	err error
}

func (m failingMouse) Move(float64, float64) error { return m.err }
func (m failingMouse) Click(time.Duration) error   { return m.err }
