package bot

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/alwan/alwan/internal/aim"
	"github.com/alwan/alwan/internal/config"
	"github.com/alwan/alwan/internal/input"
)

// ConfigProvider yields a fresh configuration snapshot on every call.
type ConfigProvider interface {
	Load() (*config.Config, error)
}

// Acquisition is the result of one target search. Target is only meaningful
// when Found is set.
type Acquisition struct {
	Target  aim.Vector
	Found   bool
	Trigger bool
}

// Acquirer searches for a target. recoilBias shifts the reference point the
// search is measured from, compensating vertical climb.
type Acquirer interface {
	Acquire(recoilBias float64) (Acquisition, error)
}

type InputSource interface {
	Poll() input.State
	FireHeld() bool
}

// Injector moves the pointer relatively and clicks the primary button.
// Click blocks for delay before pressing.
type Injector interface {
	Move(dx, dy float64) error
	Click(delay time.Duration) error
}

// Collaborators are built per session and closed when the session ends.
type Collaborators struct {
	Input    InputSource
	Acquirer Acquirer
	Mouse    Injector
}

// Close releases collaborators in reverse construction order: acquisition
// first, then the injector, then the input source.
func (c *Collaborators) Close() error {
	var errs []error
	for _, v := range []any{c.Acquirer, c.Mouse, c.Input} {
		if closer, ok := v.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}

// Backend builds the collaborators of one session from its configuration.
type Backend func(cfg *config.Config, logger *slog.Logger) (*Collaborators, error)
