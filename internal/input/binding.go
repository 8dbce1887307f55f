package input

import "fmt"

type Mode string

const (
	// ModeHold is engaged while the key is down.
	ModeHold Mode = "hold"
	// ModeToggle flips on every press.
	ModeToggle Mode = "toggle"
	// ModePress is engaged only on the poll where the key goes down.
	ModePress Mode = "press"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHold, ModeToggle, ModePress:
		return Mode(s), nil
	case "":
		return ModeHold, nil
	}
	return "", fmt.Errorf("unknown binding mode %q", s)
}

// Binding tracks a single key. A zero VK means unbound and never engages.
type Binding struct {
	VK      int
	Mode    Mode
	engaged bool
	pressed bool
}

func NewBinding(vk int, mode Mode) *Binding {
	return &Binding{VK: vk, Mode: mode}
}

func (b *Binding) Bound() bool {
	return b != nil && b.VK != 0
}

// Update feeds the current raw key state and returns whether the binding is
// engaged for this poll.
func (b *Binding) Update(down bool) bool {
	if !b.Bound() {
		return false
	}

	// rising edge only, holding the key must not retrigger
	rising := down && !b.pressed
	b.pressed = down

	switch b.Mode {
	case ModeToggle:
		if rising {
			b.engaged = !b.engaged
		}
	case ModePress:
		b.engaged = rising
	default:
		b.engaged = down
	}

	return b.engaged
}

// seed records the key state without producing an edge, so a key already
// down when the binding is created needs a release before it engages.
func (b *Binding) seed(down bool) {
	if b.Bound() {
		b.pressed = down
	}
}
