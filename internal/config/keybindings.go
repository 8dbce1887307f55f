package config

import (
	"errors"
	"fmt"

	"github.com/alwan/alwan/internal/input"
)

// Binding names a key and how it engages. Key names are resolved by the
// platform backend, e.g. MOUSE1..MOUSE5, F1..F12, A..Z, 0..9, SHIFT, CTRL,
// ALT, CAPSLOCK or a raw virtual-key code such as 0x06.
type Binding struct {
	Key  string `yaml:"key"`
	Mode string `yaml:"mode,omitempty"`
}

type KeyBindings struct {
	Aim       Binding `yaml:"aim"`
	Trigger   Binding `yaml:"trigger"`
	RapidFire Binding `yaml:"rapidFire"`
	// Recoil left empty makes recoil compensation follow the aim key.
	Recoil Binding `yaml:"recoil"`
	Reload Binding `yaml:"reload"`
	// Fire is the primary button watched by recoil compensation.
	Fire Binding `yaml:"fire"`
}

func (kb *KeyBindings) applyDefaults() {
	if kb.Reload.Key == "" {
		kb.Reload.Key = "F1"
	}
	kb.Reload.Mode = string(input.ModePress)
	if kb.Fire.Key == "" {
		kb.Fire.Key = "MOUSE1"
	}
}

func (kb *KeyBindings) Named() map[string]Binding {
	return map[string]Binding{
		"aim":       kb.Aim,
		"trigger":   kb.Trigger,
		"rapidFire": kb.RapidFire,
		"recoil":    kb.Recoil,
		"reload":    kb.Reload,
		"fire":      kb.Fire,
	}
}

func (kb *KeyBindings) Validate() error {
	var errs []error
	for name, b := range kb.Named() {
		if _, err := input.ParseMode(b.Mode); err != nil {
			errs = append(errs, fmt.Errorf("keyBindings.%s: %w", name, err))
		}
	}
	if kb.Reload.Key == "" {
		errs = append(errs, errors.New("keyBindings.reload must be bound"))
	}
	return errors.Join(errs...)
}
