package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alwan/alwan/internal/config"
	"github.com/alwan/alwan/internal/input"
	"github.com/alwan/alwan/internal/utils/winproc"
	"github.com/lxn/win"
)

var keyNames = map[string]int{
	"MOUSE1": win.VK_LBUTTON, "LBUTTON": win.VK_LBUTTON,
	"MOUSE2": win.VK_RBUTTON, "RBUTTON": win.VK_RBUTTON,
	"MOUSE3": win.VK_MBUTTON, "MBUTTON": win.VK_MBUTTON,
	"MOUSE4": win.VK_XBUTTON1, "XBUTTON1": win.VK_XBUTTON1,
	"MOUSE5": win.VK_XBUTTON2, "XBUTTON2": win.VK_XBUTTON2,

	"SHIFT": win.VK_SHIFT, "LSHIFT": win.VK_LSHIFT, "RSHIFT": win.VK_RSHIFT,
	"CTRL": win.VK_CONTROL, "LCTRL": win.VK_LCONTROL, "RCTRL": win.VK_RCONTROL,
	"ALT": win.VK_MENU, "LALT": win.VK_LMENU, "RALT": win.VK_RMENU,
	"CAPSLOCK": win.VK_CAPITAL, "TAB": win.VK_TAB, "SPACE": win.VK_SPACE,
	"INSERT": win.VK_INSERT, "DELETE": win.VK_DELETE,
	"HOME": win.VK_HOME, "END": win.VK_END,
	"PAGEUP": win.VK_PRIOR, "PAGEDOWN": win.VK_NEXT,

	"F1": win.VK_F1, "F2": win.VK_F2, "F3": win.VK_F3, "F4": win.VK_F4,
	"F5": win.VK_F5, "F6": win.VK_F6, "F7": win.VK_F7, "F8": win.VK_F8,
	"F9": win.VK_F9, "F10": win.VK_F10, "F11": win.VK_F11, "F12": win.VK_F12,
}

// ResolveKey turns a binding key name into a virtual-key code. An empty name
// resolves to 0 (unbound).
func ResolveKey(name string) (int, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return 0, nil
	}
	if vk, ok := keyNames[name]; ok {
		return vk, nil
	}
	// Letters and digits share their ASCII code with the VK code
	if len(name) == 1 && (name[0] >= 'A' && name[0] <= 'Z' || name[0] >= '0' && name[0] <= '9') {
		return int(name[0]), nil
	}
	if strings.HasPrefix(name, "0X") {
		vk, err := strconv.ParseUint(name[2:], 16, 8)
		if err == nil && vk != 0 {
			return int(vk), nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// Keyboard reads the asynchronous key state of the whole desktop, so hotkeys
// work while the game window has focus.
type Keyboard struct{}

func (Keyboard) KeyDown(vk int) bool {
	ret, _, _ := winproc.GetAsyncKeyState.Call(uintptr(vk))
	return ret&0x8000 != 0
}

// NewInputSource wires the configured bindings to the desktop key state.
func NewInputSource(kb config.KeyBindings) (*input.Source, error) {
	resolve := func(name string, b config.Binding) (*input.Binding, error) {
		vk, err := ResolveKey(b.Key)
		if err != nil {
			return nil, fmt.Errorf("keyBindings.%s: %w", name, err)
		}
		mode, err := input.ParseMode(b.Mode)
		if err != nil {
			return nil, fmt.Errorf("keyBindings.%s: %w", name, err)
		}
		return input.NewBinding(vk, mode), nil
	}

	var (
		bindings input.Bindings
		err      error
	)
	if bindings.Aim, err = resolve("aim", kb.Aim); err != nil {
		return nil, err
	}
	if bindings.Trigger, err = resolve("trigger", kb.Trigger); err != nil {
		return nil, err
	}
	if bindings.RapidFire, err = resolve("rapidFire", kb.RapidFire); err != nil {
		return nil, err
	}
	if bindings.Recoil, err = resolve("recoil", kb.Recoil); err != nil {
		return nil, err
	}
	if bindings.Reload, err = resolve("reload", kb.Reload); err != nil {
		return nil, err
	}
	if bindings.Fire, err = ResolveKey(kb.Fire.Key); err != nil {
		return nil, fmt.Errorf("keyBindings.fire: %w", err)
	}

	return input.NewSource(Keyboard{}, bindings), nil
}
