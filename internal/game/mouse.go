package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"
	"unsafe"

	"github.com/alwan/alwan/internal/config"
	"github.com/alwan/alwan/internal/utils"
	"github.com/lxn/win"
)

// HID injects relative pointer movement and left clicks through SendInput.
type HID struct {
	holdMean, holdMin, holdMax time.Duration
	// sub-pixel remainders, carried between moves of the same session
	remX, remY float64
	rnd        *rand.Rand
}

func NewHID(cfg *config.Config) *HID {
	return &HID{
		holdMean: time.Duration(cfg.Mouse.ClickHoldMean) * time.Millisecond,
		holdMin:  time.Duration(cfg.Mouse.ClickHoldMin) * time.Millisecond,
		holdMax:  time.Duration(cfg.Mouse.ClickHoldMax) * time.Millisecond,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Move sends the integer part of the displacement and keeps the fraction for
// the next call, so slow tracking below one pixel per frame still moves.
func (hid *HID) Move(dx, dy float64) error {
	x, y := splitRemainder(dx, &hid.remX), splitRemainder(dy, &hid.remY)
	if x == 0 && y == 0 {
		return nil
	}
	return sendMouse(win.MOUSEEVENTF_MOVE, x, y)
}

// Click waits delay, then presses and releases the left button.
func (hid *HID) Click(delay time.Duration) error {
	if delay > 0 {
		time.Sleep(delay)
	}
	if err := sendMouse(win.MOUSEEVENTF_LEFTDOWN, 0, 0); err != nil {
		return err
	}
	time.Sleep(utils.RandGammaDuration(hid.rnd, hid.holdMean, hid.holdMin, hid.holdMax))
	return sendMouse(win.MOUSEEVENTF_LEFTUP, 0, 0)
}

func sendMouse(flags uint32, dx, dy int32) error {
	in := win.MOUSE_INPUT{
		Type: win.INPUT_MOUSE,
		Mi: win.MOUSEINPUT{
			Dx:      dx,
			Dy:      dy,
			DwFlags: flags,
		},
	}
	if n := win.SendInput(1, unsafe.Pointer(&in), int32(unsafe.Sizeof(in))); n != 1 {
		return fmt.Errorf("SendInput rejected mouse event 0x%04x", flags)
	}
	return nil
}

// splitRemainder adds v to the carried remainder and returns the whole
// pixels, truncated toward zero.
func splitRemainder(v float64, rem *float64) int32 {
	total := v + *rem
	whole := int32(total)
	*rem = total - float64(whole)
	return whole
}

// LogHID is a dry-run injector: it only logs what it would do.
type LogHID struct {
	logger *slog.Logger
}

func NewLogHID(logger *slog.Logger) *LogHID {
	return &LogHID{logger: logger}
}

func (l *LogHID) Move(dx, dy float64) error {
	l.logger.Debug("Pointer move", slog.Float64("dx", dx), slog.Float64("dy", dy))
	return nil
}

func (l *LogHID) Click(delay time.Duration) error {
	if delay > 0 {
		time.Sleep(delay)
	}
	l.logger.Debug("Click", slog.Duration("delay", delay))
	return nil
}
