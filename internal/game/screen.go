package game

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/alwan/alwan/internal/aim"
	"github.com/alwan/alwan/internal/bot"
	"github.com/alwan/alwan/internal/config"
	"github.com/alwan/alwan/internal/utils/winproc"
	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

type bmpInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct{ Header bmpInfoHeader }

// Screen captures a field of view around the crosshair and asks a Detector
// for a target in it. The GDI objects live for one session and are released
// by Close.
type Screen struct {
	detector         Detector
	screenW, screenH int
	fovW, fovH       int
	offsetX, offsetY int
	triggerThreshold float64

	hdcScreen uintptr
	hdcMem    uintptr
	hbm       uintptr
	oldBmp    uintptr // stock bitmap of hdcMem, selected back before hbm is deleted
	bits      uintptr
	frame     *image.RGBA
}

func NewScreen(cfg *config.Config) (*Screen, error) {
	detector, err := detectorByName(cfg.Screen.Detector)
	if err != nil {
		return nil, err
	}

	s := &Screen{
		detector:         detector,
		screenW:          int(win.GetSystemMetrics(win.SM_CXSCREEN)),
		screenH:          int(win.GetSystemMetrics(win.SM_CYSCREEN)),
		fovW:             cfg.Screen.FovX,
		fovH:             cfg.Screen.FovY,
		offsetX:          cfg.Screen.OffsetX,
		offsetY:          cfg.Screen.OffsetY,
		triggerThreshold: float64(cfg.Screen.TriggerThreshold),
	}
	if s.screenW <= 0 || s.screenH <= 0 {
		return nil, errors.New("could not read the screen size")
	}
	if s.fovW > s.screenW {
		s.fovW = s.screenW
	}
	if s.fovH > s.screenH {
		s.fovH = s.screenH
	}

	if err := s.allocate(); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func (s *Screen) allocate() error {
	s.hdcScreen, _, _ = winproc.GetDC.Call(0)
	if s.hdcScreen == 0 {
		return errors.New("GetDC failed")
	}

	s.hdcMem, _, _ = winproc.CreateCompatibleDC.Call(s.hdcScreen)
	if s.hdcMem == 0 {
		return errors.New("CreateCompatibleDC failed")
	}

	// Top-down 32-bpp DIB
	bi := bitmapInfo{Header: bmpInfoHeader{
		BiSize:     40,
		BiWidth:    int32(s.fovW),
		BiHeight:   -int32(s.fovH),
		BiPlanes:   1,
		BiBitCount: 32,
	}}
	s.hbm, _, _ = winproc.CreateDIBSection.Call(s.hdcScreen, uintptr(unsafe.Pointer(&bi)), 0, uintptr(unsafe.Pointer(&s.bits)), 0, 0)
	if s.hbm == 0 || s.bits == 0 {
		return errors.New("CreateDIBSection failed")
	}
	s.oldBmp = gdiCall(winproc.SelectObject, s.hdcMem, s.hbm)

	s.frame = image.NewRGBA(image.Rect(0, 0, s.fovW, s.fovH))
	return nil
}

// reference is the point targets are measured from: the screen center plus
// the configured offset, pushed down by the recoil bias.
func (s *Screen) reference(bias float64) (float64, float64) {
	return float64(s.screenW/2+s.offsetX), float64(s.screenH/2+s.offsetY) + bias
}

func (s *Screen) Acquire(recoilBias float64) (bot.Acquisition, error) {
	refX, refY := s.reference(recoilBias)
	origin := image.Pt(int(refX)-s.fovW/2, int(refY)-s.fovH/2)
	origin.X = clamp(origin.X, 0, s.screenW-s.fovW)
	origin.Y = clamp(origin.Y, 0, s.screenH-s.fovH)

	if err := s.capture(origin); err != nil {
		return bot.Acquisition{}, err
	}

	p, found := s.detector.Detect(s.frame)
	if !found {
		return bot.Acquisition{}, nil
	}

	target := aim.Vector{
		X: float64(origin.X+p.X) - refX,
		Y: float64(origin.Y+p.Y) - refY,
	}

	return bot.Acquisition{
		Target:  target,
		Found:   true,
		Trigger: abs(target.X) <= s.triggerThreshold && abs(target.Y) <= s.triggerThreshold,
	}, nil
}

func (s *Screen) capture(origin image.Point) error {
	ret, _, err := winproc.BitBlt.Call(s.hdcMem, 0, 0, uintptr(s.fovW), uintptr(s.fovH),
		s.hdcScreen, uintptr(origin.X), uintptr(origin.Y), winproc.SRCCOPY|winproc.CAPTUREBLT)
	if ret == 0 {
		return fmt.Errorf("BitBlt failed: %w", err)
	}
	winproc.GdiFlush.Call()

	// Wrap the DIB memory and swap B<->R (BGRA->RGBA)
	n := s.fovW * s.fovH * 4
	src := unsafe.Slice((*byte)(unsafe.Pointer(s.bits)), n)

	copy(s.frame.Pix, src)
	for i := 0; i+3 < len(s.frame.Pix); i += 4 {
		s.frame.Pix[i], s.frame.Pix[i+2] = s.frame.Pix[i+2], s.frame.Pix[i]
	}
	return nil
}

// Close releases the GDI objects. hbm can only be deleted once it is no
// longer selected into hdcMem.
func (s *Screen) Close() error {
	if s.hdcMem != 0 && s.oldBmp != 0 {
		gdiCall(winproc.SelectObject, s.hdcMem, s.oldBmp)
		s.oldBmp = 0
	}
	var err error
	if s.hbm != 0 {
		if gdiCall(winproc.DeleteObject, s.hbm) == 0 {
			err = errors.New("DeleteObject failed for the capture bitmap")
		}
		s.hbm = 0
	}
	if s.hdcMem != 0 {
		gdiCall(winproc.DeleteDC, s.hdcMem)
		s.hdcMem = 0
	}
	if s.hdcScreen != 0 {
		gdiCall(winproc.ReleaseDC, 0, s.hdcScreen)
		s.hdcScreen = 0
	}
	s.bits = 0
	return err
}

var gdiCall = func(proc *windows.LazyProc, args ...uintptr) uintptr {
	ret, _, _ := proc.Call(args...)
	return ret
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
