package winproc

import "golang.org/x/sys/windows"

var (
	USER32             = windows.NewLazySystemDLL("user32.dll")
	GetAsyncKeyState   = USER32.NewProc("GetAsyncKeyState")
	GetDC              = USER32.NewProc("GetDC")
	ReleaseDC          = USER32.NewProc("ReleaseDC")
	SetProcessDpiAware = USER32.NewProc("SetProcessDPIAware")
)
