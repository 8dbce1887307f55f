package utils

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// ShowDialog pops a blocking message box. Used for start-up failures, when
// the console may already be gone.
func ShowDialog(title, message string) {
	t, _ := syscall.UTF16PtrFromString(title)
	txt, _ := syscall.UTF16PtrFromString(message)

	windows.MessageBox(0, txt, t, 0)
}
