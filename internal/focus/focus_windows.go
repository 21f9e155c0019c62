//go:build windows

package focus

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                      = windows.NewLazySystemDLL("user32.dll")
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procGetForegroundWindow     = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow     = user32.NewProc("SetForegroundWindow")
	procIsWindow                = user32.NewProc("IsWindow")
	procGetWindowTextW          = user32.NewProc("GetWindowTextW")
	procGetWindowThreadProcID   = user32.NewProc("GetWindowThreadProcessId")
	procAttachThreadInput       = user32.NewProc("AttachThreadInput")
	procBringWindowToTop        = user32.NewProc("BringWindowToTop")
	procGetCurrentThreadID      = kernel32.NewProc("GetCurrentThreadId")
)

func getForegroundWindow() (uintptr, string) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	return hwnd, windowTitle(hwnd)
}

func windowTitle(hwnd uintptr) string {
	if hwnd == 0 || !isWindow(hwnd) {
		return ""
	}
	buf := make([]uint16, 256)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

func isWindow(hwnd uintptr) bool {
	ret, _, _ := procIsWindow.Call(hwnd)
	return ret != 0
}

func setForegroundWindow(hwnd uintptr) bool {
	if ret, _, _ := procSetForegroundWindow.Call(hwnd); ret != 0 {
		return true
	}
	return forceSetForeground(hwnd)
}

func forceSetForeground(hwnd uintptr) bool {
	fgHwnd, _, _ := procGetForegroundWindow.Call()
	if fgHwnd == 0 {
		return false
	}

	fgTid, _, _ := procGetWindowThreadProcID.Call(fgHwnd, 0)
	ourTid, _, _ := procGetCurrentThreadID.Call()

	attached := fgTid != ourTid
	if attached {
		procAttachThreadInput.Call(ourTid, fgTid, 1)
	}
	defer func() {
		if attached {
			procAttachThreadInput.Call(ourTid, fgTid, 0)
		}
	}()

	procBringWindowToTop.Call(hwnd)
	ret, _, _ := procSetForegroundWindow.Call(hwnd)
	return ret != 0
}
