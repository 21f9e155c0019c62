//go:build windows

package window

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows         = user32.NewProc("EnumWindows")
	procIsWindowVisible     = user32.NewProc("IsWindowVisible")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procIsIconic            = user32.NewProc("IsIconic")
	procGetForegroundWindow  = user32.NewProc("GetForegroundWindow")
	procShowWindow           = user32.NewProc("ShowWindow")
	procMoveWindow           = user32.NewProc("MoveWindow")
	procSendMessage          = user32.NewProc("SendMessageW")
)

const (
	swMinimize = 6
	swMaximize = 3
	swRestore  = 9

	wmClose = 0x0010

	// minimizedSentinel mirrors Win32's placement of minimized windows at
	// (-32000, -32000); GetWindowRect reports this for iconic windows.
	minimizedSentinel = -32000
)

type winRect struct{ Left, Top, Right, Bottom int32 }

// Win32System implements System via Win32 window enumeration APIs.
type Win32System struct{}

func (Win32System) ListWindows() []Info {
	var out []Info
	fg, _, _ := procGetForegroundWindow.Call()

	cb := windows.NewCallback(func(hwnd, lparam uintptr) uintptr {
		visible, _, _ := procIsWindowVisible.Call(hwnd)
		if visible == 0 {
			return 1
		}
		buf := make([]uint16, 256)
		procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		title := windows.UTF16ToString(buf)
		if title == "" {
			return 1
		}

		var r winRect
		procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
		var pid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
		iconic, _, _ := procIsIconic.Call(hwnd)

		info := Info{
			Handle:    hwnd,
			Title:     title,
			PID:       pid,
			X:         int(r.Left),
			Y:         int(r.Top),
			W:         int(r.Right - r.Left),
			H:         int(r.Bottom - r.Top),
			Minimized: iconic != 0 || r.Left == minimizedSentinel,
			Active:    hwnd == fg,
		}
		if info.Minimized {
			info.X, info.Y, info.W, info.H = 0, 0, 0, 0
		}
		out = append(out, info)
		return 1
	})
	procEnumWindows.Call(cb, 0)
	return out
}

func (Win32System) Apply(handle uintptr, action Action) error {
	switch action {
	case ActionMinimize:
		procShowWindow.Call(handle, swMinimize)
	case ActionMaximize:
		procShowWindow.Call(handle, swMaximize)
	case ActionRestore:
		procShowWindow.Call(handle, swRestore)
	case ActionClose:
		procSendMessage.Call(handle, wmClose, 0, 0)
	}
	return nil
}

func (Win32System) Move(handle uintptr, x, y, w, h int) error {
	var r winRect
	procGetWindowRect.Call(handle, uintptr(unsafe.Pointer(&r)))
	if x < 0 {
		x = int(r.Left)
	}
	if y < 0 {
		y = int(r.Top)
	}
	if w < 0 {
		w = int(r.Right - r.Left)
	}
	if h < 0 {
		h = int(r.Bottom - r.Top)
	}
	procMoveWindow.Call(handle, uintptr(x), uintptr(y), uintptr(w), uintptr(h), 1)
	return nil
}
