//go:build windows

package background

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                    = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayMonitors   = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW       = user32.NewProc("GetMonitorInfoW")
)

const monitorInfoFPrimary = 0x00000001

type win32Rect struct{ Left, Top, Right, Bottom int32 }

type monitorInfoEx struct {
	Size    uint32
	Monitor win32Rect
	Work    win32Rect
	Flags   uint32
	Device  [32]uint16
}

// Win32MonitorLister enumerates displays via EnumDisplayMonitors.
type Win32MonitorLister struct{}

// ListMonitors returns every attached display in virtual-desktop coordinates.
func (Win32MonitorLister) ListMonitors() []Monitor {
	var monitors []Monitor
	cb := windows.NewCallback(func(hMonitor uintptr, hdc uintptr, rect uintptr, lparam uintptr) uintptr {
		var info monitorInfoEx
		info.Size = uint32(unsafe.Sizeof(info))
		procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&info)))

		monitors = append(monitors, Monitor{
			Rect: Rect{
				X: int(info.Monitor.Left),
				Y: int(info.Monitor.Top),
				W: int(info.Monitor.Right - info.Monitor.Left),
				H: int(info.Monitor.Bottom - info.Monitor.Top),
			},
			Primary: info.Flags&monitorInfoFPrimary != 0,
		})
		return 1
	})
	procEnumDisplayMonitors.Call(0, 0, cb, 0)
	return monitors
}
