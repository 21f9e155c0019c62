//go:build windows

package uia

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procEnumChildWindows   = user32.NewProc("EnumChildWindows")
	procGetWindowTextW     = user32.NewProc("GetWindowTextW")
	procGetClassNameW      = user32.NewProc("GetClassNameW")
	procIsWindowVisible    = user32.NewProc("IsWindowVisible")
	procIsWindowEnabled    = user32.NewProc("IsWindowEnabled")
	procGetDlgCtrlID       = user32.NewProc("GetDlgCtrlID")
	procGetParent          = user32.NewProc("GetParent")
)

// WindowWalker enumerates native child windows as a substitute accessibility
// tree. One level of EnumChildWindows maps to one level of Node children;
// this is an approximation of the true UIA COM tree (see package doc).
type WindowWalker struct{}

func (WindowWalker) Children(handle uintptr) []*Node {
	if handle == 0 {
		return nil
	}
	var nodes []*Node
	cb := windows.NewCallback(func(hwnd, lparam uintptr) uintptr {
		// EnumChildWindows also visits grandchildren; keep direct children only.
		if parent, _, _ := procGetParent.Call(hwnd); parent == handle {
			nodes = append(nodes, nodeFromHandle(hwnd))
		}
		return 1 // continue enumeration
	})
	procEnumChildWindows.Call(handle, cb, 0)
	return nodes
}

func nodeFromHandle(hwnd uintptr) *Node {
	return &Node{
		Handle:      hwnd,
		Name:        windowText(hwnd),
		ClassName:   className(hwnd),
		ControlType: className(hwnd),
		Enabled:     boolCall(procIsWindowEnabled, hwnd),
		Visible:     boolCall(procIsWindowVisible, hwnd),
	}
}

func windowText(hwnd uintptr) string {
	buf := make([]uint16, 256)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

func className(hwnd uintptr) string {
	buf := make([]uint16, 256)
	procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

func boolCall(proc *windows.LazyProc, hwnd uintptr) bool {
	ret, _, _ := proc.Call(hwnd)
	return ret != 0
}
