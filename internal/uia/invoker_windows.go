//go:build windows

package uia

import (
	"fmt"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	procSendMessageW = user32.NewProc("SendMessageW")
	procIsWindow     = user32.NewProc("IsWindow")
)

const (
	bmClick   = 0x00F5
	wmSetText = 0x000C
	wmGetText = 0x000D
)

// Invoker implements Accessible over plain window-message sends, the same
// substitute-accessibility-tree approximation WindowWalker uses for
// enumeration: BM_CLICK for invocation, WM_SETTEXT/WM_GETTEXT for value
// access. Real UI Automation patterns (InvokePattern, ValuePattern) are not
// available without a COM binding, which the example corpus does not carry.
type Invoker struct{}

func (Invoker) Invoke(handle uintptr) error {
	if !boolCall(procIsWindow, handle) {
		return fmt.Errorf("invoke: no such window %d", handle)
	}
	procSendMessageW.Call(handle, bmClick, 0, 0)
	return nil
}

func (Invoker) SetValue(handle uintptr, text string) error {
	if !boolCall(procIsWindow, handle) {
		return fmt.Errorf("set value: no such window %d", handle)
	}
	utf16Text := utf16.Encode([]rune(text + "\x00"))
	procSendMessageW.Call(handle, wmSetText, 0, uintptr(unsafe.Pointer(&utf16Text[0])))
	return nil
}

func (Invoker) GetValue(handle uintptr) (string, bool) {
	if !boolCall(procIsWindow, handle) {
		return "", false
	}
	buf := make([]uint16, 4096)
	procSendMessageW.Call(handle, wmGetText, uintptr(len(buf)), uintptr(unsafe.Pointer(&buf[0])))
	return windows.UTF16ToString(buf), true
}
