//go:build windows

package input

import (
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procSendInput    = user32.NewProc("SendInput")
	procSetCursorPos = user32.NewProc("SetCursorPos")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseEventLeftDown   = 0x0002
	mouseEventLeftUp     = 0x0004
	mouseEventRightDown  = 0x0008
	mouseEventRightUp    = 0x0010
	mouseEventMiddleDown = 0x0020
	mouseEventMiddleUp   = 0x0040

	keyEventKeyUp   = 0x0002
	keyEventUnicode = 0x0004
)

// mouseInput and keybdInput are exactly the Win32 MOUSEINPUT/KEYBDINPUT
// layouts. win32Input mirrors the tagged INPUT union by reserving enough
// trailing bytes for the larger of the two payloads (MOUSEINPUT is 32 bytes
// and KEYBDINPUT 24 bytes on amd64) after the 4-byte, padded-to-8 type tag.
type mouseInput struct {
	Dx, Dy    int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type keybdInput struct {
	Vk, Scan  uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type win32Input struct {
	Type    uint32
	_       uint32
	Payload [32]byte
}

var modifierKeys = map[string]uint16{
	"ctrl":  0x11,
	"shift": 0x10,
	"alt":   0x12,
	"win":   0x5B,
}

// SendInputSynthesizer synthesizes input via the Win32 SendInput API.
type SendInputSynthesizer struct{}

func (SendInputSynthesizer) MoveTo(x, y int) {
	procSetCursorPos.Call(uintptr(x), uintptr(y))
}

func (s SendInputSynthesizer) Click(x, y int, button ClickButton, double bool) {
	s.MoveTo(x, y)
	down, up := buttonFlags(button)
	sendMouse(down)
	sendMouse(up)
	if double {
		sendMouse(down)
		sendMouse(up)
	}
}

func buttonFlags(button ClickButton) (down, up uint32) {
	switch button {
	case ButtonRight:
		return mouseEventRightDown, mouseEventRightUp
	case ButtonMiddle:
		return mouseEventMiddleDown, mouseEventMiddleUp
	default:
		return mouseEventLeftDown, mouseEventLeftUp
	}
}

func sendMouse(flags uint32) {
	in := win32Input{Type: inputMouse}
	*(*mouseInput)(unsafe.Pointer(&in.Payload)) = mouseInput{Flags: flags}
	procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
}

func (SendInputSynthesizer) TypeText(text string) {
	for _, r := range utf16.Encode([]rune(text)) {
		sendUnicodeChar(r, false)
		sendUnicodeChar(r, true)
	}
}

func sendUnicodeChar(char uint16, up bool) {
	flags := uint32(keyEventUnicode)
	if up {
		flags |= keyEventKeyUp
	}
	in := win32Input{Type: inputKeyboard}
	*(*keybdInput)(unsafe.Pointer(&in.Payload)) = keybdInput{Scan: char, Flags: flags}
	procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
}

func (SendInputSynthesizer) KeyPress(key string, modifiers []string) {
	var mods []uint16
	for _, m := range modifiers {
		if vk, ok := modifierKeys[m]; ok {
			mods = append(mods, vk)
		}
	}
	vk := keyToVK(key)

	for _, m := range mods {
		sendKey(m, false)
	}
	sendKey(vk, false)
	sendKey(vk, true)
	for i := len(mods) - 1; i >= 0; i-- {
		sendKey(mods[i], true)
	}
}

func sendKey(vk uint16, up bool) {
	flags := uint32(0)
	if up {
		flags = keyEventKeyUp
	}
	in := win32Input{Type: inputKeyboard}
	*(*keybdInput)(unsafe.Pointer(&in.Payload)) = keybdInput{Vk: vk, Flags: flags}
	procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
}

func keyToVK(key string) uint16 {
	if len(key) == 1 {
		c := key[0]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		return uint16(c) // uppercase ASCII letter/digit maps to its VK code
	}
	switch key {
	case "enter", "return":
		return 0x0D
	case "tab":
		return 0x09
	case "escape", "esc":
		return 0x1B
	case "delete", "del":
		return 0x2E
	case "backspace":
		return 0x08
	case "space":
		return 0x20
	default:
		return 0
	}
}
