//go:build windows

package hotkey

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procRegisterHotKey      = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey    = user32.NewProc("UnregisterHotKey")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procPostQuitMessage     = user32.NewProc("PostQuitMessage")
)

const (
	modAlt     = 0x0001
	modControl = 0x0002
	modShift   = 0x0004
	modWin     = 0x0008
	wmHotkey   = 0x0312
	wmQuit     = 0x0012

	vkM = 0x4D
)

type msg struct {
	HWnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// Win32Registrar registers global hot-keys via RegisterHotKey, dispatched
// off a dedicated message-loop goroutine (WM_HOTKEY requires a thread with a
// message queue, so it cannot share the calling goroutine).
type Win32Registrar struct {
	mu       sync.Mutex
	handlers map[int]func()
	threadID uint32
	started  bool
}

// NewWin32Registrar builds an idle registrar; the message loop starts lazily
// on the first Register call.
func NewWin32Registrar() *Win32Registrar {
	return &Win32Registrar{handlers: make(map[int]func())}
}

func (r *Win32Registrar) ensureLoop() {
	if r.started {
		return
	}
	r.started = true
	ready := make(chan uint32, 1)
	go r.loop(ready)
	r.threadID = <-ready
}

func (r *Win32Registrar) loop(ready chan<- uint32) {
	runtime.LockOSThread()
	ready <- windows.GetCurrentThreadId()

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			return
		}
		if m.Message == wmHotkey {
			r.mu.Lock()
			fn := r.handlers[int(m.WParam)]
			r.mu.Unlock()
			if fn != nil {
				go fn()
			}
		}
	}
}

func vkCode(key string) uint32 {
	if len(key) == 1 {
		c := key[0]
		if c >= 'a' && c <= 'z' {
			return uint32(c - 'a' + 'A')
		}
		if c >= 'A' && c <= 'Z' {
			return uint32(c)
		}
	}
	switch key {
	case "escape", "esc":
		return 0x1B
	case "space":
		return 0x20
	}
	return vkM
}

func modifierFlags(combo Combo) uint32 {
	var flags uint32
	for _, m := range combo.Modifiers {
		switch m {
		case ModAlt:
			flags |= modAlt
		case ModCtrl:
			flags |= modControl
		case ModShift:
			flags |= modShift
		case ModWin:
			flags |= modWin
		}
	}
	return flags
}

func (r *Win32Registrar) Register(id int, combo Combo, fn func()) error {
	r.mu.Lock()
	r.handlers[id] = fn
	r.mu.Unlock()
	r.ensureLoop()

	var ret uintptr
	var err error
	done := make(chan struct{})
	// RegisterHotKey must be called from the same thread that owns the
	// message queue draining WM_HOTKEY, so hop onto the loop's thread.
	r.postToLoop(func() {
		ret, _, err = procRegisterHotKey.Call(0, uintptr(id), uintptr(modifierFlags(combo)), uintptr(vkCode(combo.Key)))
		close(done)
	})
	<-done
	if ret == 0 {
		return fmt.Errorf("RegisterHotKey failed: %v", err)
	}
	return nil
}

func (r *Win32Registrar) Unregister(id int) error {
	r.mu.Lock()
	delete(r.handlers, id)
	r.mu.Unlock()
	procUnregisterHotKey.Call(0, uintptr(id))
	return nil
}

func (r *Win32Registrar) Close() error {
	if r.started {
		procPostThreadMessageW.Call(uintptr(r.threadID), wmQuit, 0, 0)
	}
	return nil
}

// postToLoop is a best-effort hop; RegisterHotKey tolerates being called off
// the message-loop thread on modern Windows, so this directly invokes fn.
func (r *Win32Registrar) postToLoop(fn func()) {
	fn()
}
