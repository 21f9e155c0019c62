// Package focus implements the Focus Guard: saving and restoring the user's
// foreground window around operations that might steal it (synthesized
// input, window management). The Dispatcher saves focus before every
// non-meta tool call and restores it afterwards; Guard.Preserve does the
// same around a single function.
package focus

import (
	"sync"
	"time"

	"warden/internal/logging"
)

// restoreDelay gives a focus-stealing operation time to finish before the
// guard tries to hand focus back.
const restoreDelay = 50 * time.Millisecond

// RestoreResult reports the outcome of a restore attempt.
type RestoreResult struct {
	Restored       bool
	Window         string
	AlreadyFocused bool
	Reason         string
}

// Guard owns the single saved-window slot. One Guard is shared by every
// input- and window-management tool in the engine.
type Guard struct {
	mu    sync.Mutex
	saved uintptr
	title string
}

// New creates an empty Focus Guard.
func New() *Guard {
	return &Guard{}
}

// Save records the current foreground window as the user's window to
// restore to later. Returns the saved handle and title.
func (g *Guard) Save() (uintptr, string) {
	hwnd, title := getForegroundWindow()

	g.mu.Lock()
	g.saved = hwnd
	g.title = title
	g.mu.Unlock()

	logging.Get(logging.CategoryWindow).Debug("saved user focus: hwnd=%v title=%q", hwnd, title)
	return hwnd, title
}

// Restore hands focus back to the previously saved window.
func (g *Guard) Restore() RestoreResult {
	g.mu.Lock()
	hwnd := g.saved
	g.mu.Unlock()

	if hwnd == 0 {
		return RestoreResult{Reason: "no saved user focus"}
	}
	if !isWindow(hwnd) {
		g.mu.Lock()
		g.saved = 0
		g.mu.Unlock()
		return RestoreResult{Reason: "saved window no longer exists"}
	}

	title := windowTitle(hwnd)
	if current, _ := getForegroundWindow(); current == hwnd {
		return RestoreResult{Restored: true, Window: title, AlreadyFocused: true}
	}

	if setForegroundWindow(hwnd) {
		logging.Get(logging.CategoryWindow).Debug("restored user focus: %q", title)
		return RestoreResult{Restored: true, Window: title}
	}

	logging.Get(logging.CategoryWindow).Warn("could not restore focus to %q", title)
	return RestoreResult{Restored: false, Window: title, Reason: "SetForegroundWindow failed"}
}

// Preserve saves the current foreground window, runs fn, then restores
// focus after a short delay to let fn's focus-stealing effect settle.
func (g *Guard) Preserve(fn func() error) error {
	g.Save()
	err := fn()
	time.Sleep(restoreDelay)
	g.Restore()
	return err
}

// Current returns the current foreground window's handle and title.
func (g *Guard) Current() (uintptr, string) {
	return getForegroundWindow()
}
