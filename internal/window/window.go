// Package window implements the Window Manager: listing, focusing, and
// mutating top-level windows.
package window

import (
	"fmt"
	"regexp"

	"warden/internal/focus"
	"warden/internal/logging"
)

// Info describes one top-level window.
type Info struct {
	Handle    uintptr
	Title     string
	PID       uint32
	X, Y      int
	W, H      int
	Minimized bool
	Active    bool
}

// Action is a window-mutating operation supported by Manage.
type Action string

const (
	ActionMinimize Action = "minimize"
	ActionMaximize Action = "maximize"
	ActionRestore  Action = "restore"
	ActionClose    Action = "close"
)

// System performs the OS-level window enumeration and mutation the Manager
// delegates to. The Windows implementation wraps Win32 EnumWindows and
// friends; other platforms use a deterministic empty implementation.
type System interface {
	ListWindows() []Info
	Apply(handle uintptr, action Action) error
	Move(handle uintptr, x, y, w, h int) error
}

// Manager is the Window Manager.
type Manager struct {
	sys   System
	guard *focus.Guard
}

// New builds a Window Manager over sys, sharing guard with the rest of the
// engine for focus-stealing operations.
func New(sys System, guard *focus.Guard) *Manager {
	return &Manager{sys: sys, guard: guard}
}

// List enumerates all visible top-level windows.
func (m *Manager) List() []Info {
	return m.sys.ListWindows()
}

// Focus locates the first window whose title contains substr (matched as a
// regex-escaped literal) and brings it to the foreground.
func (m *Manager) Focus(substr string) (*Info, error) {
	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(substr))
	if err != nil {
		return nil, fmt.Errorf("compile window title match: %w", err)
	}

	for _, w := range m.List() {
		if pattern.MatchString(w.Title) {
			if err := m.sys.Apply(w.Handle, ActionRestore); err != nil {
				logging.Get(logging.CategoryWindow).Debug("restore before focus failed: %v", err)
			}
			m.guard.Save()
			return &w, nil
		}
	}
	return nil, fmt.Errorf("no window matching %q", substr)
}

// Manage applies action to a window by handle. move/resize go through
// Move; the rest go through the System's Apply.
func (m *Manager) Manage(handle uintptr, action Action) error {
	return m.sys.Apply(handle, action)
}

// Move repositions and/or resizes a window, preserving any dimension not
// supplied (signaled by a negative value).
func (m *Manager) Move(handle uintptr, x, y, w, h int) error {
	return m.sys.Move(handle, x, y, w, h)
}
