// Package background implements Background Mode: choosing an "agent
// screen" rectangle to stage automation windows away from the user, and
// moving windows between that rectangle and their original position.
package background

import (
	"fmt"
	"sync"

	"warden/internal/window"
)

// Rect is a screen rectangle in virtual-desktop coordinates.
type Rect struct{ X, Y, W, H int }

func (r Rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Monitor describes one enumerated display.
type Monitor struct {
	Rect    Rect
	Primary bool
}

// MonitorLister enumerates attached displays.
type MonitorLister interface {
	ListMonitors() []Monitor
}

// offscreenMargin, offscreenW and offscreenH define the synthetic agent rectangle
// used when only one monitor is present.
const offscreenMargin = 0
const offscreenW, offscreenH = 1920, 1080

// agentMargin insets the agent rectangle from the chosen monitor's edges so
// staged windows don't butt against screen boundaries.
const agentMargin = 20

// Mode names how the agent rectangle was derived.
type Mode string

const (
	ModeDualMonitor Mode = "dual_monitor"
	ModeOffscreen   Mode = "offscreen"
)

// Manager owns the chosen agent rectangle and the set of windows it has
// relocated there.
type Manager struct {
	lister MonitorLister
	mgr    *window.Manager

	mu     sync.Mutex
	mode   Mode
	agent  Rect
	saved  map[uintptr]window.Info
}

// New computes the agent rectangle from the current monitor layout: dual_monitor
// when 2+ displays are present (the agent rectangle is the non-primary
// display), else a synthetic offscreen rectangle to the right of the primary
// display.
func New(lister MonitorLister, mgr *window.Manager) *Manager {
	m := &Manager{lister: lister, mgr: mgr, saved: make(map[uintptr]window.Info)}
	m.recompute()
	return m
}

func (m *Manager) recompute() {
	monitors := m.lister.ListMonitors()
	if len(monitors) >= 2 {
		m.mode = ModeDualMonitor
		m.agent = pickNonPrimary(monitors)
		return
	}

	m.mode = ModeOffscreen
	primary := primaryOf(monitors)
	m.agent = Rect{X: primary.X + primary.W + offscreenMargin, Y: primary.Y, W: offscreenW, H: offscreenH}
}

func pickNonPrimary(monitors []Monitor) Rect {
	for _, mon := range monitors {
		if !mon.Primary {
			return mon.Rect
		}
	}
	return monitors[1].Rect
}

func primaryOf(monitors []Monitor) Rect {
	for _, mon := range monitors {
		if mon.Primary {
			return mon.Rect
		}
	}
	if len(monitors) > 0 {
		return monitors[0].Rect
	}
	return Rect{W: 1920, H: 1080}
}

// Mode reports how the agent rectangle was derived.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// AgentRect returns the current agent rectangle.
func (m *Manager) AgentRect() Rect {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agent
}

// MoveToAgentScreen saves handle's current rectangle and relocates it into
// the agent rectangle, clamped to fit within it with a margin.
func (m *Manager) MoveToAgentScreen(handle uintptr) error {
	windows := m.mgr.List()
	var info *window.Info
	for i := range windows {
		if windows[i].Handle == handle {
			info = &windows[i]
			break
		}
	}
	if info == nil {
		return fmt.Errorf("no such window: %d", handle)
	}

	m.mu.Lock()
	m.saved[handle] = *info
	agent := m.agent
	m.mu.Unlock()

	w, h := info.W, info.H
	maxW, maxH := agent.W-2*agentMargin, agent.H-2*agentMargin
	if w > maxW {
		w = maxW
	}
	if h > maxH {
		h = maxH
	}
	return m.mgr.Move(handle, agent.X+agentMargin, agent.Y+agentMargin, w, h)
}

// MoveToUserScreen restores handle to the rectangle it had before
// MoveToAgentScreen was called.
func (m *Manager) MoveToUserScreen(handle uintptr) error {
	m.mu.Lock()
	info, ok := m.saved[handle]
	if ok {
		delete(m.saved, handle)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("no saved position for window: %d", handle)
	}
	return m.mgr.Move(handle, info.X, info.Y, info.W, info.H)
}

// GetAgentScreenState lists every currently open window whose top-left
// corner lies within the agent rectangle.
func (m *Manager) GetAgentScreenState() []window.Info {
	agent := m.AgentRect()
	var out []window.Info
	for _, w := range m.mgr.List() {
		if agent.contains(w.X, w.Y) {
			out = append(out, w)
		}
	}
	return out
}

// IsOnUserScreen decides whether the given point lies outside the agent
// rectangle, used by the Dispatcher to decide whether a move should be
// redirected away from the user's visible desktop.
func (m *Manager) IsOnUserScreen(x, y int) bool {
	return !m.AgentRect().contains(x, y)
}
