//go:build !windows

package background

// Win32MonitorLister is a non-Windows stub reporting a single 1920x1080
// primary display, so the module builds and the agent-rectangle logic is
// exercisable in dev/CI.
type Win32MonitorLister struct{}

// ListMonitors returns a single synthetic primary display.
func (Win32MonitorLister) ListMonitors() []Monitor {
	return []Monitor{{Rect: Rect{X: 0, Y: 0, W: 1920, H: 1080}, Primary: true}}
}
