package background

import (
	"testing"

	"github.com/stretchr/testify/require"

	"warden/internal/focus"
	"warden/internal/window"
)

type fakeLister struct{ monitors []Monitor }

func (f fakeLister) ListMonitors() []Monitor { return f.monitors }

type fakeSystem struct {
	windows []window.Info
	moved   map[uintptr][4]int
}

func (f *fakeSystem) ListWindows() []window.Info { return f.windows }
func (f *fakeSystem) Apply(uintptr, window.Action) error { return nil }
func (f *fakeSystem) Move(handle uintptr, x, y, w, h int) error {
	f.moved[handle] = [4]int{x, y, w, h}
	for i := range f.windows {
		if f.windows[i].Handle == handle {
			f.windows[i].X, f.windows[i].Y, f.windows[i].W, f.windows[i].H = x, y, w, h
		}
	}
	return nil
}

func newTestManager(monitors []Monitor, windows []window.Info) (*Manager, *fakeSystem) {
	sys := &fakeSystem{windows: windows, moved: make(map[uintptr][4]int)}
	wm := window.New(sys, focus.New())
	return New(fakeLister{monitors: monitors}, wm), sys
}

func TestDualMonitorChoosesNonPrimary(t *testing.T) {
	m, _ := newTestManager([]Monitor{
		{Rect: Rect{X: 0, Y: 0, W: 1920, H: 1080}, Primary: true},
		{Rect: Rect{X: 1920, Y: 0, W: 1280, H: 1024}, Primary: false},
	}, nil)

	require.Equal(t, ModeDualMonitor, m.Mode())
	require.Equal(t, Rect{X: 1920, Y: 0, W: 1280, H: 1024}, m.AgentRect())
}

func TestSingleMonitorUsesOffscreen(t *testing.T) {
	m, _ := newTestManager([]Monitor{
		{Rect: Rect{X: 0, Y: 0, W: 1920, H: 1080}, Primary: true},
	}, nil)

	require.Equal(t, ModeOffscreen, m.Mode())
	require.Equal(t, 1920, m.AgentRect().X)
}

func TestMoveToAgentAndBackToUser(t *testing.T) {
	windows := []window.Info{{Handle: 1, Title: "Notepad", X: 100, Y: 100, W: 400, H: 300}}
	m, sys := newTestManager([]Monitor{{Rect: Rect{X: 0, Y: 0, W: 1920, H: 1080}, Primary: true}}, windows)

	require.NoError(t, m.MoveToAgentScreen(1))
	require.Equal(t, 1920+agentMargin, sys.moved[1][0])

	require.NoError(t, m.MoveToUserScreen(1))
	require.Equal(t, 100, sys.moved[1][0])
	require.Equal(t, 100, sys.moved[1][1])
}

func TestMoveToUserScreenWithoutSaveFails(t *testing.T) {
	m, _ := newTestManager([]Monitor{{Rect: Rect{X: 0, Y: 0, W: 1920, H: 1080}, Primary: true}}, nil)
	require.Error(t, m.MoveToUserScreen(99))
}

func TestGetAgentScreenState(t *testing.T) {
	windows := []window.Info{
		{Handle: 1, X: 50, Y: 50},
		{Handle: 2, X: 2000, Y: 50},
	}
	m, _ := newTestManager([]Monitor{{Rect: Rect{X: 0, Y: 0, W: 1920, H: 1080}, Primary: true}}, windows)

	state := m.GetAgentScreenState()
	require.Len(t, state, 1)
	require.EqualValues(t, 2, state[0].Handle)
}

func TestIsOnUserScreen(t *testing.T) {
	m, _ := newTestManager([]Monitor{{Rect: Rect{X: 0, Y: 0, W: 1920, H: 1080}, Primary: true}}, nil)
	require.True(t, m.IsOnUserScreen(10, 10))
	require.False(t, m.IsOnUserScreen(2000, 10))
}
