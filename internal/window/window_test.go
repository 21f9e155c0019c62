package window

import (
	"testing"

	"github.com/stretchr/testify/require"

	"warden/internal/focus"
)

type fakeSystem struct {
	windows []Info
	applied []Action
	moved   [4]int
}

func (f *fakeSystem) ListWindows() []Info { return f.windows }
func (f *fakeSystem) Apply(handle uintptr, action Action) error {
	f.applied = append(f.applied, action)
	return nil
}
func (f *fakeSystem) Move(handle uintptr, x, y, w, h int) error {
	f.moved = [4]int{x, y, w, h}
	return nil
}

func TestList(t *testing.T) {
	sys := &fakeSystem{windows: []Info{{Handle: 1, Title: "Notepad"}}}
	m := New(sys, focus.New())
	require.Len(t, m.List(), 1)
}

func TestFocusMatchesSubstring(t *testing.T) {
	sys := &fakeSystem{windows: []Info{{Handle: 1, Title: "Untitled - Notepad"}}}
	m := New(sys, focus.New())

	info, err := m.Focus("notepad")
	require.NoError(t, err)
	require.Equal(t, uintptr(1), info.Handle)
	require.Contains(t, sys.applied, ActionRestore)
}

func TestFocusNoMatch(t *testing.T) {
	sys := &fakeSystem{windows: []Info{{Handle: 1, Title: "Calculator"}}}
	m := New(sys, focus.New())

	_, err := m.Focus("notepad")
	require.Error(t, err)
}

func TestManage(t *testing.T) {
	sys := &fakeSystem{}
	m := New(sys, focus.New())
	require.NoError(t, m.Manage(1, ActionMaximize))
	require.Contains(t, sys.applied, ActionMaximize)
}

func TestMove(t *testing.T) {
	sys := &fakeSystem{}
	m := New(sys, focus.New())
	require.NoError(t, m.Move(1, 10, 20, 300, 400))
	require.Equal(t, [4]int{10, 20, 300, 400}, sys.moved)
}
