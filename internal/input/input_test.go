package input

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"warden/internal/journal"
	"warden/internal/uia"
)

type fakeSynth struct {
	clicks int
	typed  []string
	keys   []string
}

func (f *fakeSynth) MoveTo(x, y int) {}
func (f *fakeSynth) Click(x, y int, button ClickButton, double bool) { f.clicks++ }
func (f *fakeSynth) TypeText(text string)                            { f.typed = append(f.typed, text) }
func (f *fakeSynth) KeyPress(key string, modifiers []string)        { f.keys = append(f.keys, key) }

type fakeAccess struct {
	invokeErr error
	setErr    error
	invoked   int
	values    map[uintptr]string
}

func (f *fakeAccess) Invoke(handle uintptr) error {
	f.invoked++
	return f.invokeErr
}
func (f *fakeAccess) SetValue(handle uintptr, text string) error { return f.setErr }
func (f *fakeAccess) GetValue(handle uintptr) (string, bool) {
	v, ok := f.values[handle]
	return v, ok
}

type fakeWalker map[uintptr][]*uia.Node

func (w fakeWalker) Children(h uintptr) []*uia.Node { return w[h] }

func newDispatcher(t *testing.T, access *fakeAccess, synth *fakeSynth) (*Dispatcher, *journal.Journal) {
	t.Helper()
	j, err := journal.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	tree := fakeWalker{
		1: {{Handle: 10, Name: "Submit", ControlType: "Button", Visible: true}},
	}
	accessor := uia.New(tree)
	return New(synth, accessor, access, j), j
}

func TestClickByNameSilentSuccess(t *testing.T) {
	access := &fakeAccess{}
	synth := &fakeSynth{}
	d, _ := newDispatcher(t, access, synth)

	require.NoError(t, d.ClickByName(1, "MyApp", "Submit", ButtonLeft, false))
	require.Equal(t, 1, access.invoked)
	require.Equal(t, 0, synth.clicks)
}

func TestClickByNameFallsBackToSynthesis(t *testing.T) {
	access := &fakeAccess{invokeErr: errors.New("pattern unsupported")}
	synth := &fakeSynth{}
	d, j := newDispatcher(t, access, synth)

	require.NoError(t, d.ClickByName(1, "MyApp", "Submit", ButtonLeft, false))
	require.Equal(t, 1, synth.clicks)
	require.Equal(t, methodCoordinate, j.BestMethod("click", "MyApp"))
}

func TestClickByNameNotFound(t *testing.T) {
	access := &fakeAccess{}
	synth := &fakeSynth{}
	d, _ := newDispatcher(t, access, synth)

	err := d.ClickByName(1, "MyApp", "NoSuchThing", ButtonLeft, false)
	require.Error(t, err)
}

func TestTypeByNameSilentSuccess(t *testing.T) {
	access := &fakeAccess{values: map[uintptr]string{}}
	synth := &fakeSynth{}
	d, _ := newDispatcher(t, access, synth)

	protection, err := d.TypeByName(1, "MyApp", "Submit", "hello")
	require.NoError(t, err)
	require.False(t, protection.NewTabCreated)
	require.Empty(t, synth.typed)
}

func TestTypeByNameProtectsExistingNotepadContent(t *testing.T) {
	access := &fakeAccess{values: map[uintptr]string{10: "user data"}}
	synth := &fakeSynth{}
	d, _ := newDispatcher(t, access, synth)

	protection, err := d.TypeByName(1, "Document - Notepad", "Submit", "integration")
	require.NoError(t, err)
	require.True(t, protection.NewTabCreated)
	require.Equal(t, len("user data"), protection.PreservedContentLength)
}

func TestTypeByNameSkipsProtectionForNonTabbedEditor(t *testing.T) {
	access := &fakeAccess{values: map[uintptr]string{10: "existing"}}
	synth := &fakeSynth{}
	d, _ := newDispatcher(t, access, synth)

	protection, err := d.TypeByName(1, "MyApp", "Submit", "hello")
	require.NoError(t, err)
	require.False(t, protection.NewTabCreated)
	require.Zero(t, protection.PreservedContentLength)
}

func TestKeyPressAndHotkey(t *testing.T) {
	synth := &fakeSynth{}
	d := New(synth, uia.New(fakeWalker{}), &fakeAccess{}, nil)
	d.KeyPress("a", []string{"ctrl"})
	require.Contains(t, synth.keys, "a")
	d.Hotkey("escape", nil)
	require.Contains(t, synth.keys, "escape")
}
