package hotkey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCombo(t *testing.T) {
	c, err := Parse("ctrl+shift+m")
	require.NoError(t, err)
	require.Equal(t, "m", c.Key)
	require.Contains(t, c.Modifiers, ModCtrl)
	require.Contains(t, c.Modifiers, ModShift)
}

func TestParseRejectsTwoPrimaryKeys(t *testing.T) {
	_, err := Parse("ctrl+m+n")
	require.Error(t, err)
}

func TestParseRejectsNoPrimaryKey(t *testing.T) {
	_, err := Parse("ctrl+shift")
	require.Error(t, err)
}

type fakeRegistrar struct {
	registered map[int]Combo
	closed     bool
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{registered: make(map[int]Combo)}
}

func (f *fakeRegistrar) Register(id int, combo Combo, fn func()) error {
	f.registered[id] = combo
	return nil
}

func (f *fakeRegistrar) Unregister(id int) error {
	delete(f.registered, id)
	return nil
}

func (f *fakeRegistrar) Close() error {
	f.closed = true
	return nil
}

func TestManagerRegisterReplacesPriorByName(t *testing.T) {
	reg := newFakeRegistrar()
	m := New(reg)

	require.NoError(t, m.Register("kill", "ctrl+shift+escape", func() {}))
	require.Len(t, reg.registered, 1)

	require.NoError(t, m.Register("kill", "ctrl+shift+k", func() {}))
	require.Len(t, reg.registered, 1)
}

func TestManagerUnregister(t *testing.T) {
	reg := newFakeRegistrar()
	m := New(reg)
	require.NoError(t, m.Register("voice_start", "ctrl+shift+m", func() {}))
	require.NoError(t, m.Unregister("voice_start"))
	require.Empty(t, reg.registered)
}

func TestManagerClose(t *testing.T) {
	reg := newFakeRegistrar()
	m := New(reg)
	require.NoError(t, m.Close())
	require.True(t, reg.closed)
}
