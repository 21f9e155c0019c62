package focus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndRestore(t *testing.T) {
	g := New()
	hwnd, title := g.Save()
	require.NotZero(t, hwnd)
	require.NotEmpty(t, title)

	res := g.Restore()
	require.True(t, res.Restored)
}

func TestRestoreWithoutSave(t *testing.T) {
	g := New()
	res := g.Restore()
	require.False(t, res.Restored)
	require.Equal(t, "no saved user focus", res.Reason)
}

func TestPreserveRunsFn(t *testing.T) {
	g := New()
	called := false
	err := g.Preserve(func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}
