package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryRoundtrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set(CategoryProjects, "proj/path", "/tmp/x"))

	entry, ok := s.Get(CategoryProjects, "proj/path")
	require.True(t, ok)
	require.Equal(t, "/tmp/x", entry.Value)

	require.NoError(t, s.Delete(CategoryProjects, "proj/path"))
	_, ok = s.Get(CategoryProjects, "proj/path")
	require.False(t, ok)

	require.NotContains(t, s.List(CategoryProjects), "proj/path")
}

func TestMemoryDeleteUnknownKey(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.Error(t, s.Delete(CategoryGeneral, "nope"))
}

func TestMemoryPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(CategoryPreferences, "theme", "dark"))

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	entry, ok := reopened.Get(CategoryPreferences, "theme")
	require.True(t, ok)
	require.Equal(t, "dark", entry.Value)
}
