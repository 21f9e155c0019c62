package audio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirCreatesAudioSubdir(t *testing.T) {
	base := t.TempDir()
	dir, err := Dir(base)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, "audio"), dir)
	require.DirExists(t, dir)
}
