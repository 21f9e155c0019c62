package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClampDuration(t *testing.T) {
	require.Equal(t, 1, clampDuration(0))
	require.Equal(t, 1, clampDuration(-5))
	require.Equal(t, maxCaptureSeconds, clampDuration(10000))
	require.Equal(t, 10, clampDuration(10))
}

func TestCleanupOldRemovesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "old.wav")
	fresh := filepath.Join(dir, "new.wav")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	CleanupOld(dir)

	_, err := os.Stat(stale)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	require.NoError(t, err)
}

func TestWriteWAVProducesReadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wav")
	samples := []int16{1, 2, 3, -1, -2}
	require.NoError(t, WriteWAV(path, samples))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestCaptureClipWritesWAVFile(t *testing.T) {
	dir := t.TempDir()
	chunks := make([][]int16, 4) // 4 * 0.5s = 2s
	for i := range chunks {
		chunks[i] = loudChunk()
	}
	cap := &fakeCapturer{chunks: chunks}

	path, err := CaptureClip(context.Background(), cap, dir, SourceMic, 2)
	require.NoError(t, err)
	require.FileExists(t, path)
}
