package audio

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

var errFakeTTS = errors.New("synthesis failed")

func writeFakeFile(path string) error {
	return os.WriteFile(path, []byte("audio"), 0o644)
}

type fakeTTSBackend struct {
	shouldFail bool
	calls      int
}

func (f *fakeTTSBackend) synthesize(ctx context.Context, text, voice string, rate float64, outPath string) error {
	f.calls++
	if f.shouldFail {
		return errFakeTTS
	}
	return writeFakeFile(outPath)
}

type fakePlayer struct {
	played []string
}

func (p *fakePlayer) Play(ctx context.Context, path string) error {
	p.played = append(p.played, path)
	return nil
}

func TestTTSSpeakUsesOnlineEngineFirst(t *testing.T) {
	dir := t.TempDir()
	online := &fakeTTSBackend{}
	offline := &fakeTTSBackend{}
	player := &fakePlayer{}

	tts := &TTS{dir: dir, online: online, offline: offline, player: player}
	require.NoError(t, tts.Speak(context.Background(), "hello", "", 1.0))
	require.Equal(t, 1, online.calls)
	require.Equal(t, 0, offline.calls)
	require.Len(t, player.played, 1)
}

func TestTTSSpeakFallsBackToOffline(t *testing.T) {
	dir := t.TempDir()
	online := &fakeTTSBackend{shouldFail: true}
	offline := &fakeTTSBackend{}
	player := &fakePlayer{}

	tts := &TTS{dir: dir, online: online, offline: offline, player: player}
	require.NoError(t, tts.Speak(context.Background(), "hola", "", 1.0))
	require.Equal(t, 1, online.calls)
	require.Equal(t, 1, offline.calls)
}

func TestTTSSpeakFailsWithNoEngines(t *testing.T) {
	dir := t.TempDir()
	tts := &TTS{dir: dir}
	require.Error(t, tts.Speak(context.Background(), "hello", "", 1.0))
}
