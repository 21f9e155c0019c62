package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"warden/internal/focus"
	"warden/internal/hotkey"
)

func TestVoiceUnitTriggerTranscribesAndStores(t *testing.T) {
	chunks := [][]int16{loudChunk(), loudChunk(), silentChunk(), silentChunk(), silentChunk(), silentChunk()}
	cap := &fakeCapturer{chunks: chunks}
	trans := &fakeTranscriber{result: &TranscribeResult{Text: "hello world", Language: "en"}}

	v := NewVoiceUnit(cap, trans, focus.New(), nil, t.TempDir(), "base", func() bool { return false })
	v.Trigger()

	require.Eventually(t, func() bool {
		return v.Status().Text == "hello world"
	}, time.Second, 10*time.Millisecond)
}

func TestVoiceUnitTriggerIgnoredWhileRecording(t *testing.T) {
	chunks := [][]int16{loudChunk()}
	cap := &fakeCapturer{chunks: chunks}
	trans := &fakeTranscriber{result: &TranscribeResult{Text: "x"}}

	v := NewVoiceUnit(cap, trans, focus.New(), nil, t.TempDir(), "base", func() bool { return false })
	v.mu.Lock()
	v.recording = true
	v.mu.Unlock()

	v.Trigger() // should be a no-op since recording is already true
	require.True(t, v.recording)
}

func TestVoiceUnitKillStopsRecording(t *testing.T) {
	chunks := [][]int16{loudChunk(), loudChunk(), loudChunk()}
	cap := &fakeCapturer{chunks: chunks}
	trans := &fakeTranscriber{result: &TranscribeResult{Text: "unused"}}

	v := NewVoiceUnit(cap, trans, focus.New(), nil, t.TempDir(), "base", func() bool { return true })
	v.Trigger()

	require.Eventually(t, func() bool {
		return v.Status().StopReason == StopKilled
	}, time.Second, 10*time.Millisecond)
	require.Empty(t, v.Status().Text)
}

type fakeHotkeyRegistrar struct {
	registered map[int]hotkey.Combo
}

func (f *fakeHotkeyRegistrar) Register(id int, combo hotkey.Combo, fn func()) error {
	f.registered[id] = combo
	return nil
}
func (f *fakeHotkeyRegistrar) Unregister(id int) error { delete(f.registered, id); return nil }
func (f *fakeHotkeyRegistrar) Close() error            { return nil }

func TestVoiceUnitRegisterHotkeys(t *testing.T) {
	cap := &fakeCapturer{}
	trans := &fakeTranscriber{}
	v := NewVoiceUnit(cap, trans, focus.New(), nil, t.TempDir(), "base", func() bool { return false })

	reg := &fakeHotkeyRegistrar{registered: make(map[int]hotkey.Combo)}
	mgr := hotkey.New(reg)
	require.NoError(t, v.RegisterHotkeys(mgr, "ctrl+shift+m", "ctrl+shift+n"))
	require.Len(t, reg.registered, 2)
}
