// Package audio implements the Audio/Speech component: bounded microphone
// and system-loopback capture, cached-model transcription, speak-back over
// an online-then-offline text-to-speech fallback, and the voice hot-key unit
// that ties capture, silence detection, transcription, and text injection
// together.
package audio

import (
	"os"
	"path/filepath"
	"time"

	"warden/internal/logging"
)

// sampleRate is the PCM sample rate used throughout capture and VAD; 16kHz
// mono is the rate speech-recognition models expect.
const sampleRate = 16000

// maxCaptureSeconds bounds a single capture_system_audio/capture_mic_audio
// call.
const maxCaptureSeconds = 300

// maxAudioAge is how long a recorded WAV file is kept before cleanup.
const maxAudioAge = time.Hour

// Segment is one time-stamped span of a transcription.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscribeResult is the full output of a transcription pass.
type TranscribeResult struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Dir returns the per-user audio storage directory, creating it if absent.
func Dir(base string) (string, error) {
	dir := filepath.Join(base, "audio")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// filename builds a timestamped WAV path under dir for the given prefix.
func filename(dir, prefix string, now time.Time) string {
	return filepath.Join(dir, prefix+"_"+now.Format("20060102_150405")+".wav")
}

// CleanupOld removes WAV and tmp files older than maxAudioAge under dir.
func CleanupOld(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-maxAudioAge)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".wav" && ext != ".tmp" {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			logging.Get(logging.CategoryAudio).Debug("audio cleanup: %v", err)
		}
	}
}

// clampDuration bounds a requested capture duration to [1, maxCaptureSeconds].
func clampDuration(seconds int) int {
	if seconds <= 0 {
		return 1
	}
	if seconds > maxCaptureSeconds {
		return maxCaptureSeconds
	}
	return seconds
}
