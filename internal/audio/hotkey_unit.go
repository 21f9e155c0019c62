package audio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"warden/internal/focus"
	"warden/internal/hotkey"
	"warden/internal/input"
	"warden/internal/logging"
)

// VoiceUnit is the voice hot-key unit: press-to-record with silence
// detection, transcription, and typed injection into whatever window had
// focus when the hot-key fired.
type VoiceUnit struct {
	cap    Capturer
	trans  Transcriber
	focus  *focus.Guard
	input  *input.Dispatcher
	audio  string // audio storage directory
	model  string
	killed func() bool

	mu        sync.Mutex
	recording bool
	cancel    context.CancelFunc
	manualCh  chan struct{}

	lastStatus atomic.Value // Status
}

// Status reports the current or most recent recording outcome.
type Status struct {
	Recording bool       `json:"recording"`
	StopReason StopReason `json:"stop_reason,omitempty"`
	Text       string     `json:"text,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// NewVoiceUnit builds a voice hot-key unit. killed reports kill-switch
// state and is consulted between recording chunks.
func NewVoiceUnit(cap Capturer, trans Transcriber, guard *focus.Guard, dispatcher *input.Dispatcher, audioDir, modelSize string, killed func() bool) *VoiceUnit {
	v := &VoiceUnit{cap: cap, trans: trans, focus: guard, input: dispatcher, audio: audioDir, model: modelSize, killed: killed}
	v.lastStatus.Store(Status{})
	return v
}

// RegisterHotkeys arms the start/stop combos on mgr.
func (v *VoiceUnit) RegisterHotkeys(mgr *hotkey.Manager, startCombo, stopCombo string) error {
	if err := mgr.Register("voice_start", startCombo, v.Trigger); err != nil {
		return err
	}
	return mgr.Register("voice_stop", stopCombo, v.stopManually)
}

// Status returns the most recent recording/transcription outcome.
func (v *VoiceUnit) Status() Status {
	return v.lastStatus.Load().(Status)
}

func (v *VoiceUnit) stopManually() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.recording && v.manualCh != nil {
		select {
		case v.manualCh <- struct{}{}:
		default:
		}
	}
}

// Trigger starts a recording if one isn't already in progress; it is safe to
// call from a hot-key handler goroutine.
func (v *VoiceUnit) Trigger() {
	v.mu.Lock()
	if v.recording {
		v.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	v.recording = true
	v.cancel = cancel
	v.manualCh = make(chan struct{}, 1)
	manualCh := v.manualCh
	v.mu.Unlock()

	v.lastStatus.Store(Status{Recording: true})

	hwnd, title := v.focus.Save()
	logging.Get(logging.CategoryAudio).Info("voice hot-key: recording (foreground=%q)", title)

	manualStop := func() bool {
		select {
		case <-manualCh:
			return true
		default:
			return false
		}
	}

	samples, reason, err := RecordUntilSilence(ctx, v.cap, SourceMic, manualStop, v.killed)

	v.mu.Lock()
	v.recording = false
	v.cancel = nil
	v.mu.Unlock()
	cancel()

	if err != nil {
		v.lastStatus.Store(Status{StopReason: reason, Error: err.Error()})
		logging.Get(logging.CategoryAudio).Error("voice hot-key capture failed: %v", err)
		return
	}
	if reason == StopKilled {
		v.lastStatus.Store(Status{StopReason: reason})
		return
	}

	dir, err := Dir(v.audio)
	if err != nil {
		v.lastStatus.Store(Status{StopReason: reason, Error: err.Error()})
		return
	}
	path := filename(dir, "hotkey", time.Now())
	if err := WriteWAV(path, samples); err != nil {
		v.lastStatus.Store(Status{StopReason: reason, Error: err.Error()})
		return
	}

	result, err := v.trans.Transcribe(context.Background(), path, v.model, "")
	if err != nil {
		v.lastStatus.Store(Status{StopReason: reason, Error: fmt.Sprintf("transcription failed: %v", err)})
		return
	}

	v.focus.Restore()
	if v.input != nil && result.Text != "" {
		if _, err := v.input.TypeByName(hwnd, title, "", result.Text); err != nil {
			logging.Get(logging.CategoryAudio).Warn("voice hot-key type-into-window failed: %v", err)
			v.lastStatus.Store(Status{StopReason: reason, Text: result.Text, Error: err.Error()})
			return
		}
	}

	v.lastStatus.Store(Status{StopReason: reason, Text: result.Text})
}
