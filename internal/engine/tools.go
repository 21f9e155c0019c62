package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"warden/internal/audio"
	"warden/internal/background"
	"warden/internal/capture"
	"warden/internal/config"
	"warden/internal/devtools"
	"warden/internal/focus"
	"warden/internal/hotkey"
	"warden/internal/input"
	"warden/internal/journal"
	"warden/internal/memory"
	"warden/internal/ocr"
	"warden/internal/redact"
	"warden/internal/resolve"
	"warden/internal/safety"
	"warden/internal/sandbox"
	"warden/internal/schedule"
	"warden/internal/scraper"
	"warden/internal/system"
	"warden/internal/tools"
	"warden/internal/uia"
	"warden/internal/watch"
	"warden/internal/window"
)

// Deps bundles every subsystem RegisterAll wires into callable tools. A
// nil field simply means that group of tools is skipped, so a stripped-down
// build (no audio helpers installed, no devtools port range configured)
// can still construct a working registry.
type Deps struct {
	UIA      *uia.Accessor
	Capture  *capture.Subsystem
	OCR      *ocr.Engine
	Resolver *resolve.Resolver
	Input    *input.Dispatcher
	Windows  *window.Manager
	System   *system.Interface
	Devtools *devtools.Bridge
	Watch    *watch.Registry
	Schedule *schedule.Scheduler
	Journal  *journal.Journal
	Redact   *redact.Redactor
	Focus    *focus.Guard
	Safety   *safety.Engine
	Config   *config.Config
	Sandbox  *sandbox.Runner

	MemoryStore *memory.Store
	Workflow    *memory.Recorder
	Adaptive    *memory.Adaptive

	Background *background.Manager
	Hotkeys    *hotkey.Manager

	AudioCapturer    audio.Capturer
	Transcriber      audio.Transcriber
	TTS              *audio.TTS
	VoiceUnit        *audio.VoiceUnit
	AudioDir         string
	WhisperHelperBin string

	Scraper *scraper.Scraper
}

// RegisterAll registers every tool RegisterAll's Deps fields allow for on
// reg. Tools are grouped by the same categories §6 of the engine's
// capability listing groups them under.
func RegisterAll(reg *tools.Registry, d Deps) error {
	registerFuncs := []func(*tools.Registry, Deps) error{
		registerAccessibilityTools,
		registerInputTools,
		registerWindowTools,
		registerCaptureTools,
		registerSystemTools,
		registerSandboxTools,
		registerDevtoolsTools,
		registerAudioTools,
		registerMemoryTools,
		registerScraperTools,
		registerWatchTools,
		registerScheduleTools,
		registerMetaTools,
	}
	for _, fn := range registerFuncs {
		if err := fn(reg, d); err != nil {
			return err
		}
	}
	return nil
}

// jsonItem marshals v to a single text content item. Every tool that
// returns structured data (as opposed to an image or free-form text) goes
// through this, so the wire shape is consistent across the registry.
func jsonItem(v any) ([]tools.ContentItem, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return []tools.ContentItem{tools.TextItem(string(data))}, nil
}

func paramString(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func paramInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func paramFloat(args map[string]any, key string, def float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return def
}

func paramBool(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

func paramStringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// resolveRoot finds the window handle named by the "window" argument, or
// 0 (the whole desktop) when the argument is absent or no window matches.
// It only reads the window list; unlike Manager.Focus it never raises the
// matched window, since most callers are read-only tree/OCR lookups.
func resolveRoot(w *window.Manager, args map[string]any) uintptr {
	name := paramString(args, "window", "")
	if name == "" || w == nil {
		return 0
	}
	for _, info := range w.List() {
		if strings.Contains(strings.ToLower(info.Title), strings.ToLower(name)) {
			return info.Handle
		}
	}
	return 0
}
