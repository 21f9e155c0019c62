package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"warden/internal/logging"
)

// modelLoadBudget is the time allowed for a first transcription call against
// a model that still needs to be fetched/converted.
const modelLoadBudget = 5 * time.Minute

// ValidModelSizes are the model sizes a caller may request.
var ValidModelSizes = []string{"tiny", "base", "small", "medium"}

// Transcriber converts a WAV file to text. There is no speech-to-text
// binding library in the example corpus, so this shells out to a bundled
// quantized-model runner binary, following the same exec-backend approach
// the OCR engine uses.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath, modelSize, language string) (*TranscribeResult, error)
}

type execTranscriber struct {
	binary string

	mu     sync.Mutex
	cached map[string]bool // model sizes confirmed present locally
}

// NewTranscriber wraps a transcription helper binary that accepts
// --model/--language flags and a WAV path, and writes a single JSON object
// with "text", "language", and "segments" fields to stdout.
func NewTranscriber(binaryPath string) Transcriber {
	return &execTranscriber{binary: binaryPath, cached: make(map[string]bool)}
}

type transcribeOutput struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

func (t *execTranscriber) Transcribe(ctx context.Context, wavPath, modelSize, language string) (*TranscribeResult, error) {
	if modelSize == "" {
		modelSize = "base"
	}
	if _, err := exec.LookPath(t.binary); err != nil {
		return nil, fmt.Errorf("transcription helper %q not found: %w", t.binary, err)
	}

	budget := modelLoadBudget
	if t.isCached(modelSize) {
		budget = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	args := []string{"--model", modelSize, "--wav", wavPath}
	if language != "" {
		args = append(args, "--language", language)
	} else {
		args = append(args, "--detect-language")
	}

	cmd := exec.CommandContext(runCtx, t.binary, args...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("transcription failed: %w: %s", err, errOut.String())
	}
	t.markCached(modelSize)

	var raw transcribeOutput
	if err := json.Unmarshal(out.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("parse transcription output: %w", err)
	}

	logging.Get(logging.CategoryAudio).Info("transcribed %s with model=%s in %s", wavPath, modelSize, time.Since(start))
	return &TranscribeResult{Text: raw.Text, Language: raw.Language, Segments: raw.Segments}, nil
}

func (t *execTranscriber) isCached(modelSize string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cached[modelSize]
}

func (t *execTranscriber) markCached(modelSize string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cached[modelSize] = true
}

// DownloadModel pre-fetches modelSize so a later Transcribe call starts
// without paying the load budget. The helper binary is invoked in
// download-only mode.
func DownloadModel(ctx context.Context, binaryPath, modelSize string) error {
	valid := false
	for _, v := range ValidModelSizes {
		if v == modelSize {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid model size %q", modelSize)
	}
	if _, err := exec.LookPath(binaryPath); err != nil {
		return fmt.Errorf("transcription helper %q not found: %w", binaryPath, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, modelLoadBudget)
	defer cancel()
	cmd := exec.CommandContext(runCtx, binaryPath, "--model", modelSize, "--download-only")
	var errOut bytes.Buffer
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("download model %s: %w: %s", modelSize, err, errOut.String())
	}
	return nil
}
