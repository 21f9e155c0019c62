// Package ocr implements the OCR Engine: a native-backend-first, external-
// binary-fallback text extraction pipeline over captured frames.
package ocr

import (
	"fmt"
	"time"

	"warden/internal/capture"
	"warden/internal/logging"
)

// Word is one recognized word with its bounding box.
type Word struct {
	Text       string
	X, Y, W, H int
	Confidence float64
}

// Result is one OCR pass's output.
type Result struct {
	Engine     string
	Text       string
	Words      []Word
	WordCount  int
	Language   string
	ElapsedMs  int64
	SourceSize [2]int
}

// Backend performs OCR over a captured frame's base64 JPEG bytes for a
// given ISO language code.
type Backend interface {
	Name() string
	Recognize(imageBase64, language string) (text string, words []Word, err error)
	SupportsLanguage(language string) bool
}

// bcp47ToISO639 maps BCP-47 language tags to the three-letter codes the
// external fallback binary (tesseract-style) expects.
var bcp47ToISO639 = map[string]string{
	"en": "eng",
	"es": "spa",
	"fr": "fra",
	"de": "deu",
	"pt": "por",
}

// Engine is the OCR Engine: native backend first, external fallback second.
type Engine struct {
	native   Backend
	external Backend
}

// New builds an OCR Engine from its two backends. Either may be nil if
// unavailable on this machine; Recognize then uses only the other.
func New(native, external Backend) *Engine {
	return &Engine{native: native, external: external}
}

// Recognize runs OCR over an already captured frame, trying the native
// backend first and falling back to the external binary
// backend on rejection or error.
func (e *Engine) Recognize(res *capture.Result, language string) (*Result, error) {
	start := time.Now()
	log := logging.Get(logging.CategoryOCR)

	if e.native != nil {
		text, words, err := e.native.Recognize(res.Base64, language)
		if err == nil {
			return e.finish(e.native.Name(), text, words, language, res, start), nil
		}
		log.Warn("native OCR backend failed, falling back: %v", err)
	}

	if e.external == nil {
		return nil, fmt.Errorf("no OCR backend available")
	}
	extLang := mapLanguage(language)
	text, words, err := e.external.Recognize(res.Base64, extLang)
	if err != nil {
		return nil, fmt.Errorf("external OCR backend failed: %w", err)
	}
	return e.finish(e.external.Name(), text, words, language, res, start), nil
}

func (e *Engine) finish(engine, text string, words []Word, language string, res *capture.Result, start time.Time) *Result {
	return &Result{
		Engine:     engine,
		Text:       text,
		Words:      words,
		WordCount:  len(words),
		Language:   language,
		ElapsedMs:  time.Since(start).Milliseconds(),
		SourceSize: [2]int{res.Width, res.Height},
	}
}

func mapLanguage(bcp47 string) string {
	if iso, ok := bcp47ToISO639[bcp47]; ok {
		return iso
	}
	return "eng"
}

// AvailableBackends reports which backends are wired and the languages each
// claims to support, for the diagnostics surface.
func (e *Engine) AvailableBackends(languages []string) map[string][]string {
	out := make(map[string][]string)
	for name, backend := range map[string]Backend{"native": e.native, "external": e.external} {
		if backend == nil {
			continue
		}
		var supported []string
		for _, lang := range languages {
			if backend.SupportsLanguage(lang) {
				supported = append(supported, lang)
			}
		}
		out[name] = supported
	}
	return out
}
