package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeTranscriber implements Transcriber without shelling out, for tests
// that only need to exercise the callers of the interface.
type fakeTranscriber struct {
	result *TranscribeResult
	err    error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, wavPath, modelSize, language string) (*TranscribeResult, error) {
	return f.result, f.err
}

func TestDetectLanguageEnglish(t *testing.T) {
	require.Equal(t, "en", DetectLanguage("hello there, how is it going today"))
}

func TestDetectLanguageSpanish(t *testing.T) {
	require.Equal(t, "es", DetectLanguage("hola gracias por favor quiero saber donde esta"))
}

func TestDetectLanguageEmptyDefaultsEnglish(t *testing.T) {
	require.Equal(t, "en", DetectLanguage(""))
}
