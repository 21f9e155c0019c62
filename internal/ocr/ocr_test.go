package ocr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"warden/internal/capture"
)

type fakeBackend struct {
	name string
	text string
	err  error
	langs map[string]bool
}

func (f *fakeBackend) Name() string { return f.name }
func (f *fakeBackend) SupportsLanguage(l string) bool { return f.langs == nil || f.langs[l] }
func (f *fakeBackend) Recognize(imageBase64, language string) (string, []Word, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, []Word{{Text: f.text, X: 1, Y: 2, W: 3, H: 4, Confidence: 0.9}}, nil
}

func fakeCapture() *capture.Result {
	return &capture.Result{Base64: "Zm9v", Width: 100, Height: 50, Format: "jpeg"}
}

func TestRecognizeUsesNativeWhenAvailable(t *testing.T) {
	e := New(&fakeBackend{name: "native", text: "hello"}, &fakeBackend{name: "tesseract", text: "fallback"})
	res, err := e.Recognize(fakeCapture(), "en")
	require.NoError(t, err)
	require.Equal(t, "native", res.Engine)
	require.Equal(t, "hello", res.Text)
	require.Equal(t, 1, res.WordCount)
}

func TestRecognizeFallsBackOnNativeError(t *testing.T) {
	e := New(&fakeBackend{name: "native", err: errors.New("not supported")}, &fakeBackend{name: "tesseract", text: "fallback"})
	res, err := e.Recognize(fakeCapture(), "en")
	require.NoError(t, err)
	require.Equal(t, "tesseract", res.Engine)
	require.Equal(t, "fallback", res.Text)
}

func TestRecognizeNoBackendsAvailable(t *testing.T) {
	e := New(nil, nil)
	_, err := e.Recognize(fakeCapture(), "en")
	require.Error(t, err)
}

func TestMapLanguage(t *testing.T) {
	require.Equal(t, "spa", mapLanguage("es"))
	require.Equal(t, "eng", mapLanguage("en"))
	require.Equal(t, "eng", mapLanguage("zz"))
}

func TestAvailableBackends(t *testing.T) {
	e := New(&fakeBackend{name: "native", langs: map[string]bool{"en": true}}, nil)
	backends := e.AvailableBackends([]string{"en", "es"})
	require.Equal(t, []string{"en"}, backends["native"])
	_, hasExternal := backends["external"]
	require.False(t, hasExternal)
}
