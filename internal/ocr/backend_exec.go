package ocr

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"os/exec"
)

// execBackend shells out to an external OCR binary that reads a JPEG on
// stdin and writes newline-delimited JSON word records (text, x, y, w, h,
// confidence) on stdout. There is no OCR binding library anywhere in the
// example corpus, so both backends in this engine are exec-based rather
// than built on a Go OCR package — documented in DESIGN.md.
type execBackend struct {
	name      string
	binary    string
	languages map[string]bool
}

// NewNativeBackend wraps a bundled native-OS OCR helper binary (expected to
// be installed alongside the engine) as the primary OCR backend.
func NewNativeBackend(binaryPath string, languages ...string) Backend {
	return newExecBackend("native", binaryPath, languages)
}

// NewTesseractBackend wraps a system `tesseract` install as the fallback
// OCR backend.
func NewTesseractBackend(binaryPath string, languages ...string) Backend {
	return newExecBackend("tesseract", binaryPath, languages)
}

func newExecBackend(name, binary string, languages []string) Backend {
	set := make(map[string]bool, len(languages))
	for _, l := range languages {
		set[l] = true
	}
	return &execBackend{name: name, binary: binary, languages: set}
}

func (b *execBackend) Name() string { return b.name }

func (b *execBackend) SupportsLanguage(language string) bool {
	if len(b.languages) == 0 {
		return true
	}
	return b.languages[language]
}

func (b *execBackend) Recognize(imageBase64, language string) (string, []Word, error) {
	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return "", nil, err
	}

	if _, err := exec.LookPath(b.binary); err != nil {
		return "", nil, err
	}

	cmd := exec.Command(b.binary, "--lang", language)
	cmd.Stdin = bytes.NewReader(data)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return "", nil, err
	}

	return parseWordRecords(out.Bytes())
}

// wordRecord is the JSON-lines shape an OCR helper binary emits per word.
type wordRecord struct {
	Text       string  `json:"text"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	W          int     `json:"w"`
	H          int     `json:"h"`
	Confidence float64 `json:"confidence"`
}

func parseWordRecords(raw []byte) (string, []Word, error) {
	var words []Word
	var textBuf bytes.Buffer

	dec := json.NewDecoder(bytes.NewReader(raw))
	for dec.More() {
		var rec wordRecord
		if err := dec.Decode(&rec); err != nil {
			break
		}
		words = append(words, Word{Text: rec.Text, X: rec.X, Y: rec.Y, W: rec.W, H: rec.H, Confidence: rec.Confidence})
		if textBuf.Len() > 0 {
			textBuf.WriteByte(' ')
		}
		textBuf.WriteString(rec.Text)
	}
	return textBuf.String(), words, nil
}

// discoverHelperPath looks for an OCR helper binary alongside the running
// executable, falling back to PATH lookup.
func discoverHelperPath(name string) string {
	if exePath, err := os.Executable(); err == nil {
		candidate := exePath + "-" + name
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return name
}
