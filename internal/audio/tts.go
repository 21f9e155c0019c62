package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"warden/internal/logging"
)

// spanishWords is a small lexicon used to guess Spanish vs. English when no
// language is given, mirroring the heuristic the original voice tools used
// rather than pulling in a full language-detection library for two
// supported languages.
var spanishWords = map[string]bool{
	"que": true, "como": true, "para": true, "pero": true, "hola": true,
	"gracias": true, "por": true, "favor": true, "bien": true, "esta": true,
	"este": true, "esto": true, "son": true, "los": true, "las": true,
	"una": true, "uno": true, "del": true, "con": true, "sin": true,
	"mas": true, "tiene": true, "puede": true, "quiero": true,
	"necesito": true, "donde": true, "cuando": true, "porque": true,
	"ahora": true, "aqui": true, "todo": true, "nada": true, "muy": true,
	"algo": true, "tambien": true, "siempre": true, "nunca": true,
	"bueno": true, "malo": true, "hacer": true, "saber": true, "soy": true,
	"eres": true, "somos": true, "tengo": true, "vamos": true, "mira": true,
	"dime": true,
}

// DetectLanguage guesses "es" or "en" from the fraction of recognized
// Spanish words in text, defaulting to English when no lexicon words match.
func DetectLanguage(text string) string {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return "en"
	}
	hits := 0
	for _, w := range words {
		w = strings.Trim(w, ".,!?¿¡")
		if spanishWords[w] {
			hits++
		}
	}
	if float64(hits)/float64(len(words)) > 0.15 {
		return "es"
	}
	return "en"
}

// edgeVoices maps a detected language to a default online neural voice.
var edgeVoices = map[string]string{
	"es": "es-MX-DaliaNeural",
	"en": "en-US-JennyNeural",
}

// Speaker synthesizes text to speech and plays it back.
type Speaker interface {
	Speak(ctx context.Context, text, voice string, rate float64) error
}

// Player plays back an audio file through the OS media layer.
type Player interface {
	Play(ctx context.Context, path string) error
}

// TTS is the Speak component: an online neural-voice engine tried first,
// falling back to an offline synthesizer when synthesis fails (no network,
// missing CLI, etc). Both engines are exec-based — there is no TTS binding
// library in the example corpus, and the primary engine talks to a cloud
// service the corpus has no Go client for either.
type TTS struct {
	dir     string
	online  ttsBackend
	offline ttsBackend
	player  Player
}

type ttsBackend interface {
	synthesize(ctx context.Context, text, voice string, rate float64, outPath string) error
}

// NewTTS builds a TTS engine. onlineBinary/offlineBinary name the helper
// CLIs; either may be empty to disable that path.
func NewTTS(dir, onlineBinary, offlineBinary string, player Player) *TTS {
	t := &TTS{dir: dir, player: player}
	if onlineBinary != "" {
		t.online = &execTTSBackend{binary: onlineBinary, format: "mp3"}
	}
	if offlineBinary != "" {
		t.offline = &execTTSBackend{binary: offlineBinary, format: "wav"}
	}
	return t
}

// Speak synthesizes text and plays it back, trying the online engine first.
func (t *TTS) Speak(ctx context.Context, text, voice string, rate float64) error {
	if voice == "" {
		lang := DetectLanguage(text)
		voice = edgeVoices[lang]
	}

	outPath, err := t.synthesizeFirstAvailable(ctx, text, voice, rate)
	if err != nil {
		return err
	}
	if t.player == nil {
		return fmt.Errorf("no audio player configured")
	}
	return t.player.Play(ctx, outPath)
}

func (t *TTS) synthesizeFirstAvailable(ctx context.Context, text, voice string, rate float64) (string, error) {
	log := logging.Get(logging.CategoryAudio)
	if t.online != nil {
		out := filepath.Join(t.dir, "speak_"+time.Now().Format("20060102_150405")+".mp3")
		if err := t.online.synthesize(ctx, text, voice, rate, out); err == nil {
			return out, nil
		} else {
			log.Warn("online TTS failed, falling back to offline: %v", err)
		}
	}
	if t.offline == nil {
		return "", fmt.Errorf("no TTS engine available")
	}
	out := filepath.Join(t.dir, "speak_"+time.Now().Format("20060102_150405")+".wav")
	if err := t.offline.synthesize(ctx, text, voice, rate, out); err != nil {
		return "", fmt.Errorf("offline TTS failed: %w", err)
	}
	return out, nil
}

// execTTSBackend shells out to a synthesis helper binary that writes audio
// of the given format to --out.
type execTTSBackend struct {
	binary string
	format string
}

func (b *execTTSBackend) synthesize(ctx context.Context, text, voice string, rate float64, outPath string) error {
	if _, err := exec.LookPath(b.binary); err != nil {
		return fmt.Errorf("tts helper %q not found: %w", b.binary, err)
	}
	args := []string{"--text", text, "--out", outPath, "--rate", fmt.Sprintf("%.2f", rate)}
	if voice != "" {
		args = append(args, "--voice", voice)
	}
	cmd := exec.CommandContext(ctx, b.binary, args...)
	var errOut bytes.Buffer
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, errOut.String())
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("tts helper produced no output: %w", err)
	}
	return nil
}
