package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"warden/internal/audio"
	"warden/internal/tools"
)

// listenWait bounds how long listen_for_command and speak_and_listen wait
// for a full record-until-silence cycle.
const listenWait = 45 * time.Second

func registerAudioTools(reg *tools.Registry, d Deps) error {
	if d.AudioCapturer != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "audio_capture",
			Description: "Record a fixed-length clip from the microphone or system loopback and save it as a WAV file.",
			Category:    tools.CategoryAudio,
			Schema: tools.Schema{
				Properties: map[string]tools.Property{
					"source":  {Type: "string", Enum: []any{"mic", "system"}, Default: "mic"},
					"seconds": {Type: "integer", Default: 10},
				},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				source := audio.Source(paramString(args, "source", string(audio.SourceMic)))
				path, err := audio.CaptureClip(ctx, d.AudioCapturer, d.AudioDir, source, paramInt(args, "seconds", 10))
				if err != nil {
					return nil, err
				}
				return jsonItem(map[string]any{"path": path})
			},
		}); err != nil {
			return err
		}
	}

	if d.Transcriber != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "transcribe",
			Description: "Transcribe a WAV file with the whisper-style transcription backend.",
			Category:    tools.CategoryAudio,
			Schema: tools.Schema{
				Required: []string{"path"},
				Properties: map[string]tools.Property{
					"path":     {Type: "string"},
					"model":    {Type: "string", Default: "base"},
					"language": {Type: "string", Description: "ISO language code; omit to auto-detect."},
				},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				model := paramString(args, "model", "base")
				result, err := d.Transcriber.Transcribe(ctx, paramString(args, "path", ""), model, paramString(args, "language", ""))
				if err != nil {
					return nil, err
				}
				return jsonItem(result)
			},
		}); err != nil {
			return err
		}

		if err := reg.Register(&tools.Tool{
			Name:        "whisper_model_download",
			Description: "Pre-download a whisper transcription model so later calls skip the load penalty.",
			Category:    tools.CategoryAudio,
			Schema: tools.Schema{
				Required:   []string{"model"},
				Properties: map[string]tools.Property{"model": {Type: "string", Enum: []any{"tiny", "base", "small", "medium"}}},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				if err := audio.DownloadModel(ctx, d.WhisperHelperBin, paramString(args, "model", "")); err != nil {
					return nil, err
				}
				return jsonItem(map[string]any{"downloaded": paramString(args, "model", "")})
			},
		}); err != nil {
			return err
		}
	}

	if d.AudioCapturer != nil && d.Transcriber != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "listen_for_command",
			Description: "Record from the microphone until trailing silence (or up to 30s), then transcribe the result.",
			Category:    tools.CategoryAudio,
			Schema: tools.Schema{
				Properties: map[string]tools.Property{"model": {Type: "string", Default: "base"}},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				ctx, cancel := context.WithTimeout(ctx, listenWait)
				defer cancel()
				samples, reason, err := audio.RecordUntilSilence(ctx, d.AudioCapturer, audio.SourceMic, nil, nil)
				if err != nil {
					return nil, err
				}
				path := filepath.Join(d.AudioDir, fmt.Sprintf("command-%d.wav", time.Now().UnixNano()))
				if err := audio.WriteWAV(path, samples); err != nil {
					return nil, err
				}
				result, err := d.Transcriber.Transcribe(ctx, path, paramString(args, "model", "base"), "")
				if err != nil {
					return nil, err
				}
				return jsonItem(map[string]any{"stop_reason": reason, "transcription": result})
			},
		}); err != nil {
			return err
		}
	}

	if d.TTS != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "speak",
			Description: "Synthesize and play text, auto-detecting Spanish vs English unless a voice is given.",
			Category:    tools.CategoryAudio,
			Schema: tools.Schema{
				Required: []string{"text"},
				Properties: map[string]tools.Property{
					"text":  {Type: "string"},
					"voice": {Type: "string"},
					"rate":  {Type: "number", Default: 1.0},
				},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				rate := paramFloat(args, "rate", 1.0)
				if err := d.TTS.Speak(ctx, paramString(args, "text", ""), paramString(args, "voice", ""), rate); err != nil {
					return nil, err
				}
				return jsonItem(map[string]any{"spoken": true})
			},
		}); err != nil {
			return err
		}
	}

	if d.TTS != nil && d.AudioCapturer != nil && d.Transcriber != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "speak_and_listen",
			Description: "Speak a prompt, then record and transcribe the spoken reply.",
			Category:    tools.CategoryAudio,
			Schema: tools.Schema{
				Required:   []string{"prompt"},
				Properties: map[string]tools.Property{"prompt": {Type: "string"}, "model": {Type: "string", Default: "base"}},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				if err := d.TTS.Speak(ctx, paramString(args, "prompt", ""), "", 1.0); err != nil {
					return nil, err
				}
				ctx, cancel := context.WithTimeout(ctx, listenWait)
				defer cancel()
				samples, reason, err := audio.RecordUntilSilence(ctx, d.AudioCapturer, audio.SourceMic, nil, nil)
				if err != nil {
					return nil, err
				}
				path := filepath.Join(d.AudioDir, fmt.Sprintf("reply-%d.wav", time.Now().UnixNano()))
				if err := audio.WriteWAV(path, samples); err != nil {
					return nil, err
				}
				result, err := d.Transcriber.Transcribe(ctx, path, paramString(args, "model", "base"), "")
				if err != nil {
					return nil, err
				}
				return jsonItem(map[string]any{"stop_reason": reason, "transcription": result})
			},
		}); err != nil {
			return err
		}
	}

	if d.VoiceUnit != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "voice_hot_key_status",
			Description: "Report whether the voice hot-key unit is currently recording, and its most recent outcome.",
			Category:    tools.CategoryAudio,
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				return jsonItem(d.VoiceUnit.Status())
			},
		}); err != nil {
			return err
		}
	}

	return nil
}
