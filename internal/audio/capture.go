package audio

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"warden/internal/logging"
)

// Source selects which device a Capturer records from.
type Source string

const (
	SourceMic    Source = "mic"
	SourceSystem Source = "system" // WASAPI loopback: what you hear
)

// Capturer streams or records PCM audio. There is no audio capture library
// anywhere in the example corpus, so it is backed by a bundled helper binary
// that writes raw little-endian 16-bit PCM to stdout, the same exec-backend
// approach the OCR engine uses for its native and fallback backends.
type Capturer interface {
	// Stream starts the helper binary and delivers chunkSamples-sized PCM
	// chunks on the returned channel until ctx is canceled or the helper
	// exits. The error channel carries at most one error before closing.
	Stream(ctx context.Context, source Source, chunkSamples int) (<-chan []int16, <-chan error, error)
}

// execCapturer shells out to a bundled capture helper.
type execCapturer struct {
	binary string
}

// NewCapturer wraps a capture helper binary, resolved through PATH (or used
// as given when binaryPath contains a path separator).
func NewCapturer(binaryPath string) Capturer {
	return &execCapturer{binary: binaryPath}
}

func (c *execCapturer) Stream(ctx context.Context, source Source, chunkSamples int) (<-chan []int16, <-chan error, error) {
	if _, err := exec.LookPath(c.binary); err != nil {
		return nil, nil, fmt.Errorf("capture helper %q not found: %w", c.binary, err)
	}

	cmd := exec.CommandContext(ctx, c.binary, "--source", string(source), "--rate", fmt.Sprint(sampleRate))
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	chunks := make(chan []int16)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)
		defer cmd.Wait()

		r := bufio.NewReaderSize(stdout, chunkSamples*2)
		frame := make([]byte, chunkSamples*2)
		for {
			if ctx.Err() != nil {
				return
			}
			if _, err := io.ReadFull(r, frame); err != nil {
				if err != io.EOF && err != io.ErrUnexpectedEOF {
					errs <- err
				}
				return
			}
			samples := make([]int16, chunkSamples)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(frame[i*2 : i*2+2]))
			}
			select {
			case chunks <- samples:
			case <-ctx.Done():
				return
			}
		}
	}()

	return chunks, errs, nil
}

// WriteWAV encodes mono 16-bit PCM samples to a WAV file at path.
func WriteWAV(path string, samples []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// CaptureClip records a single bounded clip from source and writes it as a
// WAV file under dir, returning the file path.
func CaptureClip(ctx context.Context, cap Capturer, dir string, source Source, seconds int) (string, error) {
	seconds = clampDuration(seconds)
	CleanupOld(dir)

	chunks, errs, err := cap.Stream(ctx, source, chunkSamples)
	if err != nil {
		return "", err
	}

	wanted := seconds * 2 // number of 0.5s chunks
	var samples []int16
collect:
	for i := 0; i < wanted; i++ {
		select {
		case c, ok := <-chunks:
			if !ok {
				break collect
			}
			samples = append(samples, c...)
		case err := <-errs:
			if err != nil {
				return "", fmt.Errorf("capture %s: %w", source, err)
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	path := filename(dir, string(source), time.Now())
	if err := WriteWAV(path, samples); err != nil {
		return "", err
	}
	logging.Get(logging.CategoryAudio).Info("captured %s audio: %s (%d samples)", source, path, len(samples))
	return path, nil
}
