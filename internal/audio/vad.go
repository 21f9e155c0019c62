package audio

import (
	"context"
	"math"
	"time"

	"warden/internal/logging"
)

// Voice-activity-detection constants, matched to the chunked record-until-
// silence behavior the voice hot-key unit requires: half-second chunks,
// two seconds of trailing silence after speech is first heard, a 30-second
// hard cap regardless of VAD state.
const (
	chunkDuration       = 500 * time.Millisecond
	chunkSamples        = sampleRate / 2
	silenceRMSThreshold = 500.0
	silenceChunksToStop = 4 // 4 * 0.5s = 2s trailing silence
	maxRecordingSeconds = 30
)

// StopReason names why a VAD recording ended.
type StopReason string

const (
	StopSilence StopReason = "silence"
	StopManual  StopReason = "manual"
	StopKilled  StopReason = "killed"
	StopMaxTime StopReason = "max_duration"
)

// rms computes the root-mean-square amplitude of a chunk of PCM samples.
func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		v := float64(s)
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

// RecordUntilSilence records from cap in 0.5s chunks, stopping when
// silenceChunksToStop consecutive chunks fall under silenceRMSThreshold
// after speech has been detected, when manualStop reports true, when
// isKilled reports true, or after maxRecordingSeconds.
//
// Kill and manual-stop are both polled between chunks, matching the same
// "check before every tick" ordering the scheduler and watcher loops use.
func RecordUntilSilence(ctx context.Context, cap Capturer, source Source, manualStop func() bool, isKilled func() bool) ([]int16, StopReason, error) {
	chunks, errs, err := cap.Stream(ctx, source, chunkSamples)
	if err != nil {
		return nil, "", err
	}

	var recorded []int16
	hasSpeech := false
	silentRun := 0
	maxChunks := maxRecordingSeconds * 2

	for i := 0; i < maxChunks; i++ {
		if isKilled != nil && isKilled() {
			return recorded, StopKilled, nil
		}
		if manualStop != nil && manualStop() {
			return recorded, StopManual, nil
		}

		select {
		case chunk, ok := <-chunks:
			if !ok {
				return recorded, StopMaxTime, nil
			}
			recorded = append(recorded, chunk...)
			level := rms(chunk)
			if level >= silenceRMSThreshold {
				hasSpeech = true
				silentRun = 0
			} else {
				silentRun++
			}
			if hasSpeech && silentRun >= silenceChunksToStop {
				logging.Get(logging.CategoryAudio).Debug("voice recording stopped on trailing silence")
				return recorded, StopSilence, nil
			}
		case err := <-errs:
			if err != nil {
				return recorded, "", err
			}
		case <-ctx.Done():
			return recorded, "", ctx.Err()
		}
	}

	return recorded, StopMaxTime, nil
}
