package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordStopRun(t *testing.T) {
	r, err := NewRecorder(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, r.StartRecording("greet"))
	require.True(t, r.IsRecording())

	r.RecordStep("click", map[string]any{"name": "OK"})
	r.RecordStep("workflow_record", map[string]any{}) // meta-tool, should be skipped
	r.RecordStep("type_text", map[string]any{"text": "hi"})

	name, count, err := r.StopRecording()
	require.NoError(t, err)
	require.Equal(t, "greet", name)
	require.Equal(t, 2, count)
	require.False(t, r.IsRecording())

	var executed []string
	result, err := r.Run("greet", func(tool string, params map[string]any) (bool, string, error) {
		executed = append(executed, tool)
		return true, "", nil
	}, func() bool { return false })

	require.NoError(t, err)
	require.Equal(t, 2, result.ExecutedUpTo)
	require.False(t, result.Stopped)
	require.Equal(t, []string{"click", "type_text"}, executed)
}

func TestStartRecordingTwiceFails(t *testing.T) {
	r, err := NewRecorder(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, r.StartRecording("a"))
	require.Error(t, r.StartRecording("b"))
}

func TestRunStopsAtFirstBlockedStep(t *testing.T) {
	r, err := NewRecorder(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, r.StartRecording("blocked"))
	r.RecordStep("click", nil)
	r.RecordStep("run_command", nil)
	r.RecordStep("type_text", nil)
	_, _, err = r.StopRecording()
	require.NoError(t, err)

	result, err := r.Run("blocked", func(tool string, params map[string]any) (bool, string, error) {
		if tool == "run_command" {
			return false, "blocked command", nil
		}
		return true, "", nil
	}, func() bool { return false })

	require.NoError(t, err)
	require.Equal(t, 1, result.ExecutedUpTo)
	require.True(t, result.Stopped)
	require.Equal(t, "blocked command", result.StopReason)
}

func TestRunStopsWhenKilled(t *testing.T) {
	r, err := NewRecorder(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, r.StartRecording("w"))
	r.RecordStep("click", nil)
	_, _, err = r.StopRecording()
	require.NoError(t, err)

	result, err := r.Run("w", func(string, map[string]any) (bool, string, error) {
		return true, "", nil
	}, func() bool { return true })

	require.NoError(t, err)
	require.True(t, result.Stopped)
	require.Equal(t, 0, result.ExecutedUpTo)
}

func TestClampDelay(t *testing.T) {
	require.Equal(t, minStepDelayMs, int(clampDelay(1).Milliseconds()))
	require.Equal(t, maxStepDelayMs, int(clampDelay(999999).Milliseconds()))
}
