package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func feedSequence(a *Adaptive, times int) {
	for i := 0; i < times; i++ {
		a.Feed(Action{Tool: "click", Key: "Notepad"})
		a.Feed(Action{Tool: "type_text", Key: "Notepad"})
	}
}

func TestDetectFindsRepeatedSequence(t *testing.T) {
	a := NewAdaptive()
	feedSequence(a, 3)

	patterns := a.Detect()
	require.NotEmpty(t, patterns)
	found := false
	for _, p := range patterns {
		if len(p.Sequence) == 2 && p.Sequence[0].Tool == "click" && p.Sequence[1].Tool == "type_text" {
			found = true
			require.GreaterOrEqual(t, p.Occurrences, 3)
		}
	}
	require.True(t, found)
}

func TestDetectExcludesTrivialRepeats(t *testing.T) {
	a := NewAdaptive()
	for i := 0; i < 5; i++ {
		a.Feed(Action{Tool: "click", Key: "OK"})
	}
	patterns := a.Detect()
	for _, p := range patterns {
		require.False(t, isTrivial(p.Sequence))
	}
}

func TestDismissSuppressesPattern(t *testing.T) {
	a := NewAdaptive()
	feedSequence(a, 3)
	patterns := a.Detect()
	require.NotEmpty(t, patterns)

	a.Dismiss(patterns[0].Sequence)
	after := a.Detect()
	for _, p := range after {
		require.NotEqual(t, patternKey(patterns[0].Sequence), patternKey(p.Sequence))
	}
}

func TestAcceptUnknownPatternErrors(t *testing.T) {
	a := NewAdaptive()
	err := a.Accept([]Action{{Tool: "click", Key: "x"}, {Tool: "type_text", Key: "x"}})
	require.Error(t, err)
}

func TestFeedBufferBounded(t *testing.T) {
	a := NewAdaptive()
	for i := 0; i < maxActionBuffer+50; i++ {
		a.Feed(Action{Tool: "click", Key: "x"})
	}
	require.Len(t, a.buffer, maxActionBuffer)
}
