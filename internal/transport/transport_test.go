package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubResponse struct {
	Tool string `json:"tool"`
}

func TestLoopDispatchesEachLine(t *testing.T) {
	in := strings.NewReader(`{"id":"1","tool":"ping","params":{}}` + "\n" + `{"id":"2","tool":"pong","params":{}}` + "\n")
	var out bytes.Buffer

	var mu sync.Mutex
	var calls []string
	fn := func(ctx context.Context, tool string, params map[string]any) Response {
		mu.Lock()
		calls = append(calls, tool)
		mu.Unlock()
		return stubResponse{Tool: tool}
	}

	loop := New(in, &out, fn)
	require.NoError(t, loop.Run(context.Background()))

	require.ElementsMatch(t, []string{"ping", "pong"}, calls)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(line), &env))
		require.NotEmpty(t, env.ID)
	}
}

func TestLoopReportsMalformedLine(t *testing.T) {
	in := strings.NewReader("not json\n")
	var out bytes.Buffer
	fn := func(ctx context.Context, tool string, params map[string]any) Response { return nil }

	loop := New(in, &out, fn)
	require.NoError(t, loop.Run(context.Background()))

	require.Contains(t, out.String(), "malformed request")
}

func TestLoopSkipsBlankLines(t *testing.T) {
	in := strings.NewReader("\n\n" + `{"id":"1","tool":"noop","params":{}}` + "\n")
	var out bytes.Buffer
	calls := 0
	fn := func(ctx context.Context, tool string, params map[string]any) Response {
		calls++
		return nil
	}

	loop := New(in, &out, fn)
	require.NoError(t, loop.Run(context.Background()))
	require.Equal(t, 1, calls)
}

