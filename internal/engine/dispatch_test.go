package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"warden/internal/background"
	"warden/internal/config"
	"warden/internal/focus"
	"warden/internal/logging"
	"warden/internal/memory"
	"warden/internal/redact"
	"warden/internal/safety"
	"warden/internal/tools"
	"warden/internal/window"
)

type fakeWindowSystem struct{ windows []window.Info }

func (f *fakeWindowSystem) ListWindows() []window.Info          { return f.windows }
func (f *fakeWindowSystem) Apply(uintptr, window.Action) error  { return nil }
func (f *fakeWindowSystem) Move(uintptr, int, int, int, int) error { return nil }

type fakeLister struct{}

func (fakeLister) ListMonitors() []background.Monitor {
	return []background.Monitor{{Rect: background.Rect{X: 0, Y: 0, W: 1920, H: 1080}, Primary: true}}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	require.NoError(t, logging.InitAudit(t.TempDir()))
	t.Cleanup(logging.CloseAudit)

	cfg := config.DefaultConfig()
	cfg.Security.ConfirmationMode = config.ModeAutonomous

	reg := tools.NewRegistry()
	reg.MustRegister(&tools.Tool{
		Name: "type_text", Category: tools.CategoryInput,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return []tools.ContentItem{tools.TextItem("typed: " + args["text"].(string))}, nil
		},
		Schema: tools.Schema{Required: []string{"text"}},
	})
	reg.MustRegister(&tools.Tool{
		Name: "panicky", Category: tools.CategoryInput,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			panic("boom")
		},
	})

	wm := window.New(&fakeWindowSystem{}, focus.New())

	return &Engine{
		Registry:   reg,
		Safety:     safety.New(cfg),
		Redactor:   redact.New(cfg),
		Focus:      focus.New(),
		Adaptive:   memory.NewAdaptive(),
		Background: background.New(fakeLister{}, wm),
		Windows:    wm,
		Config:     cfg,
	}
}

func TestDispatchSuccess(t *testing.T) {
	e := newTestEngine(t)
	resp := e.Dispatch(context.Background(), "type_text", map[string]any{"text": "hello"})
	require.Empty(t, resp.Error)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "typed: hello", resp.Items[0].Text)
}

func TestDispatchUnknownTool(t *testing.T) {
	e := newTestEngine(t)
	resp := e.Dispatch(context.Background(), "nope", nil)
	require.NotEmpty(t, resp.Error)
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	e := newTestEngine(t)
	resp := e.Dispatch(context.Background(), "panicky", map[string]any{})
	require.Contains(t, resp.Error, "internal fault")
}

func TestDispatchRedactsEmail(t *testing.T) {
	e := newTestEngine(t)
	e.Registry.MustRegister(&tools.Tool{
		Name: "echo_email", Category: tools.CategoryInput,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return []tools.ContentItem{tools.TextItem("contact me at jane@example.com")}, nil
		},
	})
	resp := e.Dispatch(context.Background(), "echo_email", map[string]any{})
	require.Contains(t, resp.Items[0].Text, "[EMAIL-REDACTED]")
}

func TestDispatchBlockModeDeniesEverything(t *testing.T) {
	e := newTestEngine(t)
	e.Config.Security.ConfirmationMode = config.ModeBlock
	resp := e.Dispatch(context.Background(), "type_text", map[string]any{"text": "hi"})
	require.Contains(t, resp.Error, "block mode")
}

func TestDispatchBypassSafetySurvivesKillSwitch(t *testing.T) {
	e := newTestEngine(t)
	e.Registry.MustRegister(&tools.Tool{
		Name: "kill_switch_reset", Category: tools.CategoryMeta,
		Meta: true, BypassSafety: true,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			e.Safety.Reset()
			return jsonItem(map[string]any{"killed": false})
		},
	})

	e.Safety.Kill()
	resp := e.Dispatch(context.Background(), "type_text", map[string]any{"text": "hi"})
	require.NotEmpty(t, resp.Error, "kill switch should still gate ordinary tools")

	resp = e.Dispatch(context.Background(), "kill_switch_reset", nil)
	require.Empty(t, resp.Error, "a BypassSafety tool must not be denied by the kill switch it exists to clear")
	require.False(t, e.Safety.IsKilled())
}

func TestDispatchFeedsAdaptiveExcludesTrivialRepeats(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < 3; i++ {
		e.Dispatch(context.Background(), "type_text", map[string]any{"text": "hi"})
	}
	require.Empty(t, e.Adaptive.Detect())
}
