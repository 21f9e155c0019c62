package safety

import (
	"testing"

	"github.com/stretchr/testify/require"

	"warden/internal/config"
	"warden/internal/logging"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	require.NoError(t, logging.InitAudit(t.TempDir()))
	t.Cleanup(logging.CloseAudit)
	cfg := config.DefaultConfig()
	cfg.Security.ConfirmationMode = config.ModeAutonomous
	return New(cfg)
}

func TestApproveKillSwitch(t *testing.T) {
	e := newTestEngine(t)
	e.Kill()
	res := e.Approve("click", "click", nil)
	require.False(t, res.Approved)
	require.Equal(t, "killed", res.ResultClass)

	e.Reset()
	res = e.Approve("click", "click", nil)
	require.True(t, res.Approved)
}

func TestApproveBlockedApp(t *testing.T) {
	e := newTestEngine(t)
	res := e.Approve("window_focus", "focus", map[string]any{"window_title": "Chase Online Banking"})
	require.False(t, res.Approved)
	require.Equal(t, "blocked", res.ResultClass)
}

func TestApproveBlockedCommand(t *testing.T) {
	e := newTestEngine(t)
	res := e.Approve("run_command", "exec", map[string]any{"command": "rm -rf /tmp"})
	require.False(t, res.Approved)
	require.Equal(t, "blocked", res.ResultClass)
}

func TestApproveRateLimit(t *testing.T) {
	e := newTestEngine(t)
	e.cfg.Security.MaxActionsPerMinute = 2

	require.True(t, e.Approve("click", "click", nil).Approved)
	require.True(t, e.Approve("click", "click", nil).Approved)
	res := e.Approve("click", "click", nil)
	require.False(t, res.Approved)
	require.Equal(t, "blocked", res.ResultClass)
}

func TestApproveBlockMode(t *testing.T) {
	e := newTestEngine(t)
	e.cfg.Security.ConfirmationMode = config.ModeBlock
	res := e.Approve("click", "click", nil)
	require.False(t, res.Approved)
	require.Equal(t, "blocked", res.ResultClass)
}

func TestApproveSensitiveMode(t *testing.T) {
	e := newTestEngine(t)
	e.cfg.Security.ConfirmationMode = config.ModeSensitive
	res := e.Approve("run_command", "exec", map[string]any{"command": "echo hi"})
	require.True(t, res.Approved)
	require.Contains(t, res.Reason, "confirmation mode")
}

func TestActionsThisMinute(t *testing.T) {
	e := newTestEngine(t)
	require.Equal(t, 0, e.ActionsThisMinute())
	e.Approve("click", "click", nil)
	require.Equal(t, 1, e.ActionsThisMinute())
}
