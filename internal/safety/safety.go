// Package safety implements the Safety Engine: the single gate every tool
// invocation passes through before it is allowed to run. Kill switch, app
// and command blocklists, rate limiting, and confirmation-mode policy all
// live here; nothing downstream re-checks them.
package safety

import (
	"strings"
	"sync"
	"time"

	"warden/internal/config"
	"warden/internal/logging"
)

// Result is the outcome of an approval check.
type Result struct {
	Approved    bool
	ResultClass string // success, blocked, killed, denied
	Reason      string
}

var sensitiveTools = map[string]bool{
	"run_command":      true,
	"open_application": true,
	"manage_window":    true,
	"type_text":        true,
	"clipboard_write":  true,
	"run_app_script":   true,
	"schedule_task":    true,
	"watch_folder":     true,
	"workflow_run":     true,
}

var sensitiveActionWords = []string{
	"close", "delete", "remove", "kill", "terminate", "write", "paste", "send",
}

// Engine is the Safety Engine. One value owns the kill switch, the rate
// limiter, and the blocklists for the lifetime of the process.
type Engine struct {
	cfg *config.Config

	killMu sync.RWMutex
	killed bool

	rateMu     sync.Mutex
	timestamps []time.Time
}

// New builds a Safety Engine over cfg. cfg is read on every check, so
// updates to the live config take effect without restarting the engine.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Kill activates the kill switch. Every subsequent Approve call is denied
// until Reset is called.
func (e *Engine) Kill() {
	e.killMu.Lock()
	e.killed = true
	e.killMu.Unlock()
	logging.Get(logging.CategorySafety).Warn("kill switch activated")
	logging.Audit(logging.AuditEvent{EventType: logging.AuditKillActivate, ResultClass: "killed"})
}

// Reset clears the kill switch, allowing automation to resume.
func (e *Engine) Reset() {
	e.killMu.Lock()
	e.killed = false
	e.killMu.Unlock()
	logging.Get(logging.CategorySafety).Info("kill switch reset")
	logging.Audit(logging.AuditEvent{EventType: logging.AuditKillReset, ResultClass: "success"})
}

// IsKilled reports whether the kill switch is currently active.
func (e *Engine) IsKilled() bool {
	e.killMu.RLock()
	defer e.killMu.RUnlock()
	return e.killed
}

// Approve decides whether tool/action with params may proceed. Check order:
// kill switch, blocked app, blocked command, rate limit, confirmation mode.
func (e *Engine) Approve(tool, action string, params map[string]any) Result {
	if e.IsKilled() {
		return e.deny(tool, action, params, logging.AuditKilled, "killed",
			"kill switch is active; reset it to resume")
	}

	if app := e.blockedApp(action, params); app != "" {
		return e.deny(tool, action, params, logging.AuditBlocked, "blocked",
			"blocked: '"+app+"' is a protected application")
	}

	if cmd := e.blockedCommand(params); cmd != "" {
		return e.deny(tool, action, params, logging.AuditBlocked, "blocked",
			"blocked: '"+cmd+"' is a destructive command")
	}

	if !e.checkRateLimit() {
		return e.deny(tool, action, params, logging.AuditBlocked, "blocked",
			"rate limit exceeded")
	}

	mode := e.cfg.Security.ConfirmationMode
	if mode == config.ModeBlock {
		return e.deny(tool, action, params, logging.AuditBlocked, "blocked",
			"block mode active; all automation is disabled")
	}

	needsConfirm := mode == config.ModeAll ||
		(mode == config.ModeSensitive && isSensitive(tool, action))

	e.recordTimestamp()
	reason := "approved"
	if needsConfirm {
		reason = "confirmation mode '" + string(mode) + "'; action surfaced to caller"
	}
	logging.Audit(logging.AuditEvent{
		EventType: logging.AuditApproved, Tool: tool, Action: action,
		Params: redactBinary(params), Approved: true, ResultClass: "success", Reason: reason,
	})
	return Result{Approved: true, ResultClass: "success", Reason: reason}
}

func (e *Engine) deny(tool, action string, params map[string]any, evt logging.AuditEventType, class, reason string) Result {
	logging.Audit(logging.AuditEvent{
		EventType: evt, Tool: tool, Action: action,
		Params: redactBinary(params), Approved: false, ResultClass: class, Reason: reason,
	})
	logging.Get(logging.CategorySafety).Warn("%s: %s.%s — %s", class, tool, action, reason)
	return Result{Approved: false, ResultClass: class, Reason: reason}
}

func (e *Engine) blockedApp(action string, params map[string]any) string {
	values := []string{strings.ToLower(action)}
	for _, key := range []string{"window_title", "app_name", "process_name", "title", "name"} {
		if v, ok := params[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				values = append(values, strings.ToLower(s))
			}
		}
	}

	for _, v := range values {
		for _, blocked := range e.cfg.Security.BlockedApplications {
			if strings.Contains(v, strings.ToLower(blocked)) {
				return blocked
			}
		}
	}
	return ""
}

func (e *Engine) blockedCommand(params map[string]any) string {
	cmd, _ := params["command"].(string)
	if cmd == "" {
		return ""
	}
	cmdLower := strings.ToLower(strings.TrimSpace(cmd))
	for _, blocked := range e.cfg.Security.BlockedCommandPatterns {
		if strings.Contains(cmdLower, strings.ToLower(blocked)) {
			return blocked
		}
	}
	return ""
}

func isSensitive(tool, action string) bool {
	if sensitiveTools[tool] {
		return true
	}
	actionLower := strings.ToLower(action)
	for _, word := range sensitiveActionWords {
		if strings.Contains(actionLower, word) {
			return true
		}
	}
	return false
}

func (e *Engine) checkRateLimit() bool {
	now := time.Now()
	window := 60 * time.Second

	e.rateMu.Lock()
	defer e.rateMu.Unlock()

	kept := e.timestamps[:0]
	for _, t := range e.timestamps {
		if now.Sub(t) < window {
			kept = append(kept, t)
		}
	}
	e.timestamps = kept
	return len(e.timestamps) < e.cfg.Security.MaxActionsPerMinute
}

func (e *Engine) recordTimestamp() {
	e.rateMu.Lock()
	e.timestamps = append(e.timestamps, time.Now())
	e.rateMu.Unlock()
}

// ActionsThisMinute returns the number of approved actions in the trailing
// 60-second window, for diagnostics reporting.
func (e *Engine) ActionsThisMinute() int {
	now := time.Now()
	e.rateMu.Lock()
	defer e.rateMu.Unlock()
	count := 0
	for _, t := range e.timestamps {
		if now.Sub(t) < 60*time.Second {
			count++
		}
	}
	return count
}

func redactBinary(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		if k == "screenshot_data" || k == "image_data" {
			continue
		}
		out[k] = v
	}
	return out
}
