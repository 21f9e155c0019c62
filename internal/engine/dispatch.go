// Package engine wires every subsystem into one Tool Dispatcher: the
// request-gating pipeline every tool call traverses — focus save, Safety
// Engine approval, the tool body itself, output redaction, adaptive
// recording, and focus restore.
package engine

import (
	"context"
	"fmt"
	"time"

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

// Engine owns every subsystem and is the single value the Transport Loop
// dispatches tool calls through.
type Engine struct {
	Registry   *tools.Registry
	Safety     *safety.Engine
	Redactor   *redact.Redactor
	Focus      *focus.Guard
	Adaptive   *memory.Adaptive
	Workflow   *memory.Recorder
	Background *background.Manager
	Windows    *window.Manager
	Config     *config.Config
}

// Response is the JSON-serializable outcome of one dispatched tool call.
type Response struct {
	Tool  string              `json:"tool"`
	Items []tools.ContentItem `json:"items,omitempty"`
	Error string              `json:"error,omitempty"`
}

// agentScreenWaitTimeout bounds how long Dispatch waits for a newly opened
// application's window to appear before giving up on agent-screen relocation.
const agentScreenWaitTimeout = 3 * time.Second

// Dispatch runs the full per-request pipeline described by the Tool
// Dispatcher: focus save, Safety Engine approval, tool body invocation
// (panic-safe), background-mode post-processing, redaction, adaptive and
// workflow recording, and focus restore.
func (e *Engine) Dispatch(ctx context.Context, toolName string, params map[string]any) Response {
	tool := e.Registry.Get(toolName)
	if tool == nil {
		return Response{Tool: toolName, Error: fmt.Sprintf("unknown tool: %s", toolName)}
	}

	var focusSaved bool
	if !tool.Meta {
		e.Focus.Save()
		focusSaved = true
	}
	defer func() {
		if focusSaved {
			e.Focus.Restore()
		}
	}()

	if !tool.BypassSafety {
		action, _ := params["action"].(string)
		approval := e.Safety.Approve(toolName, action, params)
		if !approval.Approved {
			return Response{Tool: toolName, Error: approval.Reason}
		}
	}

	if e.Background != nil && e.Config.Automation.AgentScreenOnly {
		e.rewriteMoveTarget(toolName, params)
	}

	items, toolErr := e.invoke(ctx, tool, params)

	success := toolErr == nil
	if e.Background != nil && toolName == "open_application" && e.Config.Automation.AgentScreenOnly && success {
		e.relocateNewWindow(params)
	}
	if e.Adaptive != nil {
		e.Adaptive.Feed(memory.Action{Tool: toolName, Key: identifyingKey(params), Success: success})
	}
	if e.Workflow != nil && success {
		e.Workflow.RecordStep(toolName, params)
	}

	if e.Redactor != nil {
		for i := range items {
			items[i].Text = e.Redactor.Sanitize(items[i].Text)
		}
	}

	resp := Response{Tool: toolName, Items: items}
	if toolErr != nil {
		resp.Error = toolErr.Error()
	}
	return resp
}

// invoke runs the tool body with a panic-to-error boundary, matching the
// invariant that no tool body ever crashes the Dispatcher.
func (e *Engine) invoke(ctx context.Context, tool *tools.Tool, params map[string]any) (items []tools.ContentItem, err error) {
	defer func() {
		if p := recover(); p != nil {
			logging.Get(logging.CategoryDispatch).Error("tool %s panicked: %v", tool.Name, p)
			err = fmt.Errorf("internal fault: %v", p)
		}
	}()
	result, execErr := e.Registry.ExecuteTool(ctx, tool, params)
	return result.Items, execErr
}

func (e *Engine) rewriteMoveTarget(toolName string, params map[string]any) {
	if toolName != "manage_window" {
		return
	}
	action, _ := params["action"].(string)
	if action != "move" {
		return
	}
	x, xok := toIntParam(params["x"])
	y, yok := toIntParam(params["y"])
	if !xok || !yok {
		return
	}
	if e.Background.IsOnUserScreen(x, y) {
		agent := e.Background.AgentRect()
		params["x"] = agent.X + 20
		params["y"] = agent.Y + 20
		logging.Get(logging.CategoryDispatch).Debug("rewrote manage_window move target to agent screen")
	}
}

func (e *Engine) relocateNewWindow(params map[string]any) {
	fragment, _ := params["app_name"].(string)
	if fragment == "" {
		fragment, _ = params["name"].(string)
	}
	if fragment == "" {
		return
	}

	deadline := time.Now().Add(agentScreenWaitTimeout)
	for time.Now().Before(deadline) {
		info, err := e.Windows.Focus(fragment)
		if err == nil {
			if moveErr := e.Background.MoveToAgentScreen(info.Handle); moveErr != nil {
				logging.Get(logging.CategoryDispatch).Warn("agent-screen relocation failed: %v", moveErr)
			}
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	logging.Get(logging.CategoryDispatch).Debug("new window %q did not appear within wait window", fragment)
}

func toIntParam(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// identifyingKey extracts a stable, key-identifying parameter for Adaptive
// Recorder pattern matching, preferring window/app-scoped fields over
// free-form content.
func identifyingKey(params map[string]any) string {
	for _, k := range []string{"window_title", "app_name", "name", "path", "url"} {
		if v, ok := params[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
