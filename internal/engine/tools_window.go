package engine

import (
	"context"
	"fmt"

	"warden/internal/tools"
	"warden/internal/window"
)

func registerWindowTools(reg *tools.Registry, d Deps) error {
	if d.Windows == nil {
		return nil
	}

	if err := reg.Register(&tools.Tool{
		Name:        "list_windows",
		Description: "List every visible top-level window.",
		Category:    tools.CategoryWindow,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(d.Windows.List())
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "focus_window",
		Description: "Bring the first window whose title contains the given substring to the foreground.",
		Category:    tools.CategoryWindow,
		Schema: tools.Schema{
			Required:   []string{"window"},
			Properties: map[string]tools.Property{"window": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			info, err := d.Windows.Focus(paramString(args, "window", ""))
			if err != nil {
				return nil, err
			}
			return jsonItem(info)
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "manage_window",
		Description: "Minimize, maximize, restore, close, or move/resize a window by handle.",
		Category:    tools.CategoryWindow,
		Schema: tools.Schema{
			Required: []string{"handle", "action"},
			Properties: map[string]tools.Property{
				"handle": {Type: "integer"},
				"action": {Type: "string", Enum: []any{"minimize", "maximize", "restore", "close", "move"}},
				"x":      {Type: "integer"},
				"y":      {Type: "integer"},
				"w":      {Type: "integer"},
				"h":      {Type: "integer"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			handle := uintptr(paramInt(args, "handle", 0))
			action := paramString(args, "action", "")
			if action == "move" {
				if err := d.Windows.Move(handle, paramInt(args, "x", -1), paramInt(args, "y", -1), paramInt(args, "w", -1), paramInt(args, "h", -1)); err != nil {
					return nil, err
				}
				return jsonItem(map[string]any{"moved": handle})
			}
			if err := d.Windows.Manage(handle, window.Action(action)); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"action": action, "handle": handle})
		},
	}); err != nil {
		return err
	}

	if d.Background == nil {
		return nil
	}

	if err := reg.Register(&tools.Tool{
		Name:        "background_setup",
		Description: "Report the Background Mode the engine resolved at startup (dual_monitor or offscreen) and the agent screen's rectangle.",
		Category:    tools.CategoryBackground,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(map[string]any{"mode": d.Background.Mode(), "agent_rect": d.Background.AgentRect()})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "background_move",
		Description: "Move a window to the agent monitor/offscreen area, or back to the user's screen.",
		Category:    tools.CategoryBackground,
		Schema: tools.Schema{
			Required: []string{"handle", "target"},
			Properties: map[string]tools.Property{
				"handle": {Type: "integer"},
				"target": {Type: "string", Enum: []any{"agent", "user"}},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			handle := uintptr(paramInt(args, "handle", 0))
			switch paramString(args, "target", "") {
			case "agent":
				if err := d.Background.MoveToAgentScreen(handle); err != nil {
					return nil, err
				}
			case "user":
				if err := d.Background.MoveToUserScreen(handle); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf("target must be 'agent' or 'user'")
			}
			return jsonItem(map[string]any{"moved": handle})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "background_list",
		Description: "List windows currently on the agent screen.",
		Category:    tools.CategoryBackground,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(d.Background.GetAgentScreenState())
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "set_agent_screen_only",
		Description: "Toggle whether newly opened applications are automatically redirected to the agent monitor.",
		Category:    tools.CategoryBackground,
		Schema: tools.Schema{
			Required:   []string{"enabled"},
			Properties: map[string]tools.Property{"enabled": {Type: "boolean"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			d.Config.Automation.AgentScreenOnly = paramBool(args, "enabled", true)
			return jsonItem(map[string]any{"agent_screen_only": d.Config.Automation.AgentScreenOnly})
		},
	})
}
