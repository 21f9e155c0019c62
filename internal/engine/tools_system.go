package engine

import (
	"context"

	"warden/internal/system"
	"warden/internal/tools"
)

func registerSystemTools(reg *tools.Registry, d Deps) error {
	if d.System == nil {
		return nil
	}

	if err := reg.Register(&tools.Tool{
		Name:        "run_command",
		Description: "Execute a shell command with a 60s wall-clock cap, subject to the destructive-command blocklist.",
		Category:    tools.CategorySystem,
		Schema: tools.Schema{
			Required: []string{"command"},
			Properties: map[string]tools.Property{
				"command": {Type: "string"},
				"shell":   {Type: "string", Description: "Shell to run the command through; empty uses the platform default."},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			result, err := d.System.RunCommand(ctx, paramString(args, "command", ""), paramString(args, "shell", ""))
			if err != nil {
				return nil, err
			}
			return jsonItem(result)
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "open_application",
		Description: "Launch an application by name or path, subject to the protected-application blocklist.",
		Category:    tools.CategorySystem,
		Schema: tools.Schema{
			Required:   []string{"app_name"},
			Properties: map[string]tools.Property{"app_name": {Type: "string"}, "args": {Type: "array"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			if err := d.System.OpenApplication(paramString(args, "app_name", ""), paramStringSlice(args, "args")); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"launched": paramString(args, "app_name", "")})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "clipboard_read",
		Description: "Read the current clipboard text contents.",
		Category:    tools.CategorySystem,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			text, err := d.System.ReadClipboard()
			if err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"text": text})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "clipboard_write",
		Description: "Replace the clipboard text contents.",
		Category:    tools.CategorySystem,
		Schema: tools.Schema{
			Required:   []string{"text"},
			Properties: map[string]tools.Property{"text": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			if err := d.System.WriteClipboard(paramString(args, "text", "")); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"written": true})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "clipboard_history",
		Description: "List the most recently written clipboard values, newest first.",
		Category:    tools.CategorySystem,
		Schema: tools.Schema{
			Properties: map[string]tools.Property{"limit": {Type: "integer", Default: 20}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(d.System.ClipboardHistory(paramInt(args, "limit", 20)))
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "system_info",
		Description: "Report the host OS, architecture, CPU count, and Go runtime version.",
		Category:    tools.CategorySystem,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(system.SystemInfo())
		},
	})
}
