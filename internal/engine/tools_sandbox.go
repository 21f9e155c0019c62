package engine

import (
	"context"
	"time"

	"warden/internal/tools"
)

// sandboxTimeout bounds a single scripted application-control run.
const sandboxTimeout = 30 * time.Second

func registerSandboxTools(reg *tools.Registry, d Deps) error {
	if d.Sandbox == nil {
		return nil
	}
	return reg.Register(&tools.Tool{
		Name:        "run_app_script",
		Description: "Run a validated Python-subset script against a sandboxed application handle (capability-restricted; no filesystem or network access beyond the app facade).",
		Category:    tools.CategorySystem,
		Schema: tools.Schema{
			Required: []string{"app", "script"},
			Properties: map[string]tools.Property{
				"app":    {Type: "string"},
				"script": {Type: "string"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			result := d.Sandbox.Run(ctx, paramString(args, "app", ""), paramString(args, "script", ""), sandboxTimeout)
			return jsonItem(result)
		},
	})
}
