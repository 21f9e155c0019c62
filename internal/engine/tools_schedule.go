package engine

import (
	"context"
	"fmt"
	"time"

	"warden/internal/tools"
)

func registerScheduleTools(reg *tools.Registry, d Deps) error {
	if d.Schedule == nil {
		return nil
	}

	if err := reg.Register(&tools.Tool{
		Name:        "schedule_task",
		Description: "Schedule a recurring command, re-approved by the Safety Engine on every run.",
		Category:    tools.CategoryBackground,
		Schema: tools.Schema{
			Required: []string{"name", "command", "interval_seconds"},
			Properties: map[string]tools.Property{
				"name":             {Type: "string"},
				"command":          {Type: "string"},
				"shell":            {Type: "string"},
				"interval_seconds": {Type: "integer"},
				"max_runs":         {Type: "integer", Default: 0, Description: "0 means unbounded."},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			interval := time.Duration(paramInt(args, "interval_seconds", 0)) * time.Second
			err := d.Schedule.Add(paramString(args, "name", ""), paramString(args, "command", ""),
				paramString(args, "shell", ""), interval, paramInt(args, "max_runs", 0))
			if err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"scheduled": paramString(args, "name", "")})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "list_scheduled_tasks",
		Description: "List every active scheduled task's name.",
		Category:    tools.CategoryBackground,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(d.Schedule.Names())
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "remove_scheduled_task",
		Description: "Stop and remove a scheduled task by name.",
		Category:    tools.CategoryBackground,
		Schema: tools.Schema{
			Required:   []string{"name"},
			Properties: map[string]tools.Property{"name": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			if err := d.Schedule.Remove(paramString(args, "name", "")); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"removed": true})
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "scheduled_task_history",
		Description: "Show execution history for a scheduled task.",
		Category:    tools.CategoryBackground,
		Schema: tools.Schema{
			Required:   []string{"name"},
			Properties: map[string]tools.Property{"name": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			history, err := d.Schedule.History(paramString(args, "name", ""))
			if err != nil {
				return nil, fmt.Errorf("task history: %w", err)
			}
			return jsonItem(history)
		},
	})
}
