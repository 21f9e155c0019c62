package engine

import (
	"context"
	"fmt"

	"warden/internal/memory"
	"warden/internal/tools"
)

func registerMemoryTools(reg *tools.Registry, d Deps) error {
	if d.MemoryStore != nil {
		if err := registerStoreTools(reg, d); err != nil {
			return err
		}
	}
	if d.Workflow != nil {
		if err := registerWorkflowTools(reg, d); err != nil {
			return err
		}
	}
	if d.Adaptive != nil {
		if err := registerAdaptiveTools(reg, d); err != nil {
			return err
		}
	}
	if d.Journal != nil {
		if err := registerJournalTools(reg, d); err != nil {
			return err
		}
	}
	return nil
}

func registerStoreTools(reg *tools.Registry, d Deps) error {
	if err := reg.Register(&tools.Tool{
		Name:        "memory_save",
		Description: "Save a value under a namespaced key (general, preferences, projects, or tasks).",
		Category:    tools.CategoryMemory,
		Schema: tools.Schema{
			Required: []string{"category", "key", "value"},
			Properties: map[string]tools.Property{
				"category": {Type: "string", Enum: []any{"general", "preferences", "projects", "tasks"}},
				"key":      {Type: "string"},
				"value":    {Type: "object"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			cat := memory.Category(paramString(args, "category", string(memory.CategoryGeneral)))
			if err := d.MemoryStore.Set(cat, paramString(args, "key", ""), args["value"]); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"saved": true})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "memory_recall",
		Description: "Recall a saved value by namespace and key.",
		Category:    tools.CategoryMemory,
		Schema: tools.Schema{
			Required: []string{"category", "key"},
			Properties: map[string]tools.Property{
				"category": {Type: "string"},
				"key":      {Type: "string"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			cat := memory.Category(paramString(args, "category", string(memory.CategoryGeneral)))
			entry, ok := d.MemoryStore.Get(cat, paramString(args, "key", ""))
			if !ok {
				return nil, fmt.Errorf("no such key")
			}
			return jsonItem(entry)
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "memory_delete",
		Description: "Delete a saved value by namespace and key.",
		Category:    tools.CategoryMemory,
		Schema: tools.Schema{
			Required:   []string{"category", "key"},
			Properties: map[string]tools.Property{"category": {Type: "string"}, "key": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			cat := memory.Category(paramString(args, "category", string(memory.CategoryGeneral)))
			if err := d.MemoryStore.Delete(cat, paramString(args, "key", "")); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"deleted": true})
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "memory_list",
		Description: "List every saved key/value in a namespace.",
		Category:    tools.CategoryMemory,
		Schema: tools.Schema{
			Required:   []string{"category"},
			Properties: map[string]tools.Property{"category": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			cat := memory.Category(paramString(args, "category", string(memory.CategoryGeneral)))
			return jsonItem(d.MemoryStore.List(cat))
		},
	})
}

func registerWorkflowTools(reg *tools.Registry, d Deps) error {
	if err := reg.Register(&tools.Tool{
		Name:        "workflow_record",
		Description: "Start recording every subsequent tool call as a named, replayable workflow.",
		Category:    tools.CategoryMemory,
		Schema: tools.Schema{
			Required:   []string{"name"},
			Properties: map[string]tools.Property{"name": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			if err := d.Workflow.StartRecording(paramString(args, "name", "")); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"recording": true})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "workflow_stop",
		Description: "Stop the active workflow recording and persist it.",
		Category:    tools.CategoryMemory,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			name, steps, err := d.Workflow.StopRecording()
			if err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"name": name, "steps": steps})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "workflow_run",
		Description: "Replay a recorded workflow, re-approving each step via the Safety Engine before it executes.",
		Category:    tools.CategoryMemory,
		Schema: tools.Schema{
			Required:   []string{"name"},
			Properties: map[string]tools.Property{"name": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			name := paramString(args, "name", "")
			runner := func(tool string, params map[string]any) (bool, string, error) {
				approval := d.Safety.Approve(tool, "", params)
				if !approval.Approved {
					return false, approval.Reason, nil
				}
				t := reg.Get(tool)
				if t == nil {
					return false, "", fmt.Errorf("unknown tool: %s", tool)
				}
				_, err := reg.ExecuteTool(ctx, t, params)
				return true, "", err
			}
			result, err := d.Workflow.Run(name, runner, func() bool { return d.Safety.IsKilled() })
			if err != nil {
				return nil, err
			}
			return jsonItem(result)
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "workflow_list",
		Description: "List every recorded workflow name.",
		Category:    tools.CategoryMemory,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			names, err := d.Workflow.List()
			if err != nil {
				return nil, err
			}
			return jsonItem(names)
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "workflow_delete",
		Description: "Delete a recorded workflow by name.",
		Category:    tools.CategoryMemory,
		Schema: tools.Schema{
			Required:   []string{"name"},
			Properties: map[string]tools.Property{"name": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			if err := d.Workflow.Delete(paramString(args, "name", "")); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"deleted": true})
		},
	})
}

func registerAdaptiveTools(reg *tools.Registry, d Deps) error {
	if err := reg.Register(&tools.Tool{
		Name:        "adaptive_suggestions",
		Description: "List repeated action sequences the Adaptive Recorder has detected in recent tool calls.",
		Category:    tools.CategoryMemory,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(d.Adaptive.Detect())
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "adaptive_accept",
		Description: "Accept a detected pattern candidate, confirming it as a real repeated sequence.",
		Category:    tools.CategoryMemory,
		Schema: tools.Schema{
			Required:   []string{"sequence"},
			Properties: map[string]tools.Property{"sequence": {Type: "array"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			seq, err := decodeActionSequence(args["sequence"])
			if err != nil {
				return nil, err
			}
			if err := d.Adaptive.Accept(seq); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"accepted": true})
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "adaptive_dismiss",
		Description: "Dismiss a detected pattern candidate so it is not suggested again.",
		Category:    tools.CategoryMemory,
		Schema: tools.Schema{
			Required:   []string{"sequence"},
			Properties: map[string]tools.Property{"sequence": {Type: "array"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			seq, err := decodeActionSequence(args["sequence"])
			if err != nil {
				return nil, err
			}
			d.Adaptive.Dismiss(seq)
			return jsonItem(map[string]any{"dismissed": true})
		},
	})
}

// decodeActionSequence recovers a []memory.Action from the loosely-typed
// JSON array a caller echoes back from an adaptive_suggestions response.
func decodeActionSequence(raw any) ([]memory.Action, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("sequence must be an array of {tool, key, success}")
	}
	out := make([]memory.Action, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("sequence entries must be objects")
		}
		tool, _ := m["tool"].(string)
		key, _ := m["key"].(string)
		success, _ := m["success"].(bool)
		out = append(out, memory.Action{Tool: tool, Key: key, Success: success})
	}
	return out, nil
}

func registerJournalTools(reg *tools.Registry, d Deps) error {
	if err := reg.Register(&tools.Tool{
		Name:        "error_journal_show",
		Description: "List recorded method-selection history, optionally filtered to one window's application.",
		Category:    tools.CategoryMemory,
		Schema: tools.Schema{
			Properties: map[string]tools.Property{"window": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			entries, err := d.Journal.KnownIssues(paramString(args, "window", ""))
			if err != nil {
				return nil, err
			}
			return jsonItem(entries)
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "error_journal_clear",
		Description: "Clear journal entries, optionally filtered to one window's application.",
		Category:    tools.CategoryMemory,
		Schema: tools.Schema{
			Properties: map[string]tools.Property{"window": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			count, err := d.Journal.Clear(paramString(args, "window", ""))
			if err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"cleared": count})
		},
	})
}
