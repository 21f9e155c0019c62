package engine

import (
	"context"
	"strings"
	"time"

	"warden/internal/config"
	"warden/internal/extensions"
	"warden/internal/tools"
)

// engineVersion is the engine's own release identifier, reported by the
// version tool and CLI subcommand alike.
const engineVersion = "0.1.0"

// pollInterval is the pause between checks in every wait_for_* tool's
// polling loop; each tool's timeout_seconds argument bounds the loop.
const pollInterval = 250 * time.Millisecond

func registerMetaTools(reg *tools.Registry, d Deps) error {
	if err := registerKillSwitchTools(reg, d); err != nil {
		return err
	}
	if err := registerCapabilityTools(reg, d); err != nil {
		return err
	}
	if err := registerWaitTools(reg, d); err != nil {
		return err
	}
	return registerExtensionTools(reg, d)
}

func registerKillSwitchTools(reg *tools.Registry, d Deps) error {
	if d.Safety == nil {
		return nil
	}

	// Kill-switch management is the one tool family the Safety Engine must
	// never gate: Approve's first check is IsKilled, so without this
	// bypass, activating the kill switch would also deny the reset call
	// meant to clear it.
	if err := reg.Register(&tools.Tool{
		Name:         "kill_switch_activate",
		Description:  "Activate the kill switch, denying every subsequent safety-gated tool call until reset.",
		Category:     tools.CategoryMeta,
		Meta:         true,
		BypassSafety: true,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			d.Safety.Kill()
			return jsonItem(map[string]any{"killed": true})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:         "kill_switch_reset",
		Description:  "Clear the kill switch, allowing automation to resume.",
		Category:     tools.CategoryMeta,
		Meta:         true,
		BypassSafety: true,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			d.Safety.Reset()
			return jsonItem(map[string]any{"killed": false})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:         "kill_switch_status",
		Description:  "Report whether the kill switch is currently active, and the trailing-minute action count.",
		Category:     tools.CategoryMeta,
		Meta:         true,
		BypassSafety: true,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(map[string]any{
				"killed":              d.Safety.IsKilled(),
				"actions_this_minute": d.Safety.ActionsThisMinute(),
			})
		},
	}); err != nil {
		return err
	}

	if d.Focus == nil {
		return nil
	}
	return reg.Register(&tools.Tool{
		Name:        "restore_user_focus",
		Description: "Restore foreground focus to the window that had it before the last dispatched tool call.",
		Category:    tools.CategoryMeta,
		Meta:        true,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(d.Focus.Restore())
		},
	})
}

func registerCapabilityTools(reg *tools.Registry, d Deps) error {
	if err := reg.Register(&tools.Tool{
		Name:        "capabilities",
		Description: "List every registered tool, grouped by category.",
		Category:    tools.CategoryMeta,
		Meta:        true,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			byCategory := map[tools.Category][]string{}
			for _, t := range reg.All() {
				byCategory[t.Category] = append(byCategory[t.Category], t.Name)
			}
			return jsonItem(byCategory)
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "version",
		Description: "Report the engine's version identifier.",
		Category:    tools.CategoryMeta,
		Meta:        true,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(map[string]any{"version": engineVersion})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "diagnostics",
		Description: "Report OCR backend availability, the number of reachable devtools targets, and whether the journal and memory store are configured; the journal and memory files themselves are not opened or checked.",
		Category:    tools.CategoryMeta,
		Meta:        true,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(runDiagnostics(ctx, d))
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "inspiration",
		Description: "Suggest one registered tool name, picked pseudo-randomly from the tool list (usage is not tracked).",
		Category:    tools.CategoryMeta,
		Meta:        true,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			all := reg.Names()
			if len(all) == 0 {
				return jsonItem(map[string]any{"suggestion": ""})
			}
			idx := int(time.Now().UnixNano()) % len(all)
			if idx < 0 {
				idx = -idx
			}
			return jsonItem(map[string]any{"suggestion": all[idx]})
		},
	})
}

// DiagnosticsReport summarizes the health of every configured backend
// without starting the Transport Loop, so it can run from the `diagnostics`
// CLI subcommand as well as the `diagnostics` tool.
type DiagnosticsReport struct {
	OCRBackends     map[string][]string `json:"ocr_backends"`
	DevtoolsTargets int                 `json:"devtools_targets"`
	JournalHealthy  bool                `json:"journal_healthy"`
	MemoryHealthy   bool                `json:"memory_healthy"`
}

func runDiagnostics(ctx context.Context, d Deps) DiagnosticsReport {
	report := DiagnosticsReport{}
	if d.OCR != nil {
		report.OCRBackends = d.OCR.AvailableBackends(nil)
	}
	if d.Devtools != nil {
		report.DevtoolsTargets = len(d.Devtools.Discover(ctx))
	}
	report.JournalHealthy = d.Journal != nil
	report.MemoryHealthy = d.MemoryStore != nil
	return report
}

func registerWaitTools(reg *tools.Registry, d Deps) error {
	if d.Resolver != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "wait_for_element",
			Description: "Poll smart_find until an element matching query is found or a timeout elapses.",
			Category:    tools.CategoryMeta,
			Schema: tools.Schema{
				Required:   []string{"query"},
				Properties: map[string]tools.Property{"query": {Type: "string"}, "window": {Type: "string"}, "timeout_seconds": {Type: "number", Default: 10}},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				deadline := time.Now().Add(time.Duration(paramFloat(args, "timeout_seconds", 10) * float64(time.Second)))
				root := resolveRoot(d.Windows, args)
				window := paramString(args, "window", "")
				query := paramString(args, "query", "")
				for {
					result := d.Resolver.Find(root, window, query, false)
					if result.Found {
						return jsonItem(result)
					}
					if time.Now().After(deadline) || ctx.Err() != nil {
						return jsonItem(result)
					}
					time.Sleep(pollInterval)
				}
			},
		}); err != nil {
			return err
		}

		if err := reg.Register(&tools.Tool{
			Name:        "wait_for_text",
			Description: "Poll OCR over a region until the given text appears or a timeout elapses.",
			Category:    tools.CategoryMeta,
			Schema: tools.Schema{
				Required:   []string{"text"},
				Properties: map[string]tools.Property{"text": {Type: "string"}, "window": {Type: "string"}, "timeout_seconds": {Type: "number", Default: 10}},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				if d.OCR == nil || d.Capture == nil {
					return jsonItem(map[string]any{"found": false, "reason": "ocr not configured"})
				}
				deadline := time.Now().Add(time.Duration(paramFloat(args, "timeout_seconds", 10) * float64(time.Second)))
				want := paramString(args, "text", "")
				frameArgs := args
				if handle := resolveRoot(d.Windows, args); handle != 0 {
					frameArgs = map[string]any{"handle": float64(handle)}
				}
				for {
					frame, err := captureFrame(d.Capture, frameArgs)
					if err == nil {
						if result, err := d.OCR.Recognize(frame, "eng"); err == nil && strings.Contains(strings.ToLower(result.Text), strings.ToLower(want)) {
							return jsonItem(map[string]any{"found": true, "text": result.Text})
						}
					}
					if time.Now().After(deadline) || ctx.Err() != nil {
						return jsonItem(map[string]any{"found": false})
					}
					time.Sleep(pollInterval)
				}
			},
		}); err != nil {
			return err
		}
	}

	if d.Windows != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "wait_for_window",
			Description: "Poll the window list until a title matching substring appears or a timeout elapses.",
			Category:    tools.CategoryMeta,
			Schema: tools.Schema{
				Required:   []string{"window"},
				Properties: map[string]tools.Property{"window": {Type: "string"}, "timeout_seconds": {Type: "number", Default: 10}},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				deadline := time.Now().Add(time.Duration(paramFloat(args, "timeout_seconds", 10) * float64(time.Second)))
				name := paramString(args, "window", "")
				for {
					if handle := resolveRoot(d.Windows, map[string]any{"window": name}); handle != 0 {
						return jsonItem(map[string]any{"found": true, "handle": handle})
					}
					if time.Now().After(deadline) || ctx.Err() != nil {
						return jsonItem(map[string]any{"found": false})
					}
					time.Sleep(pollInterval)
				}
			},
		}); err != nil {
			return err
		}
	}

	if d.Safety != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "wait_for_idle",
			Description: "Block until the trailing-minute action count drops to zero or a timeout elapses.",
			Category:    tools.CategoryMeta,
			Schema: tools.Schema{
				Properties: map[string]tools.Property{"timeout_seconds": {Type: "number", Default: 10}},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				deadline := time.Now().Add(time.Duration(paramFloat(args, "timeout_seconds", 10) * float64(time.Second)))
				for {
					if d.Safety.ActionsThisMinute() == 0 {
						return jsonItem(map[string]any{"idle": true})
					}
					if time.Now().After(deadline) || ctx.Err() != nil {
						return jsonItem(map[string]any{"idle": false})
					}
					time.Sleep(pollInterval)
				}
			},
		}); err != nil {
			return err
		}
	}

	return nil
}

func registerExtensionTools(reg *tools.Registry, d Deps) error {
	dir, err := config.Dir()
	if err != nil {
		return nil
	}
	store, err := extensions.Open(dir)
	if err != nil {
		return nil
	}

	if err := reg.Register(&tools.Tool{
		Name:        "extensions_list",
		Description: "List every installed extension.",
		Category:    tools.CategoryMeta,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			list, err := store.List()
			if err != nil {
				return nil, err
			}
			return jsonItem(list)
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "extensions_install",
		Description: "Register an installed extension, recording its declared permissions.",
		Category:    tools.CategoryMeta,
		Schema: tools.Schema{
			Required: []string{"name", "version"},
			Properties: map[string]tools.Property{
				"name": {Type: "string"}, "version": {Type: "string"}, "source": {Type: "string"},
				"permissions": {Type: "array"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			err := store.Install(paramString(args, "name", ""), paramString(args, "version", ""),
				paramString(args, "source", ""), paramStringSlice(args, "permissions"))
			if err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"installed": true})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "extensions_uninstall",
		Description: "Remove an installed extension by name.",
		Category:    tools.CategoryMeta,
		Schema: tools.Schema{
			Required:   []string{"name"},
			Properties: map[string]tools.Property{"name": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			if err := store.Uninstall(paramString(args, "name", "")); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"uninstalled": true})
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "extensions_audit",
		Description: "List installed extensions that declare a sensitive permission.",
		Category:    tools.CategoryMeta,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			findings, err := store.Audit()
			if err != nil {
				return nil, err
			}
			return jsonItem(findings)
		},
	})
}
