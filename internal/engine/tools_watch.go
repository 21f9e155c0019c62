package engine

import (
	"context"
	"time"

	"warden/internal/tools"
	"warden/internal/watch"
)

func registerWatchTools(reg *tools.Registry, d Deps) error {
	if d.Watch == nil {
		return nil
	}

	if err := reg.Register(&tools.Tool{
		Name:        "watch_folder",
		Description: "Watch a folder (optionally recursively) for create/modify/delete/move events.",
		Category:    tools.CategoryBackground,
		Schema: tools.Schema{
			Required: []string{"path"},
			Properties: map[string]tools.Property{
				"path":      {Type: "string"},
				"kinds":     {Type: "array", Description: "Subset of created, modified, deleted, moved; empty means all."},
				"recursive": {Type: "boolean", Default: false},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			kinds := decodeEventKinds(paramStringSlice(args, "kinds"))
			id, err := d.Watch.Watch(paramString(args, "path", ""), kinds, paramBool(args, "recursive", false))
			if err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"watcher_id": id})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "unwatch",
		Description: "Stop a watcher started by watch_folder.",
		Category:    tools.CategoryBackground,
		Schema: tools.Schema{
			Required:   []string{"watcher_id"},
			Properties: map[string]tools.Property{"watcher_id": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			if err := d.Watch.Unwatch(paramString(args, "watcher_id", "")); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"stopped": true})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "list_watchers",
		Description: "List every currently active folder watcher.",
		Category:    tools.CategoryBackground,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(d.Watch.ListWatchers())
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "get_watch_events",
		Description: "Retrieve buffered events for a watcher, optionally since a given time.",
		Category:    tools.CategoryBackground,
		Schema: tools.Schema{
			Required: []string{"watcher_id"},
			Properties: map[string]tools.Property{
				"watcher_id": {Type: "string"},
				"limit":      {Type: "integer", Default: 50},
				"since_unix": {Type: "integer", Description: "Unix seconds; events before this are excluded."},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			since := time.Time{}
			if s := paramInt(args, "since_unix", 0); s > 0 {
				since = time.Unix(int64(s), 0)
			}
			events := d.Watch.Events(paramString(args, "watcher_id", ""), paramInt(args, "limit", 50), since)
			return jsonItem(events)
		},
	}); err != nil {
		return err
	}

	return nil
}

func decodeEventKinds(raw []string) []watch.EventKind {
	if len(raw) == 0 {
		return nil
	}
	out := make([]watch.EventKind, 0, len(raw))
	for _, r := range raw {
		out = append(out, watch.EventKind(r))
	}
	return out
}
