package engine

import (
	"context"
	"fmt"

	"warden/internal/input"
	"warden/internal/tools"
)

func registerInputTools(reg *tools.Registry, d Deps) error {
	if d.Input == nil {
		return nil
	}

	if err := reg.Register(&tools.Tool{
		Name:        "click",
		Description: "Click an element by fuzzy name, or a raw screen coordinate when x/y are supplied instead of name.",
		Category:    tools.CategoryInput,
		Schema: tools.Schema{
			Properties: map[string]tools.Property{
				"name":   {Type: "string", Description: "Element name to fuzzy-match and click."},
				"window": {Type: "string", Description: "Substring of the target window's title."},
				"x":      {Type: "integer"},
				"y":      {Type: "integer"},
				"button": {Type: "string", Enum: []any{"left", "right", "middle"}, Default: "left"},
				"double": {Type: "boolean", Default: false},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			button := input.ClickButton(paramString(args, "button", "left"))
			double := paramBool(args, "double", false)

			if name := paramString(args, "name", ""); name != "" {
				root := resolveRoot(d.Windows, args)
				if err := d.Input.ClickByName(root, paramString(args, "window", ""), name, button, double); err != nil {
					return nil, err
				}
				return jsonItem(map[string]any{"clicked": name})
			}

			x, hasX := args["x"]
			y, hasY := args["y"]
			if hasX && hasY {
				d.Input.ClickCoordinate(paramInt(args, "x", 0), paramInt(args, "y", 0), button, double)
				return jsonItem(map[string]any{"clicked_at": [2]any{x, y}})
			}
			return nil, fmt.Errorf("click requires either name or x/y")
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "type_text",
		Description: "Type text into an element by fuzzy name, preferring the silent accessibility value-set path.",
		Category:    tools.CategoryInput,
		Schema: tools.Schema{
			Required: []string{"text"},
			Properties: map[string]tools.Property{
				"name":   {Type: "string", Description: "Element name to fuzzy-match; omit to type into the focused editor."},
				"window": {Type: "string"},
				"text":   {Type: "string"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			root := resolveRoot(d.Windows, args)
			protection, err := d.Input.TypeByName(root, paramString(args, "window", ""), paramString(args, "name", ""), paramString(args, "text", ""))
			if err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{
				"typed": true,
				"notepad_protection": map[string]any{
					"new_tab_created":          protection.NewTabCreated,
					"preserved_content_length": protection.PreservedContentLength,
				},
			})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "press_key",
		Description: "Synthesize a single key press, optionally with modifiers.",
		Category:    tools.CategoryInput,
		Schema: tools.Schema{
			Required: []string{"key"},
			Properties: map[string]tools.Property{
				"key":       {Type: "string"},
				"modifiers": {Type: "array"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			d.Input.KeyPress(paramString(args, "key", ""), paramStringSlice(args, "modifiers"))
			return jsonItem(map[string]any{"pressed": paramString(args, "key", "")})
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "hotkey",
		Description: "Synthesize a key combination, e.g. ctrl+s.",
		Category:    tools.CategoryInput,
		Schema: tools.Schema{
			Required: []string{"key"},
			Properties: map[string]tools.Property{
				"key":       {Type: "string"},
				"modifiers": {Type: "array"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			d.Input.Hotkey(paramString(args, "key", ""), paramStringSlice(args, "modifiers"))
			return jsonItem(map[string]any{"pressed": paramString(args, "key", "")})
		},
	})
}
