package engine

import (
	"context"

	"warden/internal/tools"
	"warden/internal/uia"
)

func registerAccessibilityTools(reg *tools.Registry, d Deps) error {
	if d.UIA == nil {
		return nil
	}

	if err := reg.Register(&tools.Tool{
		Name:        "read_accessibility_tree",
		Description: "Read the accessibility tree rooted at a window (or the whole desktop), bounded by depth.",
		Category:    tools.CategoryAccessibility,
		Schema: tools.Schema{
			Properties: map[string]tools.Property{
				"window":            {Type: "string", Description: "Substring of the target window's title; omit for the desktop root."},
				"max_depth":         {Type: "integer", Description: "Maximum tree depth to walk.", Default: 6},
				"include_invisible": {Type: "boolean", Description: "Include elements not currently visible.", Default: false},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			root := resolveRoot(d.Windows, args)
			node := d.UIA.Tree(root, paramInt(args, "max_depth", 6), paramBool(args, "include_invisible", false))
			return jsonItem(node)
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "find_elements",
		Description: "Fuzzy-search the accessibility tree for elements matching a name and/or control type.",
		Category:    tools.CategoryAccessibility,
		Schema: tools.Schema{
			Required: []string{"query"},
			Properties: map[string]tools.Property{
				"query":        {Type: "string", Description: "Name fragment or phrase to match."},
				"window":       {Type: "string", Description: "Substring of the target window's title."},
				"control_type": {Type: "string", Description: "Restrict results to this control type, e.g. button, edit."},
				"max_depth":    {Type: "integer", Default: 10},
				"max_results":  {Type: "integer", Default: 10},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			root := resolveRoot(d.Windows, args)
			matches := d.UIA.Find(root, paramString(args, "query", ""), paramString(args, "control_type", ""),
				paramInt(args, "max_depth", 10), paramInt(args, "max_results", 10))
			return jsonItem(matches)
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "framework_detect",
		Description: "Report the recommended accessibility-tree walk depth for a named UI framework.",
		Category:    tools.CategoryAccessibility,
		Schema: tools.Schema{
			Required:   []string{"framework"},
			Properties: map[string]tools.Property{"framework": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			framework := paramString(args, "framework", "")
			return jsonItem(map[string]any{
				"framework":      framework,
				"recommended_depth": uia.FrameworkDepth(framework),
			})
		},
	})
}
