package engine

import (
	"context"
	"fmt"
	"sync"

	"warden/internal/devtools"
	"warden/internal/tools"
)

// devtoolsConns tracks open CDP connections by port, since the Registry's
// tool bodies are stateless closures but a browser session spans many
// separate tool calls (connect once, then click/type/evaluate repeatedly).
type devtoolsConns struct {
	mu    sync.Mutex
	byPort map[int]*devtools.Connection
}

func newDevtoolsConns() *devtoolsConns {
	return &devtoolsConns{byPort: make(map[int]*devtools.Connection)}
}

func (c *devtoolsConns) get(port int) (*devtools.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.byPort[port]
	if !ok {
		return nil, fmt.Errorf("no open devtools connection on port %d; call devtools_connect first", port)
	}
	return conn, nil
}

func registerDevtoolsTools(reg *tools.Registry, d Deps) error {
	if d.Devtools == nil {
		return nil
	}
	conns := newDevtoolsConns()

	if err := reg.Register(&tools.Tool{
		Name:        "devtools_discover",
		Description: "Scan the configured remote-debugging port range for reachable browser targets.",
		Category:    tools.CategoryDevtools,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			return jsonItem(d.Devtools.Discover(ctx))
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "devtools_connect",
		Description: "Open a CDP WebSocket connection to a discovered target's port.",
		Category:    tools.CategoryDevtools,
		Schema: tools.Schema{
			Required:   []string{"port"},
			Properties: map[string]tools.Property{"port": {Type: "integer"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			port := paramInt(args, "port", 0)
			conn, err := d.Devtools.Connect(ctx, port)
			if err != nil {
				return nil, err
			}
			conns.mu.Lock()
			conns.byPort[port] = conn
			conns.mu.Unlock()
			return jsonItem(map[string]any{"connected": port})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "devtools_disconnect",
		Description: "Forget the CDP connection devtools_connect opened on a port, so later devtools calls on that port fail; the underlying WebSocket is not closed.",
		Category:    tools.CategoryDevtools,
		Schema: tools.Schema{
			Required:   []string{"port"},
			Properties: map[string]tools.Property{"port": {Type: "integer"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			port := paramInt(args, "port", 0)
			conns.mu.Lock()
			delete(conns.byPort, port)
			conns.mu.Unlock()
			return jsonItem(map[string]any{"disconnected": port})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "devtools_list",
		Description: "List ports with an open CDP connection.",
		Category:    tools.CategoryDevtools,
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			conns.mu.Lock()
			defer conns.mu.Unlock()
			ports := make([]int, 0, len(conns.byPort))
			for p := range conns.byPort {
				ports = append(ports, p)
			}
			return jsonItem(ports)
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "devtools_send",
		Description: "Send a raw CDP method call and return its response.",
		Category:    tools.CategoryDevtools,
		Schema: tools.Schema{
			Required: []string{"port", "method"},
			Properties: map[string]tools.Property{
				"port": {Type: "integer"}, "method": {Type: "string"}, "params": {Type: "object"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			conn, err := conns.get(paramInt(args, "port", 0))
			if err != nil {
				return nil, err
			}
			params, _ := args["params"].(map[string]any)
			raw, err := conn.Send(ctx, paramString(args, "method", ""), params)
			if err != nil {
				return nil, err
			}
			return []tools.ContentItem{tools.TextItem(string(raw))}, nil
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "devtools_click",
		Description: "Click at a page coordinate, or on a CSS selector when one is given instead of x/y.",
		Category:    tools.CategoryDevtools,
		Schema: tools.Schema{
			Required: []string{"port"},
			Properties: map[string]tools.Property{
				"port": {Type: "integer"}, "x": {Type: "number"}, "y": {Type: "number"}, "selector": {Type: "string"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			conn, err := conns.get(paramInt(args, "port", 0))
			if err != nil {
				return nil, err
			}
			if sel := paramString(args, "selector", ""); sel != "" {
				if err := conn.ClickSelector(ctx, sel); err != nil {
					return nil, err
				}
				return jsonItem(map[string]any{"clicked_selector": sel})
			}
			x, y := paramFloat(args, "x", 0), paramFloat(args, "y", 0)
			if err := conn.ClickAt(ctx, x, y); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"clicked_at": [2]float64{x, y}})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "devtools_type",
		Description: "Type text into the page's currently focused element.",
		Category:    tools.CategoryDevtools,
		Schema: tools.Schema{
			Required:   []string{"port", "text"},
			Properties: map[string]tools.Property{"port": {Type: "integer"}, "text": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			conn, err := conns.get(paramInt(args, "port", 0))
			if err != nil {
				return nil, err
			}
			if err := conn.TypeText(ctx, paramString(args, "text", "")); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"typed": true})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "devtools_key",
		Description: "Send a key event to the page.",
		Category:    tools.CategoryDevtools,
		Schema: tools.Schema{
			Required: []string{"port", "key"},
			Properties: map[string]tools.Property{
				"port": {Type: "integer"}, "key": {Type: "string"}, "modifiers": {Type: "array"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			conn, err := conns.get(paramInt(args, "port", 0))
			if err != nil {
				return nil, err
			}
			if err := conn.KeyEvent(ctx, paramString(args, "key", ""), paramStringSlice(args, "modifiers")); err != nil {
				return nil, err
			}
			return jsonItem(map[string]any{"key": paramString(args, "key", "")})
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "devtools_screenshot",
		Description: "Capture the page as a base64 PNG via CDP.",
		Category:    tools.CategoryDevtools,
		Schema: tools.Schema{
			Required:   []string{"port"},
			Properties: map[string]tools.Property{"port": {Type: "integer"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			conn, err := conns.get(paramInt(args, "port", 0))
			if err != nil {
				return nil, err
			}
			b64, err := conn.Screenshot(ctx)
			if err != nil {
				return nil, err
			}
			return []tools.ContentItem{tools.ImageItem("image/png", b64)}, nil
		},
	}); err != nil {
		return err
	}

	if err := reg.Register(&tools.Tool{
		Name:        "devtools_evaluate",
		Description: "Evaluate a JavaScript expression in the page and return its JSON result.",
		Category:    tools.CategoryDevtools,
		Schema: tools.Schema{
			Required:   []string{"port", "expression"},
			Properties: map[string]tools.Property{"port": {Type: "integer"}, "expression": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			conn, err := conns.get(paramInt(args, "port", 0))
			if err != nil {
				return nil, err
			}
			raw, err := conn.Evaluate(ctx, paramString(args, "expression", ""))
			if err != nil {
				return nil, err
			}
			return []tools.ContentItem{tools.TextItem(string(raw))}, nil
		},
	}); err != nil {
		return err
	}

	return reg.Register(&tools.Tool{
		Name:        "devtools_get_dom",
		Description: "Fetch the page's current outer HTML.",
		Category:    tools.CategoryDevtools,
		Schema: tools.Schema{
			Required:   []string{"port"},
			Properties: map[string]tools.Property{"port": {Type: "integer"}},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			conn, err := conns.get(paramInt(args, "port", 0))
			if err != nil {
				return nil, err
			}
			html, err := conn.FetchDOM(ctx)
			if err != nil {
				return nil, err
			}
			return []tools.ContentItem{tools.TextItem(html)}, nil
		},
	})
}
