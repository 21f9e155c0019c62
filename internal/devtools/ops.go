package devtools

import (
	"context"
	"encoding/json"
	"fmt"
)

// modifierBit maps modifier key names to the CDP Input modifier bitmask.
var modifierBit = map[string]int{
	"alt":   1,
	"ctrl":  2,
	"meta":  4,
	"shift": 8,
}

func modifiersMask(mods []string) int {
	mask := 0
	for _, m := range mods {
		mask |= modifierBit[m]
	}
	return mask
}

// ClickAt dispatches a synthetic mouse click at page coordinates via
// Input.dispatchMouseEvent.
func (c *Connection) ClickAt(ctx context.Context, x, y float64) error {
	for _, eventType := range []string{"mousePressed", "mouseReleased"} {
		_, err := c.Send(ctx, "Input.dispatchMouseEvent", map[string]any{
			"type": eventType, "x": x, "y": y, "button": "left", "clickCount": 1,
		})
		if err != nil {
			return fmt.Errorf("dispatch %s: %w", eventType, err)
		}
	}
	return nil
}

// ClickSelector resolves a CSS selector to an element center and clicks it.
func (c *Connection) ClickSelector(ctx context.Context, selector string) error {
	expr := fmt.Sprintf(`(() => { const el = document.querySelector(%q); if (!el) return null; const r = el.getBoundingClientRect(); return {x: r.x + r.width/2, y: r.y + r.height/2}; })()`, selector)
	result, err := c.Evaluate(ctx, expr)
	if err != nil {
		return err
	}
	if len(result) == 0 || string(result) == "null" {
		return fmt.Errorf("element %q not found", selector)
	}
	var point struct{ X, Y float64 }
	if err := json.Unmarshal(result, &point); err != nil {
		return fmt.Errorf("element %q not found", selector)
	}
	return c.ClickAt(ctx, point.X, point.Y)
}

// TypeText inserts text at the current focus via Input.insertText.
func (c *Connection) TypeText(ctx context.Context, text string) error {
	_, err := c.Send(ctx, "Input.insertText", map[string]any{"text": text})
	return err
}

// KeyEvent dispatches a key press with a modifier bitmask built from mods.
func (c *Connection) KeyEvent(ctx context.Context, key string, mods []string) error {
	mask := modifiersMask(mods)
	for _, eventType := range []string{"keyDown", "keyUp"} {
		_, err := c.Send(ctx, "Input.dispatchKeyEvent", map[string]any{
			"type": eventType, "key": key, "modifiers": mask,
		})
		if err != nil {
			return fmt.Errorf("dispatch %s: %w", eventType, err)
		}
	}
	return nil
}

// Screenshot captures the page via Page.captureScreenshot, returning base64
// PNG data.
func (c *Connection) Screenshot(ctx context.Context) (string, error) {
	result, err := c.Send(ctx, "Page.captureScreenshot", map[string]any{"format": "png"})
	if err != nil {
		return "", err
	}
	var out struct{ Data string `json:"data"` }
	if err := json.Unmarshal(result, &out); err != nil {
		return "", fmt.Errorf("decode screenshot response: %w", err)
	}
	return out.Data, nil
}

// Evaluate runs a JavaScript expression via Runtime.evaluate and returns its
// JSON-encoded value.
func (c *Connection) Evaluate(ctx context.Context, expression string) (json.RawMessage, error) {
	result, err := c.Send(ctx, "Runtime.evaluate", map[string]any{
		"expression": expression, "returnByValue": true,
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		Result struct {
			Value json.RawMessage `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("decode evaluate response: %w", err)
	}
	return out.Result.Value, nil
}

// FetchDOM returns the page's outer HTML by evaluating
// document.documentElement.outerHTML via Runtime.evaluate.
func (c *Connection) FetchDOM(ctx context.Context) (string, error) {
	value, err := c.Evaluate(ctx, "document.documentElement.outerHTML")
	if err != nil {
		return "", err
	}
	var html string
	if err := json.Unmarshal(value, &html); err != nil {
		return "", fmt.Errorf("decode DOM response: %w", err)
	}
	return html, nil
}
