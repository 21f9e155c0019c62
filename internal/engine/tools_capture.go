package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"warden/internal/capture"
	"warden/internal/tools"
)

func registerCaptureTools(reg *tools.Registry, d Deps) error {
	if d.Capture != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "screenshot",
			Description: "Capture the full display, a window by handle, or a rectangular region.",
			Category:    tools.CategoryCapture,
			Schema: tools.Schema{
				Properties: map[string]tools.Property{
					"handle": {Type: "integer", Description: "Window handle to capture; omit for the full display."},
					"x":      {Type: "integer"}, "y": {Type: "integer"}, "w": {Type: "integer"}, "h": {Type: "integer"},
				},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				result, err := captureFrame(d.Capture, args)
				if err != nil {
					return nil, err
				}
				return []tools.ContentItem{tools.ImageItem("image/jpeg", result.Base64)}, nil
			},
		}); err != nil {
			return err
		}
	}

	if d.OCR != nil && d.Capture != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "ocr_region",
			Description: "Capture a region (or the full display) and recognize its text.",
			Category:    tools.CategoryCapture,
			Schema: tools.Schema{
				Properties: map[string]tools.Property{
					"handle":   {Type: "integer"},
					"x":        {Type: "integer"}, "y": {Type: "integer"}, "w": {Type: "integer"}, "h": {Type: "integer"},
					"language": {Type: "string", Default: "eng"},
				},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				frame, err := captureFrame(d.Capture, args)
				if err != nil {
					return nil, err
				}
				result, err := d.OCR.Recognize(frame, paramString(args, "language", "eng"))
				if err != nil {
					return nil, err
				}
				return jsonItem(result)
			},
		}); err != nil {
			return err
		}

		if err := reg.Register(&tools.Tool{
			Name:        "ocr_languages",
			Description: "List OCR languages each configured backend supports.",
			Category:    tools.CategoryCapture,
			Schema: tools.Schema{
				Properties: map[string]tools.Property{"languages": {Type: "array"}},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				return jsonItem(d.OCR.AvailableBackends(paramStringSlice(args, "languages")))
			},
		}); err != nil {
			return err
		}
	}

	if d.Resolver != nil {
		if err := reg.Register(&tools.Tool{
			Name:        "smart_find",
			Description: "Locate an element by name, escalating from the accessibility tree to OCR to a vision-model screenshot as each tier fails. Optionally clicks the element once found.",
			Category:    tools.CategoryCapture,
			Schema: tools.Schema{
				Required: []string{"query"},
				Properties: map[string]tools.Property{
					"query":          {Type: "string"},
					"window":         {Type: "string"},
					"click_if_found": {Type: "boolean", Description: "Click the element if a UIA or OCR tier finds it: silent invoke for UIA, coordinate click for OCR.", Default: false},
				},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				root := resolveRoot(d.Windows, args)
				result := d.Resolver.Find(root, paramString(args, "window", ""), paramString(args, "query", ""), paramBool(args, "click_if_found", false))
				return jsonItem(result)
			},
		}); err != nil {
			return err
		}
	}

	if d.Capture != nil {
		diffs := newDiffStore()

		if err := reg.Register(&tools.Tool{
			Name:        "visual_diff",
			Description: "Capture the 'before' state of a window (or the full display) for later comparison. Call this before performing an action, then pass the returned diff_id to visual_diff_compare.",
			Category:    tools.CategoryCapture,
			Schema: tools.Schema{
				Properties: map[string]tools.Property{
					"handle":      {Type: "integer"},
					"description": {Type: "string", Description: "What you're about to do, for your own reference."},
				},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				frame, err := captureFrame(d.Capture, args)
				if err != nil {
					return nil, err
				}
				id := diffs.put(frame, args)
				return jsonItem(map[string]any{
					"diff_id": id,
					"status":  "before_captured",
					"hint":    fmt.Sprintf("perform your action, then call visual_diff_compare(diff_id=%q)", id),
				})
			},
		}); err != nil {
			return err
		}

		if err := reg.Register(&tools.Tool{
			Name:        "visual_diff_compare",
			Description: "Capture the 'after' state for a diff_id from visual_diff and report the pixel-level change.",
			Category:    tools.CategoryCapture,
			Schema: tools.Schema{
				Required:   []string{"diff_id"},
				Properties: map[string]tools.Property{"diff_id": {Type: "string"}},
			},
			Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
				diffID := paramString(args, "diff_id", "")
				state, ok := diffs.take(diffID)
				if !ok {
					return nil, fmt.Errorf("no 'before' state for diff_id %q; it may have expired", diffID)
				}
				after, err := captureFrame(d.Capture, state.args)
				if err != nil {
					return nil, err
				}
				report, err := capture.Diff(state.before, after)
				if err != nil {
					return nil, err
				}
				return jsonItem(map[string]any{
					"diff_id":     diffID,
					"description": state.description,
					"before_size": fmt.Sprintf("%dx%d", state.before.Width, state.before.Height),
					"after_size":  fmt.Sprintf("%dx%d", after.Width, after.Height),
					"report":      report,
				})
			},
		}); err != nil {
			return err
		}
	}

	return nil
}

// diffStateMaxAge bounds how long a visual_diff 'before' capture stays
// claimable by visual_diff_compare before it's evicted.
const diffStateMaxAge = 5 * time.Minute

type diffState struct {
	before      *capture.Result
	args        map[string]any
	description string
	created     time.Time
}

// diffStore holds in-flight visual_diff 'before' captures keyed by diff_id,
// so visual_diff_compare can retrieve and consume them.
type diffStore struct {
	mu     sync.Mutex
	states map[string]diffState
}

func newDiffStore() *diffStore {
	return &diffStore{states: make(map[string]diffState)}
}

func (s *diffStore) put(before *capture.Result, args map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()

	id := uuid.NewString()[:8]
	s.states[id] = diffState{
		before:      before,
		args:        args,
		description: paramString(args, "description", ""),
		created:     time.Now(),
	}
	return id
}

func (s *diffStore) take(id string) (diffState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	st, ok := s.states[id]
	if ok {
		delete(s.states, id)
	}
	return st, ok
}

func (s *diffStore) evictLocked() {
	now := time.Now()
	for id, st := range s.states {
		if now.Sub(st.created) > diffStateMaxAge {
			delete(s.states, id)
		}
	}
}

// captureFrame dispatches to the right Capture Subsystem method based on
// which region-selecting arguments are present.
func captureFrame(sub *capture.Subsystem, args map[string]any) (*capture.Result, error) {
	if handle, ok := args["handle"]; ok {
		return sub.Window(uintptr(toIntArg(handle)))
	}
	_, hasX := args["x"]
	_, hasY := args["y"]
	if hasX && hasY {
		rect := capture.Rect{
			X: paramInt(args, "x", 0), Y: paramInt(args, "y", 0),
			W: paramInt(args, "w", 0), H: paramInt(args, "h", 0),
		}
		if rect.W <= 0 || rect.H <= 0 {
			return nil, fmt.Errorf("region capture requires positive w/h")
		}
		return sub.Region(rect)
	}
	return sub.Display()
}

func toIntArg(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
