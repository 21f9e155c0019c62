// Package resolve implements the Escalating Resolver (smart_find): a
// three-tier element lookup that tries UIA fuzzy search, then OCR, then
// falls back to handing the caller a raw screenshot to reason over
// visually, recording UIA misses and OCR hits in the Error Journal.
package resolve

import (
	"strings"
	"time"

	"warden/internal/capture"
	"warden/internal/input"
	"warden/internal/journal"
	"warden/internal/logging"
	"warden/internal/ocr"
	"warden/internal/uia"
)

// Tier names the resolution method that produced a result.
type Tier string

const (
	TierUIA    Tier = "uia"
	TierOCR    Tier = "ocr"
	TierVision Tier = "vision"
)

const (
	strongMatchThreshold  = 0.8
	partialMatchThreshold = 0.6
)

// journalSkipUIAReason is the exact annotation the Error Journal's recorded
// history produces when it already knows UIA fails on the target app, so
// resolution starts at OCR instead of re-discovering that on every call.
const journalSkipUIAReason = "journal_says_uia_fails_on_this_app"

// Point is a screen coordinate a click can target.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MethodAttempt records one escalation tier's outcome (or its skip reason),
// in the order tried, so a caller can see exactly what the resolver did
// before it found (or failed to find) a match.
type MethodAttempt struct {
	Method    string `json:"method"`
	Success   bool   `json:"success"`
	Skipped   bool   `json:"skipped,omitempty"`
	Reason    string `json:"reason,omitempty"`
	ElapsedMs int64  `json:"time_ms"`
}

// Result is one smart_find outcome.
type Result struct {
	Tier         Tier           `json:"tier"`
	Found        bool           `json:"found"`
	Node         *uia.Node      `json:"node,omitempty"`
	Point        *Point         `json:"point,omitempty"`
	Partials     []uia.Match    `json:"partials,omitempty"`
	ImageB64     string         `json:"image_base64,omitempty"`
	ElapsedMs    int64          `json:"elapsed_ms"`
	Directive    string         `json:"directive,omitempty"`
	MethodsTried []MethodAttempt `json:"methods_tried"`
	Clicked      *ClickResult   `json:"clicked,omitempty"`
}

// ClickResult reports the outcome of a click_if_found follow-up.
type ClickResult struct {
	Attempted bool   `json:"attempted"`
	Method    string `json:"method,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Resolver is the Escalating Resolver.
type Resolver struct {
	uia     *uia.Accessor
	capture *capture.Subsystem
	ocr     *ocr.Engine
	journal *journal.Journal
	access  input.Accessible
	synth   input.Synthesizer
}

// New builds a Resolver over its tier dependencies. access and synth back
// click_if_found: a UIA hit is invoked silently through access, an OCR hit
// is clicked at its bounding-box center through synth. Either may be nil,
// in which case click_if_found is accepted but reported as not attempted.
func New(accessor *uia.Accessor, cap *capture.Subsystem, ocrEngine *ocr.Engine, j *journal.Journal, access input.Accessible, synth input.Synthesizer) *Resolver {
	return &Resolver{uia: accessor, capture: cap, ocr: ocrEngine, journal: j, access: access, synth: synth}
}

const toolName = "smart_find"

// Find resolves query under root/window, escalating through tiers. If the
// journal already knows which tier works for this window, resolution
// starts there instead of always beginning at UIA, and the UIA tier is
// recorded as skipped rather than silently omitted. When clickIfFound is
// true, a UIA hit is invoked silently and an OCR hit is clicked at its
// screen coordinates.
func (r *Resolver) Find(root uintptr, window, query string, clickIfFound bool) *Result {
	start := time.Now()
	log := logging.Get(logging.CategoryResolve)

	var methodsTried []MethodAttempt

	startTier := TierUIA
	if r.journal != nil {
		switch r.journal.BestMethod(toolName, window) {
		case string(TierOCR):
			startTier = TierOCR
		case string(TierVision):
			startTier = TierVision
		}
	}

	if startTier == TierUIA {
		tierStart := time.Now()
		if res := r.tryUIA(root, query); res != nil {
			methodsTried = append(methodsTried, MethodAttempt{Method: string(TierUIA), Success: true, ElapsedMs: time.Since(tierStart).Milliseconds()})
			res.MethodsTried = methodsTried
			res.ElapsedMs = time.Since(start).Milliseconds()
			if clickIfFound {
				res.Clicked = r.clickUIA(res.Node)
			}
			return res
		}
		methodsTried = append(methodsTried, MethodAttempt{Method: string(TierUIA), Success: false, ElapsedMs: time.Since(tierStart).Milliseconds()})
		if r.journal != nil {
			r.journal.RecordFailure(toolName, window, string(TierUIA), "no strong or partial match")
		}
	} else {
		methodsTried = append(methodsTried, MethodAttempt{Method: string(TierUIA), Skipped: true, Reason: journalSkipUIAReason})
		log.Debug("smart_find %q: journal says UIA fails on %q, starting at OCR", query, window)
	}

	ocrStart := time.Now()
	if res := r.tryOCR(window, query); res != nil {
		methodsTried = append(methodsTried, MethodAttempt{Method: string(TierOCR), Success: true, ElapsedMs: time.Since(ocrStart).Milliseconds()})
		if r.journal != nil {
			r.journal.RecordSuccess(toolName, window, string(TierOCR))
		}
		res.MethodsTried = methodsTried
		res.ElapsedMs = time.Since(start).Milliseconds()
		if clickIfFound {
			res.Clicked = r.clickPoint(res.Point)
		}
		return res
	}
	methodsTried = append(methodsTried, MethodAttempt{Method: string(TierOCR), Success: false, ElapsedMs: time.Since(ocrStart).Milliseconds()})

	log.Debug("smart_find %q exhausted UIA and OCR tiers, falling back to vision", query)
	visionStart := time.Now()
	res := r.visionFallback(window)
	methodsTried = append(methodsTried, MethodAttempt{Method: string(TierVision), Success: res.Found, ElapsedMs: time.Since(visionStart).Milliseconds()})
	res.MethodsTried = methodsTried
	res.ElapsedMs = time.Since(start).Milliseconds()
	return res
}

func (r *Resolver) tryUIA(root uintptr, query string) *Result {
	matches := r.uia.Find(root, query, "", 15, 10)
	if len(matches) == 0 {
		return nil
	}
	best := matches[0]
	if best.Score > strongMatchThreshold {
		return &Result{Tier: TierUIA, Found: true, Node: best.Node}
	}
	if best.Score >= partialMatchThreshold {
		return &Result{Tier: TierUIA, Found: true, Node: best.Node, Partials: matches}
	}
	return nil
}

func (r *Resolver) tryOCR(window, query string) *Result {
	frame, err := r.capture.Display()
	if err != nil {
		return nil
	}
	ocrRes, err := r.ocr.Recognize(frame, "en")
	if err != nil {
		return nil
	}

	lowerQuery := strings.ToLower(query)
	for _, word := range ocrRes.Words {
		if strings.Contains(strings.ToLower(word.Text), lowerQuery) {
			return &Result{
				Tier:  TierOCR,
				Found: true,
				Point: &Point{X: word.X + word.W/2, Y: word.Y + word.H/2},
			}
		}
	}
	return nil
}

func (r *Resolver) visionFallback(window string) *Result {
	frame, err := r.capture.Display()
	if err != nil {
		return &Result{Tier: TierVision, Found: false, Directive: "capture failed: " + err.Error()}
	}
	return &Result{
		Tier:      TierVision,
		Found:     true,
		ImageB64:  frame.Base64,
		Directive: "no accessibility or OCR match; visually locate the target in this screenshot",
	}
}

// clickUIA performs the silent invoke path for a UIA hit.
func (r *Resolver) clickUIA(node *uia.Node) *ClickResult {
	if r.access == nil || node == nil {
		return &ClickResult{Attempted: false}
	}
	if err := r.access.Invoke(node.Handle); err != nil {
		return &ClickResult{Attempted: true, Method: "invoke", Error: err.Error()}
	}
	return &ClickResult{Attempted: true, Method: "invoke"}
}

// clickPoint performs the coordinate click path for an OCR hit.
func (r *Resolver) clickPoint(p *Point) *ClickResult {
	if r.synth == nil || p == nil {
		return &ClickResult{Attempted: false}
	}
	r.synth.MoveTo(p.X, p.Y)
	r.synth.Click(p.X, p.Y, input.ButtonLeft, false)
	return &ClickResult{Attempted: true, Method: "coordinate"}
}
