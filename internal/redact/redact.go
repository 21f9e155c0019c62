// Package redact implements the Output Redactor: pattern-based scrubbing of
// sensitive data (credit cards, SSNs, emails, phone numbers, password field
// values) from any text before it is returned to an agent.
package redact

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"warden/internal/config"
)

var markers = map[string]string{
	"credit_card":    "[CREDIT-CARD-REDACTED]",
	"ssn":            "[SSN-REDACTED]",
	"email":          "[EMAIL-REDACTED]",
	"phone_us":       "[PHONE-REDACTED]",
	"password_field": "[PASSWORD-FIELD]",
}

const defaultMarker = "[REDACTED]"

var passwordIndicators = []string{
	"password", "passwd", "pwd", "pin", "secret",
	"contraseña", "clave",
}

// Redactor scans text for sensitive-data patterns, loaded from the Policy
// Snapshot, and replaces matches with a marker naming the pattern class.
type Redactor struct {
	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
	order    []string
	count    int64
}

// New compiles the sensitive-value patterns from cfg. Patterns that fail to
// compile are skipped; redaction degrades gracefully rather than failing
// the caller.
func New(cfg *config.Config) *Redactor {
	r := &Redactor{patterns: make(map[string]*regexp.Regexp)}
	names := make([]string, 0, len(cfg.Security.SensitiveValuePatterns))
	for name := range cfg.Security.SensitiveValuePatterns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		re, err := regexp.Compile(cfg.Security.SensitiveValuePatterns[name])
		if err != nil {
			continue
		}
		r.patterns[name] = re
		r.order = append(r.order, name)
	}
	return r
}

// Sanitize replaces every sensitive-pattern match in text with its marker.
func (r *Redactor) Sanitize(text string) string {
	if text == "" {
		return text
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	sanitized := text
	var redactions int64
	for _, name := range r.order {
		marker := replacementFor(name)
		new := r.patterns[name].ReplaceAllStringFunc(sanitized, func(string) string {
			redactions++
			return marker
		})
		sanitized = new
	}
	if redactions > 0 {
		atomic.AddInt64(&r.count, redactions)
	}
	return sanitized
}

// SanitizeTree recursively sanitizes every string leaf of an arbitrary JSON-
// like value (map, slice, or string), leaving other types unchanged. Used
// on UI tree dumps and OCR word-box results before they leave the engine.
func (r *Redactor) SanitizeTree(v any) any {
	switch val := v.(type) {
	case string:
		return r.Sanitize(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = r.SanitizeTree(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = r.SanitizeTree(sub)
		}
		return out
	default:
		return v
	}
}

// IsPasswordField reports whether a UI element looks like a password input,
// by control type or by name/automation-id/class-name indicators. Password
// fields are never read or forwarded to an agent.
func IsPasswordField(controlType string, properties map[string]string) bool {
	if strings.Contains(strings.ToLower(controlType), "password") {
		return true
	}
	name := strings.ToLower(properties["name"])
	autoID := strings.ToLower(properties["automation_id"])
	className := strings.ToLower(properties["class_name"])

	for _, indicator := range passwordIndicators {
		if strings.Contains(name, indicator) || strings.Contains(autoID, indicator) || strings.Contains(className, indicator) {
			return true
		}
	}
	return false
}

// TotalRedactions returns the number of redactions made since startup.
func (r *Redactor) TotalRedactions() int64 {
	return atomic.LoadInt64(&r.count)
}

// ActivePatterns returns the names of patterns currently compiled, sorted.
func (r *Redactor) ActivePatterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func replacementFor(name string) string {
	if marker, ok := markers[name]; ok {
		return marker
	}
	return defaultMarker
}
