package uia

import (
	"sort"

	"warden/internal/logging"
)

// Accessor performs bounded-depth traversal and fuzzy search over the
// accessibility tree rooted at a window handle.
type Accessor struct {
	walker Walker
}

// New builds an Accessor over the given child-enumeration strategy.
func New(walker Walker) *Accessor {
	return &Accessor{walker: walker}
}

// shortQueryThreshold: per the expanded spec's resolved Open Question,
// queries under this length skip similarity scoring entirely (too much
// false-positive risk) and only match exactly, as a whole word, or by prefix.
const shortQueryThreshold = 3

// Find performs a bounded-depth fuzzy search for query under root, optionally
// restricted to controlType, returning up to maxResults top matches.
func (a *Accessor) Find(root uintptr, query, controlType string, maxDepth, maxResults int) []Match {
	var matches []Match
	shortQuery := len([]rune(query)) < shortQueryThreshold

	var walk func(handle uintptr, depth int)
	walk = func(handle uintptr, depth int) {
		if maxDepth >= 0 && depth > maxDepth {
			return
		}
		for _, child := range a.walker.Children(handle) {
			score := 0.0
			if shortQuery {
				score = scoreExactOrPrefix(child, query)
			} else {
				score = scoreNode(child, query)
			}
			if score > 0 && (controlType == "" || child.ControlType == controlType) {
				matches = append(matches, Match{Node: child, Score: score})
			}
			walk(child.Handle, depth+1)
		}
	}
	walk(root, 0)

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	logging.Get(logging.CategoryUIA).Debug("find %q: %d matches under root=%v", query, len(matches), root)
	return matches
}

func scoreExactOrPrefix(n *Node, query string) float64 {
	best := 0.0
	for _, value := range []string{n.Name, n.AutomationID, n.Value, n.ClassName} {
		s := scoreProperty("exact", query, value)
		if s >= 0.90 && s > best {
			best = s
		}
	}
	return best
}

// Tree serializes the accessibility tree under root, bounded by maxDepth.
// If includeInvisible is false, invisible subtrees are pruned.
func (a *Accessor) Tree(root uintptr, maxDepth int, includeInvisible bool) *Node {
	var build func(handle uintptr, depth int) []*Node
	build = func(handle uintptr, depth int) []*Node {
		if maxDepth >= 0 && depth > maxDepth {
			return nil
		}
		var out []*Node
		for _, child := range a.walker.Children(handle) {
			if !includeInvisible && !child.Visible {
				continue
			}
			child.Children = build(child.Handle, depth+1)
			out = append(out, child)
		}
		return out
	}

	root0 := &Node{Handle: root, Name: "root"}
	root0.Children = build(root, 0)
	return root0
}

// FrameworkDepth selects a traversal depth based on a detected UI
// framework family, as described by the Escalating Resolver's "max_depth
// = auto" rule.
func FrameworkDepth(framework string) int {
	switch framework {
	case "xaml", "win32":
		return 15
	case "winforms":
		return 12
	case "webview":
		return 8
	default:
		return 10
	}
}
