// Package uia implements the UIA Accessor: bounded-depth accessibility-tree
// traversal and fuzzy multi-property element search. True UIA COM pattern
// invocation has no binding in the corpus this engine is built from, so the
// tree is approximated by walking native window handles (EnumChildWindows)
// and their class/text/style properties — documented in DESIGN.md as a
// grounding-constrained substitute for the full COM automation tree.
package uia

// Node is one element of the accessibility tree.
type Node struct {
	Handle       uintptr
	Name         string
	ControlType  string
	AutomationID string
	ClassName    string
	Enabled      bool
	Visible      bool
	Value        string
	Patterns     []string
	Children     []*Node
}

// Match is one scored search result.
type Match struct {
	Node  *Node
	Score float64
}

// Walker enumerates the direct children of a window or element handle. The
// Windows implementation walks native child windows; other platforms use a
// deterministic empty walker so the rest of the engine still builds.
type Walker interface {
	Children(handle uintptr) []*Node
}
