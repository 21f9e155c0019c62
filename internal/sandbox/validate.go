package sandbox

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// forbiddenCalls blocks identifiers whose direct invocation would let a
// script escape the sandbox (reflection, dynamic import, file/process I/O).
var forbiddenCalls = map[string]bool{
	"eval": true, "exec": true, "compile": true, "execfile": true,
	"__import__": true, "open": true, "input": true,
	"globals": true, "locals": true, "vars": true, "dir": true,
	"getattr": true, "setattr": true, "delattr": true, "hasattr": true,
	"type": true, "super": true, "classmethod": true, "staticmethod": true,
	"property": true, "memoryview": true, "bytearray": true,
	"breakpoint": true, "exit": true, "quit": true, "help": true,
}

// forbiddenAttrs blocks dunder attribute access used for sandbox escapes
// (walking from an instance to its class, MRO, or enclosing globals).
var forbiddenAttrs = map[string]bool{
	"__class__": true, "__bases__": true, "__subclasses__": true, "__mro__": true,
	"__builtins__": true, "__globals__": true, "__code__": true, "__func__": true,
	"__self__": true, "__dict__": true, "__init_subclass__": true,
	"__import__": true, "__loader__": true, "__spec__": true,
	"__reduce__": true, "__reduce_ex__": true,
}

// forbiddenModules blocks references to process/OS/network-capable modules,
// whether imported or just named (an import would already be rejected, but
// a bare `os.system(...)` reference is blocked independently).
var forbiddenModules = map[string]bool{
	"os": true, "sys": true, "subprocess": true, "shutil": true, "pathlib": true,
	"importlib": true, "ctypes": true, "socket": true, "http": true, "urllib": true,
	"pickle": true, "shelve": true, "tempfile": true, "glob": true, "signal": true,
}

// ValidationError describes one rejected construct with its source line.
type ValidationError struct {
	Line   uint32
	Reason string
}

func (e ValidationError) String() string {
	return fmt.Sprintf("line %d: %s", e.Line+1, e.Reason)
}

// Validate parses script as Python and walks the resulting AST, returning
// every forbidden construct found. An empty result means the script is safe
// to evaluate in the restricted environment.
func Validate(script string) ([]ValidationError, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(script))
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	defer tree.Close()

	var errs []ValidationError
	walkValidate(tree.RootNode(), []byte(script), &errs)
	return errs, nil
}

func walkValidate(node *sitter.Node, src []byte, errs *[]ValidationError) {
	if node == nil {
		return
	}

	text := func(n *sitter.Node) string { return string(src[n.StartByte():n.EndByte()]) }

	switch node.Type() {
	case "import_statement", "import_from_statement", "future_import_statement":
		*errs = append(*errs, ValidationError{Line: node.StartPoint().Row, Reason: "import statements are forbidden"})

	case "call":
		if fn := node.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" {
			name := text(fn)
			if forbiddenCalls[name] {
				*errs = append(*errs, ValidationError{Line: node.StartPoint().Row, Reason: fmt.Sprintf("calling %q() is forbidden", name)})
			}
		}

	case "attribute":
		attrNode := node.ChildByFieldName("attribute")
		objNode := node.ChildByFieldName("object")
		if attrNode != nil {
			attr := text(attrNode)
			if forbiddenAttrs[attr] {
				*errs = append(*errs, ValidationError{Line: node.StartPoint().Row, Reason: fmt.Sprintf("accessing %q is forbidden", attr)})
			}
			if objNode != nil && objNode.Type() == "identifier" && forbiddenModules[text(objNode)] {
				*errs = append(*errs, ValidationError{Line: node.StartPoint().Row, Reason: fmt.Sprintf("accessing %s.%s is forbidden", text(objNode), attr)})
			}
		}

	case "identifier":
		name := text(node)
		if forbiddenModules[name] && !isAttributeObjectAlready(node) {
			*errs = append(*errs, ValidationError{Line: node.StartPoint().Row, Reason: fmt.Sprintf("referencing %q is forbidden", name)})
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		walkValidate(node.NamedChild(i), src, errs)
	}
}

// isAttributeObjectAlready avoids double-reporting a module identifier both
// as a bare reference and as the object half of an attribute access.
func isAttributeObjectAlready(node *sitter.Node) bool {
	parent := node.Parent()
	return parent != nil && parent.Type() == "attribute" && parent.ChildByFieldName("object") == node
}

// Summarize joins validation errors into one multi-line message, matching
// the teacher stack's truncate-to-a-handful convention for user-facing text.
func Summarize(errs []ValidationError) string {
	var lines []string
	for i, e := range errs {
		if i >= 5 {
			break
		}
		lines = append(lines, "  - "+e.String())
	}
	return fmt.Sprintf("script validation failed (%d issue(s)):\n%s", len(errs), strings.Join(lines, "\n"))
}
