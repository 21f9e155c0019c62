package sandbox

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Handle is the capability-restricted facade bound as `app` in a sandboxed
// script. Only method names present in Allowed are callable; everything
// else (COM handles, window handles, device handles) stays behind this
// interface so the script never touches Go values directly.
type Handle interface {
	Call(method string, args []any) (any, error)
	Allowed(method string) bool
}

type scriptError struct{ msg string }

func (e scriptError) Error() string { return e.msg }

func fail(format string, args ...any) error { return scriptError{msg: fmt.Sprintf(format, args...)} }

// env is the evaluator's variable scope; app and result always live here.
type env map[string]any

// evaluator walks a validated Python-subset AST against a single Handle.
type evaluator struct {
	src []byte
	env env
}

func newEvaluator(src []byte, app Handle) *evaluator {
	return &evaluator{src: src, env: env{"app": app, "result": nil}}
}

func (e *evaluator) text(n *sitter.Node) string { return string(e.src[n.StartByte():n.EndByte()]) }

// Eval runs script's AST root, returning the final value of the `result`
// variable, or an error for the first runtime fault encountered.
func (e *evaluator) Eval(root *sitter.Node) (any, error) {
	if err := e.execBlock(root); err != nil {
		return nil, err
	}
	return e.env["result"], nil
}

func (e *evaluator) execBlock(node *sitter.Node) error {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if err := e.execStmt(node.NamedChild(i)); err != nil {
			return err
		}
	}
	return nil
}

func (e *evaluator) execStmt(node *sitter.Node) error {
	switch node.Type() {
	case "expression_statement":
		child := node.NamedChild(0)
		if child == nil {
			return nil
		}
		if child.Type() == "assignment" {
			return e.execAssignment(child)
		}
		_, err := e.evalExpr(child)
		return err

	case "if_statement":
		return e.execIf(node)

	case "for_statement":
		return e.execFor(node)

	case "pass_statement", "comment":
		return nil

	default:
		return fail("unsupported statement: %s", node.Type())
	}
}

func (e *evaluator) execAssignment(node *sitter.Node) error {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil {
		return fail("malformed assignment")
	}
	if left.Type() != "identifier" {
		return fail("only simple variable assignment is supported")
	}
	val, err := e.evalExpr(right)
	if err != nil {
		return err
	}
	e.env[e.text(left)] = val
	return nil
}

func (e *evaluator) execIf(node *sitter.Node) error {
	cond := node.ChildByFieldName("condition")
	body := node.ChildByFieldName("consequence")
	val, err := e.evalExpr(cond)
	if err != nil {
		return err
	}
	if truthy(val) {
		return e.execBlock(body)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "elif_clause":
			ec := child.ChildByFieldName("condition")
			ev, err := e.evalExpr(ec)
			if err != nil {
				return err
			}
			if truthy(ev) {
				return e.execBlock(child.ChildByFieldName("consequence"))
			}
		case "else_clause":
			return e.execBlock(child.ChildByFieldName("body"))
		}
	}
	return nil
}

func (e *evaluator) execFor(node *sitter.Node) error {
	left := node.ChildByFieldName("left")
	rightExpr := node.ChildByFieldName("right")
	body := node.ChildByFieldName("body")
	if left == nil || left.Type() != "identifier" {
		return fail("only a single loop variable is supported")
	}

	iterable, err := e.evalExpr(rightExpr)
	if err != nil {
		return err
	}
	items, ok := iterable.([]any)
	if !ok {
		return fail("for loop requires an iterable")
	}

	name := e.text(left)
	for _, item := range items {
		e.env[name] = item
		if err := e.execBlock(body); err != nil {
			return err
		}
	}
	return nil
}

func (e *evaluator) evalExpr(node *sitter.Node) (any, error) {
	switch node.Type() {
	case "integer":
		n, err := strconv.ParseInt(e.text(node), 0, 64)
		if err != nil {
			return nil, fail("bad integer literal: %s", e.text(node))
		}
		return n, nil

	case "float":
		f, err := strconv.ParseFloat(e.text(node), 64)
		if err != nil {
			return nil, fail("bad float literal: %s", e.text(node))
		}
		return f, nil

	case "true":
		return true, nil
	case "false":
		return false, nil
	case "none":
		return nil, nil

	case "string":
		return decodeString(e.text(node)), nil

	case "identifier":
		val, ok := e.env[e.text(node)]
		if !ok {
			return nil, fail("undefined variable: %s", e.text(node))
		}
		return val, nil

	case "attribute":
		return e.evalAttribute(node)

	case "call":
		return e.evalCall(node)

	case "binary_operator":
		return e.evalBinary(node)

	case "comparison_operator":
		return e.evalComparison(node)

	case "boolean_operator":
		return e.evalBoolean(node)

	case "not_operator":
		val, err := e.evalExpr(node.NamedChild(0))
		if err != nil {
			return nil, err
		}
		return !truthy(val), nil

	case "unary_operator":
		return e.evalUnary(node)

	case "list", "tuple":
		var items []any
		for i := 0; i < int(node.NamedChildCount()); i++ {
			v, err := e.evalExpr(node.NamedChild(i))
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil

	case "parenthesized_expression":
		return e.evalExpr(node.NamedChild(0))

	case "subscript":
		return e.evalSubscript(node)

	default:
		return nil, fail("unsupported expression: %s", node.Type())
	}
}

func (e *evaluator) evalAttribute(node *sitter.Node) (any, error) {
	// Attribute reads outside of a call (e.g. `x = app.ActiveWorkbook`) are
	// modeled as zero-arg Call()s against the handle; the script never sees
	// a distinct "property get" form.
	obj := node.ChildByFieldName("object")
	attr := node.ChildByFieldName("attribute")
	if obj == nil || obj.Type() != "identifier" || e.text(obj) != "app" {
		return nil, fail("attribute access only supported on app")
	}
	h, ok := e.env["app"].(Handle)
	if !ok {
		return nil, fail("no app handle bound")
	}
	method := e.text(attr)
	if !h.Allowed(method) {
		return nil, fail("app.%s is not permitted for this application", method)
	}
	return h.Call(method, nil)
}

func (e *evaluator) evalCall(node *sitter.Node) (any, error) {
	fn := node.ChildByFieldName("function")
	argsNode := node.ChildByFieldName("arguments")

	var args []any
	if argsNode != nil {
		for i := 0; i < int(argsNode.NamedChildCount()); i++ {
			v, err := e.evalExpr(argsNode.NamedChild(i))
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
	}

	switch fn.Type() {
	case "identifier":
		return e.callBuiltin(e.text(fn), args)

	case "attribute":
		obj := fn.ChildByFieldName("object")
		attr := fn.ChildByFieldName("attribute")
		if obj == nil || obj.Type() != "identifier" || e.text(obj) != "app" {
			return nil, fail("method calls only supported on app")
		}
		h, ok := e.env["app"].(Handle)
		if !ok {
			return nil, fail("no app handle bound")
		}
		method := e.text(attr)
		if !h.Allowed(method) {
			return nil, fail("app.%s is not permitted for this application", method)
		}
		return h.Call(method, args)

	default:
		return nil, fail("unsupported call target: %s", fn.Type())
	}
}

func (e *evaluator) evalSubscript(node *sitter.Node) (any, error) {
	val, err := e.evalExpr(node.ChildByFieldName("value"))
	if err != nil {
		return nil, err
	}
	subNode := node.ChildByFieldName("subscript")
	if subNode == nil && node.NamedChildCount() > 1 {
		subNode = node.NamedChild(1)
	}
	idxVal, err := e.evalExpr(subNode)
	if err != nil {
		return nil, err
	}
	idx, ok := toInt(idxVal)
	if !ok {
		return nil, fail("subscript index must be an integer")
	}
	items, ok := val.([]any)
	if !ok {
		return nil, fail("subscript target is not a list")
	}
	if idx < 0 || idx >= len(items) {
		return nil, fail("index out of range")
	}
	return items[idx], nil
}

func (e *evaluator) evalUnary(node *sitter.Node) (any, error) {
	op := node.Child(0)
	val, err := e.evalExpr(node.NamedChild(0))
	if err != nil {
		return nil, err
	}
	if op != nil && e.text(op) == "-" {
		switch n := val.(type) {
		case int64:
			return -n, nil
		case float64:
			return -n, nil
		}
	}
	return val, nil
}

func (e *evaluator) evalBinary(node *sitter.Node) (any, error) {
	left, err := e.evalExpr(node.ChildByFieldName("left"))
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(node.ChildByFieldName("right"))
	if err != nil {
		return nil, err
	}
	op := e.text(node.ChildByFieldName("operator"))
	return applyBinary(op, left, right)
}

func applyBinary(op string, left, right any) (any, error) {
	if ls, ok := left.(string); ok && op == "+" {
		if rs, ok := right.(string); ok {
			return ls + rs, nil
		}
	}
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, fail("arithmetic requires numeric operands")
	}
	li, liInt := left.(int64)
	ri, riInt := right.(int64)
	switch op {
	case "+":
		if liInt && riInt {
			return li + ri, nil
		}
		return lf + rf, nil
	case "-":
		if liInt && riInt {
			return li - ri, nil
		}
		return lf - rf, nil
	case "*":
		if liInt && riInt {
			return li * ri, nil
		}
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, fail("division by zero")
		}
		return lf / rf, nil
	case "%":
		if liInt && riInt && ri != 0 {
			return li % ri, nil
		}
		return nil, fail("unsupported modulo operands")
	default:
		return nil, fail("unsupported operator: %s", op)
	}
}

func (e *evaluator) evalComparison(node *sitter.Node) (any, error) {
	left, err := e.evalExpr(node.Child(0))
	if err != nil {
		return nil, err
	}
	op := e.text(node.Child(1))
	right, err := e.evalExpr(node.Child(2))
	if err != nil {
		return nil, err
	}
	return compare(op, left, right)
}

func compare(op string, left, right any) (bool, error) {
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		switch op {
		case "==":
			return lf == rf, nil
		case "!=":
			return lf != rf, nil
		case "<":
			return lf < rf, nil
		case "<=":
			return lf <= rf, nil
		case ">":
			return lf > rf, nil
		case ">=":
			return lf >= rf, nil
		}
	}
	ls, lsok := left.(string)
	rs, rsok := right.(string)
	if lsok && rsok {
		switch op {
		case "==":
			return ls == rs, nil
		case "!=":
			return ls != rs, nil
		case "<":
			return ls < rs, nil
		case "<=":
			return ls <= rs, nil
		case ">":
			return ls > rs, nil
		case ">=":
			return ls >= rs, nil
		}
	}
	return false, fail("unsupported comparison operands")
}

func (e *evaluator) evalBoolean(node *sitter.Node) (any, error) {
	left, err := e.evalExpr(node.ChildByFieldName("left"))
	if err != nil {
		return nil, err
	}
	op := e.text(node.ChildByFieldName("operator"))
	if op == "and" && !truthy(left) {
		return left, nil
	}
	if op == "or" && truthy(left) {
		return left, nil
	}
	return e.evalExpr(node.ChildByFieldName("right"))
}

func (e *evaluator) callBuiltin(name string, args []any) (any, error) {
	switch name {
	case "print":
		return nil, nil // silenced, matching the restricted-builtins model
	case "len":
		if len(args) != 1 {
			return nil, fail("len() takes exactly one argument")
		}
		switch v := args[0].(type) {
		case []any:
			return int64(len(v)), nil
		case string:
			return int64(len(v)), nil
		}
		return nil, fail("len() unsupported for this type")
	case "str":
		if len(args) != 1 {
			return nil, fail("str() takes exactly one argument")
		}
		return toDisplayString(args[0]), nil
	case "int":
		if len(args) != 1 {
			return nil, fail("int() takes exactly one argument")
		}
		i, ok := toInt(args[0])
		if !ok {
			return nil, fail("int() could not convert argument")
		}
		return int64(i), nil
	case "float":
		if len(args) != 1 {
			return nil, fail("float() takes exactly one argument")
		}
		f, ok := toFloat(args[0])
		if !ok {
			return nil, fail("float() could not convert argument")
		}
		return f, nil
	case "abs":
		if len(args) != 1 {
			return nil, fail("abs() takes exactly one argument")
		}
		f, _ := toFloat(args[0])
		if f < 0 {
			f = -f
		}
		if _, isInt := args[0].(int64); isInt {
			return int64(f), nil
		}
		return f, nil
	case "min", "max":
		if len(args) == 0 {
			return nil, fail("%s() requires at least one argument", name)
		}
		best := args[0]
		bf, _ := toFloat(best)
		for _, a := range args[1:] {
			af, _ := toFloat(a)
			if (name == "min" && af < bf) || (name == "max" && af > bf) {
				best, bf = a, af
			}
		}
		return best, nil
	case "sum":
		if len(args) != 1 {
			return nil, fail("sum() takes exactly one argument")
		}
		items, ok := args[0].([]any)
		if !ok {
			return nil, fail("sum() requires a list")
		}
		var total float64
		allInt := true
		for _, item := range items {
			f, ok := toFloat(item)
			if !ok {
				return nil, fail("sum() requires numeric items")
			}
			if _, isInt := item.(int64); !isInt {
				allInt = false
			}
			total += f
		}
		if allInt {
			return int64(total), nil
		}
		return total, nil
	case "range":
		return evalRange(args)
	case "round":
		if len(args) < 1 {
			return nil, fail("round() requires an argument")
		}
		f, _ := toFloat(args[0])
		return int64(f + 0.5), nil
	case "bool":
		if len(args) != 1 {
			return nil, fail("bool() takes exactly one argument")
		}
		return truthy(args[0]), nil
	case "isinstance":
		return true, nil
	default:
		return nil, fail("call to %q is not permitted", name)
	}
}

func evalRange(args []any) ([]any, error) {
	toI := func(v any) (int64, error) {
		i, ok := toInt(v)
		if !ok {
			return 0, fail("range() requires integer arguments")
		}
		return int64(i), nil
	}
	var start, stop, step int64 = 0, 0, 1
	var err error
	switch len(args) {
	case 1:
		stop, err = toI(args[0])
	case 2:
		start, err = toI(args[0])
		if err == nil {
			stop, err = toI(args[1])
		}
	case 3:
		start, err = toI(args[0])
		if err == nil {
			stop, err = toI(args[1])
		}
		if err == nil {
			step, err = toI(args[2])
		}
	default:
		return nil, fail("range() takes 1 to 3 arguments")
	}
	if err != nil {
		return nil, err
	}
	if step == 0 {
		return nil, fail("range() step must not be zero")
	}
	var out []any
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, i)
		}
	}
	return out, nil
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case int64:
		return val != 0
	case float64:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	default:
		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func toDisplayString(v any) string {
	switch n := v.(type) {
	case nil:
		return "None"
	case string:
		return n
	case bool:
		if n {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", n)
	}
}

func decodeString(lit string) string {
	lit = strings.TrimPrefix(lit, "r")
	lit = strings.TrimPrefix(lit, "f")
	if strings.HasPrefix(lit, `"""`) || strings.HasPrefix(lit, "'''") {
		return lit[3 : len(lit)-3]
	}
	if len(lit) >= 2 {
		return lit[1 : len(lit)-1]
	}
	return lit
}

// parse builds a tree-sitter Python AST from script; callers must Close()
// the returned tree once done with it.
func parse(script string) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return parser.ParseCtx(context.Background(), nil, []byte(script))
}
