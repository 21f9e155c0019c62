package sandbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	allowed map[string]bool
	values  map[string]any
}

func (h *fakeHandle) Allowed(method string) bool { return h.allowed[method] }

func (h *fakeHandle) Call(method string, args []any) (any, error) {
	if v, ok := h.values[method]; ok {
		return v, nil
	}
	return nil, nil
}

func evalScript(t *testing.T, script string, handle Handle) any {
	t.Helper()
	tree, err := parse(script)
	require.NoError(t, err)
	defer tree.Close()
	ev := newEvaluator([]byte(script), handle)
	val, err := ev.Eval(tree.RootNode())
	require.NoError(t, err)
	return val
}

func TestEvalArithmeticAndLoop(t *testing.T) {
	h := &fakeHandle{allowed: map[string]bool{}, values: map[string]any{}}
	val := evalScript(t, "total = 0\nfor i in range(5):\n    total = total + i\nresult = total", h)
	require.EqualValues(t, 10, val)
}

func TestEvalAppCallWhitelisted(t *testing.T) {
	h := &fakeHandle{
		allowed: map[string]bool{"ActiveWorkbook": true},
		values:  map[string]any{"ActiveWorkbook": "Book1.xlsx"},
	}
	val := evalScript(t, "result = app.ActiveWorkbook", h)
	require.Equal(t, "Book1.xlsx", val)
}

func TestEvalAppCallNotWhitelisted(t *testing.T) {
	h := &fakeHandle{allowed: map[string]bool{}, values: map[string]any{}}
	tree, err := parse("result = app.Quit()")
	require.NoError(t, err)
	defer tree.Close()
	ev := newEvaluator([]byte("result = app.Quit()"), h)
	_, err = ev.Eval(tree.RootNode())
	require.Error(t, err)
	require.Contains(t, err.Error(), "not permitted")
}

func TestEvalIfElse(t *testing.T) {
	h := &fakeHandle{}
	val := evalScript(t, "x = 5\nif x > 10:\n    result = 'big'\nelse:\n    result = 'small'", h)
	require.Equal(t, "small", val)
}

func TestEvalStringConcat(t *testing.T) {
	h := &fakeHandle{}
	val := evalScript(t, "result = 'a' + 'b'", h)
	require.Equal(t, "ab", val)
}
