package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func excelFactory(appName string) (Handle, error) {
	return &fakeHandle{
		allowed: map[string]bool{"ActiveWorkbook": true},
		values:  map[string]any{"ActiveWorkbook": "Book1.xlsx"},
	}, nil
}

func TestRunSuccess(t *testing.T) {
	r := New(map[string]Factory{"excel": excelFactory})
	res := r.Run(context.Background(), "excel", "result = app.ActiveWorkbook", time.Second)
	require.True(t, res.Success)
	require.Equal(t, "Book1.xlsx", res.Result)
}

func TestRunUnsupportedApp(t *testing.T) {
	r := New(map[string]Factory{"excel": excelFactory})
	res := r.Run(context.Background(), "photoshop", "result = 1", time.Second)
	require.NotEmpty(t, res.Error)
}

func TestRunRejectsImport(t *testing.T) {
	r := New(map[string]Factory{"excel": excelFactory})
	res := r.Run(context.Background(), "excel", "import os\nresult = 1", time.Second)
	require.Contains(t, res.Error, "import")
}

func TestRunRejectsDunder(t *testing.T) {
	r := New(map[string]Factory{"excel": excelFactory})
	res := r.Run(context.Background(), "excel", "x = app.__class__.__bases__", time.Second)
	require.Contains(t, res.Error, "__class__")
}

func TestRunRejectsEval(t *testing.T) {
	r := New(map[string]Factory{"excel": excelFactory})
	res := r.Run(context.Background(), "excel", "result = eval('1+1')", time.Second)
	require.Contains(t, res.Error, "eval")
}

func TestRunTimesOut(t *testing.T) {
	r := New(map[string]Factory{"excel": excelFactory})
	script := "total = 0\nfor i in range(5000):\n    for j in range(5000):\n        total = total + 1\nresult = total"
	res := r.Run(context.Background(), "excel", script, 5*time.Millisecond)
	require.Contains(t, res.Error, "timed out")
}
