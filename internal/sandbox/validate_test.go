package sandbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRejectsImport(t *testing.T) {
	errs, err := Validate("import os\nresult = 1")
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	require.Contains(t, Summarize(errs), "import")
}

func TestValidateRejectsDunderAccess(t *testing.T) {
	errs, err := Validate("x = app.__class__.__bases__")
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	require.Contains(t, Summarize(errs), "__class__")
}

func TestValidateRejectsEval(t *testing.T) {
	errs, err := Validate("result = eval('1+1')")
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	require.Contains(t, Summarize(errs), "eval")
}

func TestValidateRejectsModuleReference(t *testing.T) {
	errs, err := Validate("result = os.getcwd()")
	require.NoError(t, err)
	require.NotEmpty(t, errs)
}

func TestValidateAcceptsCleanScript(t *testing.T) {
	errs, err := Validate("total = 0\nfor i in range(3):\n    total = total + i\nresult = total")
	require.NoError(t, err)
	require.Empty(t, errs)
}
