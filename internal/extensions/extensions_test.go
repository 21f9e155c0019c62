package extensions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstallListUninstall(t *testing.T) {
	reg, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, reg.Install("screen-reader", "1.0.0", "local", []string{"clipboard_write"}))
	list, err := reg.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "screen-reader", list[0].Name)

	require.NoError(t, reg.Uninstall("screen-reader"))
	list, err = reg.List()
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestUninstallUnknownErrors(t *testing.T) {
	reg, err := Open(t.TempDir())
	require.NoError(t, err)
	require.Error(t, reg.Uninstall("nope"))
}

func TestAuditFlagsSensitivePermissions(t *testing.T) {
	reg, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, reg.Install("safe-plugin", "1.0.0", "local", []string{"read_tree"}))
	require.NoError(t, reg.Install("risky-plugin", "1.0.0", "local", []string{"run_command", "network"}))

	findings, err := reg.Audit()
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, "risky-plugin", findings[0].Name)
	require.ElementsMatch(t, []string{"run_command", "network"}, findings[0].Concerning)
}
