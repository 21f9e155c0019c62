package system

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeLauncher struct {
	name string
	args []string
	err  error
}

func (f *fakeLauncher) Launch(name string, args []string) error {
	f.name = name
	f.args = args
	return f.err
}

func TestOpenApplicationDelegatesToLauncher(t *testing.T) {
	launcher := &fakeLauncher{}
	iface := New(launcher)

	require.NoError(t, iface.OpenApplication("notepad", []string{"file.txt"}))
	require.Equal(t, "notepad", launcher.name)
	require.Equal(t, []string{"file.txt"}, launcher.args)
}

func TestRunCommandCapturesStdout(t *testing.T) {
	iface := New(&fakeLauncher{})
	shell := ""
	command := "echo safe"
	if runtime.GOOS == "windows" {
		command = "echo safe"
	}

	result, err := iface.RunCommand(context.Background(), command, shell)
	require.NoError(t, err)
	require.Contains(t, result.Stdout, "safe")
	require.Equal(t, 0, result.ExitCode)
}

func TestRunCommandReportsNonZeroExit(t *testing.T) {
	iface := New(&fakeLauncher{})
	command := "exit 3"
	if runtime.GOOS != "windows" {
		command = "exit 3"
	}

	_, err := iface.RunCommand(context.Background(), command, "")
	require.Error(t, err)
}

func TestClipboardHistoryReturnsNewestFirst(t *testing.T) {
	iface := New(&fakeLauncher{})
	iface.mu.Lock()
	iface.history = nil
	iface.mu.Unlock()

	iface.history = append(iface.history, "second")
	iface.history = append([]string{"third"}, iface.history...)

	got := iface.ClipboardHistory(10)
	require.Equal(t, []string{"third", "second"}, got)
}

func TestSystemInfoReportsHostPlatform(t *testing.T) {
	info := SystemInfo()
	require.Equal(t, runtime.GOOS, info.OS)
	require.Greater(t, info.NumCPU, 0)
}
