//go:build !windows

package system

import "os/exec"

// PosixLauncher launches applications as a direct child process, since
// the `start`-verb-over-cmd.exe approach has no equivalent off Windows.
type PosixLauncher struct{}

// NewLauncher builds the platform Launcher.
func NewLauncher() Launcher { return PosixLauncher{} }

func (PosixLauncher) Launch(name string, args []string) error {
	return exec.Command(name, args...).Start()
}
