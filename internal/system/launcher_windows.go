//go:build windows

package system

import "os/exec"

// WindowsLauncher launches applications through `cmd /c start`, which
// resolves PATH, file associations, and Start-Menu-registered app names
// the same way a user double-click would.
type WindowsLauncher struct{}

// NewLauncher builds the platform Launcher.
func NewLauncher() Launcher { return WindowsLauncher{} }

func (WindowsLauncher) Launch(name string, args []string) error {
	argv := append([]string{"/c", "start", "", name}, args...)
	return exec.Command("cmd", argv...).Start()
}
