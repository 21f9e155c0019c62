//go:build !windows

package window

// Win32System is a no-op on non-Windows builds; the engine only ever ships
// for Windows. This exists for development and CI compilation only.
type Win32System struct{}

func (Win32System) ListWindows() []Info                            { return nil }
func (Win32System) Apply(handle uintptr, action Action) error      { return nil }
func (Win32System) Move(handle uintptr, x, y, w, h int) error      { return nil }
