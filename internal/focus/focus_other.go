//go:build !windows

package focus

// Non-Windows builds exist for development and CI only; the engine itself
// is a Windows desktop automation agent and never ships for other targets.

var fakeForeground uintptr = 1

func getForegroundWindow() (uintptr, string) { return fakeForeground, "dev-stub-window" }
func windowTitle(uintptr) string             { return "dev-stub-window" }
func isWindow(hwnd uintptr) bool              { return hwnd != 0 }
func setForegroundWindow(uintptr) bool        { return true }
