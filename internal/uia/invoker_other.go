//go:build !windows

package uia

// Invoker is a no-op on non-Windows builds; the engine only ever ships for
// Windows. This exists for development and CI compilation only.
type Invoker struct{}

func (Invoker) Invoke(handle uintptr) error                   { return nil }
func (Invoker) SetValue(handle uintptr, text string) error     { return nil }
func (Invoker) GetValue(handle uintptr) (string, bool)          { return "", false }
