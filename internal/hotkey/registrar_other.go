//go:build !windows

package hotkey

// noopRegistrar satisfies Registrar on platforms with no global hot-key
// facility wired up, so the rest of the engine still builds and tests.
type noopRegistrar struct{}

// NewWin32Registrar returns a no-op Registrar off Windows.
func NewWin32Registrar() *noopRegistrar { return &noopRegistrar{} }

func (*noopRegistrar) Register(id int, combo Combo, fn func()) error { return nil }
func (*noopRegistrar) Unregister(id int) error                       { return nil }
func (*noopRegistrar) Close() error                                  { return nil }
