//go:build !windows

package input

// SendInputSynthesizer is a no-op on non-Windows builds; the engine only
// ever ships for Windows. This exists for development and CI compilation.
type SendInputSynthesizer struct{}

func (SendInputSynthesizer) MoveTo(x, y int)                                  {}
func (SendInputSynthesizer) Click(x, y int, button ClickButton, double bool)  {}
func (SendInputSynthesizer) TypeText(text string)                            {}
func (SendInputSynthesizer) KeyPress(key string, modifiers []string)         {}
