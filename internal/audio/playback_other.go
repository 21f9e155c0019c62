//go:build !windows

package audio

import "context"

// MCIPlayer is a no-op Player off Windows, where MCI does not exist.
type MCIPlayer struct{}

// NewMCIPlayer returns a no-op Player off Windows.
func NewMCIPlayer() *MCIPlayer { return &MCIPlayer{} }

func (p *MCIPlayer) Play(ctx context.Context, path string) error { return nil }
