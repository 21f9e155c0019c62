//go:build windows

package audio

import (
	"context"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMciSendStringW    = winmm.NewProc("mciSendStringW")
)

// MCIPlayer plays audio files through the Windows MCI command interface —
// the same zero-extra-dependency approach the original tools used for
// native MP3/WAV playback.
type MCIPlayer struct{}

// NewMCIPlayer builds a Player backed by winmm's MCI string interface.
func NewMCIPlayer() *MCIPlayer { return &MCIPlayer{} }

func mciSendString(cmd string) error {
	ptr, err := syscall.UTF16PtrFromString(cmd)
	if err != nil {
		return err
	}
	ret, _, _ := procMciSendStringW.Call(uintptr(unsafe.Pointer(ptr)), 0, 0, 0)
	if ret != 0 {
		return fmt.Errorf("mci command %q failed (%d)", cmd, ret)
	}
	return nil
}

// Play opens path as an MCI alias, plays it synchronously, and closes it.
func (p *MCIPlayer) Play(ctx context.Context, path string) error {
	const alias = "wardenplayback"
	if err := mciSendString(fmt.Sprintf(`open "%s" alias %s`, path, alias)); err != nil {
		return err
	}
	defer mciSendString("close " + alias)

	done := make(chan error, 1)
	go func() {
		done <- mciSendString("play " + alias + " wait")
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		mciSendString("stop " + alias)
		return ctx.Err()
	}
}
