//go:build !windows

package capture

import "image"

// GDIGrabber is the non-Windows stub: it produces blank frames (1920x1080 for
// the display, 800x600 for a window, the requested size for a rectangle).
// The engine only ever ships for Windows; this exists for development and CI
// compilation only.
type GDIGrabber struct{}

func (GDIGrabber) GrabDisplay() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1920, 1080)), nil
}

func (GDIGrabber) GrabWindow(handle uintptr) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 800, 600)), nil
}

func (GDIGrabber) GrabRect(r Rect) (image.Image, error) {
	if r.W <= 0 {
		r.W = 1
	}
	if r.H <= 0 {
		r.H = 1
	}
	return image.NewRGBA(image.Rect(0, 0, r.W, r.H)), nil
}
