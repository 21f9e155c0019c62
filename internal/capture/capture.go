// Package capture implements the Capture Subsystem: full-display, window,
// and rectangle screen grabs encoded as base64 JPEG. There is no
// third-party imaging library anywhere in the corpus this engine is built
// from, so JPEG encoding uses the standard library's image/jpeg — the one
// ambient concern in this engine with no ecosystem substitute to wire.
package capture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"warden/internal/logging"
)

// changeThreshold is the summed R+G+B difference (each channel out of 255)
// above which a pixel counts as changed; it absorbs JPEG recompression noise
// between two otherwise-identical frames.
const changeThreshold = 30

// changePercentThreshold is the percentage (0-100) of changed pixels that a
// DiffReport's ChangePercent must exceed to report Changed.
const changePercentThreshold = 0.5

// DiffReport is the pixel-level comparison between two captured frames.
type DiffReport struct {
	ChangedPixels int     `json:"changed_pixels"`
	TotalPixels   int     `json:"total_pixels"`
	ChangePercent float64 `json:"change_percent"`
	Changed       bool    `json:"changed"`
	ChangedRegion *Rect   `json:"changed_region,omitempty"`
}

// Diff decodes before and after's base64 JPEG payloads and computes a
// pixel-level difference over their overlapping region, clipping to the
// smaller of the two frames' dimensions if they differ.
func Diff(before, after *Result) (*DiffReport, error) {
	beforeImg, err := decodeBase64JPEG(before.Base64)
	if err != nil {
		return nil, fmt.Errorf("decode before frame: %w", err)
	}
	afterImg, err := decodeBase64JPEG(after.Base64)
	if err != nil {
		return nil, fmt.Errorf("decode after frame: %w", err)
	}

	bb, ab := beforeImg.Bounds(), afterImg.Bounds()
	w, h := bb.Dx(), bb.Dy()
	if ab.Dx() < w {
		w = ab.Dx()
	}
	if ab.Dy() < h {
		h = ab.Dy()
	}

	var changed int
	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if pixelDelta(beforeImg.At(bb.Min.X+x, bb.Min.Y+y), afterImg.At(ab.Min.X+x, ab.Min.Y+y)) > changeThreshold {
				changed++
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	total := w * h
	var percent float64
	if total > 0 {
		percent = float64(changed) / float64(total) * 100
	}

	report := &DiffReport{
		ChangedPixels: changed,
		TotalPixels:   total,
		ChangePercent: percent,
		Changed:       percent > changePercentThreshold,
	}
	if maxX >= 0 {
		report.ChangedRegion = &Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}
	}
	return report, nil
}

func decodeBase64JPEG(b64 string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return jpeg.Decode(bytes.NewReader(raw))
}

// pixelDelta sums the per-channel 8-bit difference between two colors.
func pixelDelta(before, after color.Color) int {
	br, bg, bb2, _ := before.RGBA()
	ar, ag, ab2, _ := after.RGBA()
	return absDelta8(br, ar) + absDelta8(bg, ag) + absDelta8(bb2, ab2)
}

func absDelta8(a, b uint32) int {
	a8, b8 := int(a>>8), int(b>>8)
	if a8 > b8 {
		return a8 - b8
	}
	return b8 - a8
}

// Rect is an explicit capture region in screen coordinates.
type Rect struct {
	X, Y, W, H int
}

// Result is a captured frame, ready to become a tool response content item.
type Result struct {
	Base64  string
	Width   int
	Height  int
	Format  string
}

// Grabber captures pixels from the display. The Windows implementation
// uses GDI BitBlt; other platforms use a deterministic synthetic frame so
// the rest of the engine still builds and tests.
type Grabber interface {
	GrabDisplay() (image.Image, error)
	GrabWindow(handle uintptr) (image.Image, error)
	GrabRect(r Rect) (image.Image, error)
}

// Subsystem is the Capture Subsystem.
type Subsystem struct {
	grabber Grabber
	quality int
}

// New builds a Capture Subsystem using grabber at the given JPEG quality (1-100).
func New(grabber Grabber, quality int) *Subsystem {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Subsystem{grabber: grabber, quality: quality}
}

// Display captures the full (multi-monitor-aware) desktop.
func (s *Subsystem) Display() (*Result, error) {
	img, err := s.grabber.GrabDisplay()
	if err != nil {
		return nil, fmt.Errorf("capture display: %w", err)
	}
	return s.encode(img)
}

// Window captures the screen area occupied by the window with the given
// handle, without activating or bringing it to the foreground. With
// GDIGrabber the pixels are copied from the screen, so any window covering
// the target appears in the capture in its place.
func (s *Subsystem) Window(handle uintptr) (*Result, error) {
	img, err := s.grabber.GrabWindow(handle)
	if err != nil {
		return nil, fmt.Errorf("capture window: %w", err)
	}
	return s.encode(img)
}

// Region captures an explicit screen rectangle.
func (s *Subsystem) Region(r Rect) (*Result, error) {
	img, err := s.grabber.GrabRect(r)
	if err != nil {
		return nil, fmt.Errorf("capture region: %w", err)
	}
	return s.encode(img)
}

func (s *Subsystem) encode(img image.Image) (*Result, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	bounds := img.Bounds()
	logging.Get(logging.CategoryCapture).Debug("captured %dx%d frame (%d bytes)", bounds.Dx(), bounds.Dy(), buf.Len())
	return &Result{
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: "jpeg",
	}, nil
}
