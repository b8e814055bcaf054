//go:build !windows

package capture

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/go-vgo/robotgo"
	kbscreenshot "github.com/kbinani/screenshot"
	"github.com/vova616/screenshot"
)

// ScreenBackend is the portable backend used for development hosts. It
// reads through the X11/Quartz screenshot library and downsamples with a
// box filter, which averages source areas like GDI's HALFTONE mode.
type ScreenBackend struct{}

// NewBackend returns the platform capture backend.
func NewBackend() Backend { return ScreenBackend{} }

// Bounds returns the union of all active displays for the desktop target,
// or the window bounds of the process identified by t.Window.
func (ScreenBackend) Bounds(t Target) (image.Rectangle, error) {
	if t.IsDesktop() {
		n := kbscreenshot.NumActiveDisplays()
		if n <= 0 {
			return image.Rectangle{}, fmt.Errorf("%w: no active displays", ErrTargetUnavailable)
		}
		var all image.Rectangle
		for i := 0; i < n; i++ {
			all = all.Union(kbscreenshot.GetDisplayBounds(i))
		}
		return all, nil
	}
	x, y, w, h := robotgo.GetBounds(int(t.Window))
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: window %d has no bounds", ErrTargetUnavailable, t.Window)
	}
	return image.Rect(x, y, x+w, y+h), nil
}

// Grab captures src and writes it into dst as B, G, R, X rows.
func (ScreenBackend) Grab(src image.Rectangle, width, height int, dst []byte) error {
	if len(dst) < width*height*4 {
		return fmt.Errorf("%w: destination %d bytes for %dx%d", ErrAllocationFailed, len(dst), width, height)
	}
	shot, err := screenshot.CaptureRect(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadbackFailed, err)
	}
	var img image.Image = shot
	if width != src.Dx() || height != src.Dy() {
		img = imaging.Resize(shot, width, height, imaging.Box)
	}
	writeBGRX(dst, img, width, height)
	return nil
}

// writeBGRX converts img into the GDI pixel order used by every backend.
func writeBGRX(dst []byte, img image.Image, width, height int) {
	nrgba := imaging.Clone(img)
	for y := 0; y < height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		out := dst[y*width*4 : (y+1)*width*4]
		for x := 0; x < width; x++ {
			out[x*4+0] = row[x*4+2]
			out[x*4+1] = row[x*4+1]
			out[x*4+2] = row[x*4+0]
			out[x*4+3] = 0xFF
		}
	}
}
