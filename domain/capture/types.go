package capture

import (
	"errors"
	"image"
	"time"

	"github.com/soocke/llama-bot-go/domain/window"
)

var (
	// ErrTargetUnavailable reports that the capture target could not be
	// resolved to a rectangle (invalid window handle or OS query failure).
	ErrTargetUnavailable = errors.New("capture: target unavailable")
	// ErrAllocationFailed reports that no drawing surface of the requested
	// size could be provided.
	ErrAllocationFailed = errors.New("capture: allocation failed")
	// ErrReadbackFailed reports that pixel data could not be read back.
	ErrReadbackFailed = errors.New("capture: readback failed")
	// ErrBufferInUse reports a capture attempted while the previous frame
	// was still held by the caller.
	ErrBufferInUse = errors.New("capture: frame buffer still acquired")
)

// IsRecoverable reports whether err belongs to the transient capture
// taxonomy. The poll loop abandons the current iteration and retries.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrTargetUnavailable) ||
		errors.Is(err, ErrAllocationFailed) ||
		errors.Is(err, ErrReadbackFailed)
}

// BitsPerPixel is the depth of every frame produced by a Backend.
const BitsPerPixel = 32

// Target selects what to capture. The zero value is the whole virtual
// desktop; a non-zero Window captures that window's frame rectangle, which
// is re-queried on every call.
type Target struct {
	Window window.Handle
}

// Desktop returns the virtual-desktop target.
func Desktop() Target { return Target{} }

// Of returns a target for window h.
func Of(h window.Handle) Target { return Target{Window: h} }

// IsDesktop reports whether t selects the virtual desktop.
func (t Target) IsDesktop() bool { return t.Window == 0 }

// Backend is the OS surface the Capturer reads from.
type Backend interface {
	// Bounds resolves t to a rectangle in virtual-screen coordinates. The
	// desktop rectangle may have a negative origin.
	Bounds(t Target) (image.Rectangle, error)
	// Grab copies src into dst as width x height top-down 32-bit pixels
	// (B, G, R, X) with stride width*4, area-averaging when the sizes differ.
	Grab(src image.Rectangle, width, height int, dst []byte) error
}

// Frame is one raw capture. Pix is a view into the Capturer's FrameBuffer
// and is only valid until Release.
type Frame struct {
	Pix          []byte
	Width        int
	Height       int
	Stride       int
	BitsPerPixel int
	// Source is the captured rectangle in virtual-screen coordinates.
	Source     image.Rectangle
	Scale      int
	CapturedAt time.Time
	Sequence   uint64

	buf *FrameBuffer
}

// Release hands the backing buffer back for the next capture. Calling it
// more than once is harmless.
func (f *Frame) Release() {
	if f == nil || f.buf == nil {
		return
	}
	f.buf.Release()
	f.buf = nil
	f.Pix = nil
}

// Origin returns the screen coordinate of the frame's top-left pixel.
func (f *Frame) Origin() image.Point { return f.Source.Min }

// ToScreen maps a frame pixel coordinate to virtual-screen coordinates,
// undoing the capture scale.
func (f *Frame) ToScreen(p image.Point) image.Point {
	if f.Scale <= 0 || f.Scale == 100 {
		return f.Source.Min.Add(p)
	}
	return f.Source.Min.Add(image.Pt(p.X*100/f.Scale, p.Y*100/f.Scale))
}

// ScaledSize returns the destination dimensions for a capture of w x h at
// percent. 100 leaves the size untouched; anything else truncates.
func ScaledSize(w, h, percent int) (int, int) {
	if percent == 100 {
		return w, h
	}
	return w * percent / 100, h * percent / 100
}
