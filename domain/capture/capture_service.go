package capture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"
)

const captureStatsLogInterval = 30 * time.Second

// Capturer acquires frames from a Backend into a single reusable
// FrameBuffer and keeps running instrumentation. It is meant to be driven
// by one polling goroutine.
type Capturer struct {
	backend Backend
	buf     FrameBuffer
	logger  *slog.Logger

	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
	lastCapture  atomic.Int64
	lastStatsLog time.Time
}

// NewCapturer constructs a Capturer over backend.
func NewCapturer(logger *slog.Logger, backend Backend) *Capturer {
	return &Capturer{backend: backend, logger: logger}
}

// Capture resolves t, sizes the destination for scalePercent and reads the
// pixels. The returned Frame must be released before the next call.
// Failures are one of ErrTargetUnavailable, ErrAllocationFailed or
// ErrReadbackFailed (wrapped), plus ErrBufferInUse on misuse.
func (c *Capturer) Capture(t Target, scalePercent int) (*Frame, error) {
	start := time.Now()
	f, err := c.capture(t, scalePercent)
	if err != nil {
		c.failures.Add(1)
		return nil, err
	}
	c.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	c.captures.Add(1)
	c.lastCapture.Store(f.CapturedAt.UnixNano())
	c.maybeLogStats()
	return f, nil
}

func (c *Capturer) capture(t Target, scalePercent int) (*Frame, error) {
	src, err := c.backend.Bounds(t)
	if err != nil {
		return nil, wrapAs(ErrTargetUnavailable, err)
	}
	if src.Empty() {
		return nil, fmt.Errorf("%w: empty rectangle %v", ErrTargetUnavailable, src)
	}
	if scalePercent <= 0 {
		return nil, fmt.Errorf("%w: scale %d%%", ErrAllocationFailed, scalePercent)
	}
	w, h := ScaledSize(src.Dx(), src.Dy(), scalePercent)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %v at %d%% yields %dx%d", ErrAllocationFailed, src, scalePercent, w, h)
	}
	pix, err := c.buf.Acquire(w * h * BitsPerPixel / 8)
	if err != nil {
		return nil, err
	}
	if err := c.backend.Grab(src, w, h, pix); err != nil {
		c.buf.Release()
		return nil, wrapAs(ErrReadbackFailed, err)
	}
	return &Frame{
		Pix:          pix,
		Width:        w,
		Height:       h,
		Stride:       w * BitsPerPixel / 8,
		BitsPerPixel: BitsPerPixel,
		Source:       src,
		Scale:        scalePercent,
		CapturedAt:   time.Now(),
		Sequence:     c.sequence.Add(1),
		buf:          &c.buf,
	}, nil
}

// Bounds resolves t without capturing. Scripts use the desktop bounds as
// the origin for fixed click positions.
func (c *Capturer) Bounds(t Target) (image.Rectangle, error) {
	r, err := c.backend.Bounds(t)
	if err != nil {
		return image.Rectangle{}, wrapAs(ErrTargetUnavailable, err)
	}
	return r, nil
}

// wrapAs tags err with sentinel unless it already carries one of the
// capture taxonomy errors.
func wrapAs(sentinel, err error) error {
	if IsRecoverable(err) || errors.Is(err, ErrBufferInUse) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

// Stats returns a point-in-time view of the counters.
func (c *Capturer) Stats() CaptureStats {
	captures := c.captures.Load()
	total := c.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	var last time.Time
	if ns := c.lastCapture.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return CaptureStats{
		Captures:         captures,
		Failures:         c.failures.Load(),
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      last,
		Sequence:         c.sequence.Load(),
		BufferBytes:      c.buf.Cap(),
	}
}

func (c *Capturer) maybeLogStats() {
	if c.logger == nil || time.Since(c.lastStatsLog) < captureStatsLogInterval {
		return
	}
	c.lastStatsLog = time.Now()
	stats := c.Stats()
	c.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"failures", stats.Failures,
		"avg_capture", stats.AvgCapture,
		"buffer_bytes", stats.BufferBytes,
	)
}
