// Package action turns match locations into synthetic cursor and keyboard
// events. Delivery is fire-and-forget; the configured delays stand in for
// the target application's input polling cadence.
package action

import (
	"context"
	"image"
	"log/slog"
	"time"
)

// Backend is the OS input queue.
type Backend interface {
	MoveCursor(x, y int) error
	SendButton(down bool) error
	// ScanCode maps a virtual-key code to the hardware scan code.
	ScanCode(vk VK) uint16
	SendKey(scan uint16, vk VK, extended, down bool) error
}

// Timing holds the delays used between synthetic events.
type Timing struct {
	MoveSettle time.Duration // after a move, before the button goes down
	ClickHold  time.Duration // between button down and up
	KeyHold    time.Duration // between key down and up
}

// DefaultTiming matches the cadence the target game reliably accepts.
func DefaultTiming() Timing {
	return Timing{
		MoveSettle: 100 * time.Millisecond,
		ClickHold:  100 * time.Millisecond,
		KeyHold:    50 * time.Millisecond,
	}
}

// Dispatcher issues input through a Backend.
type Dispatcher struct {
	backend Backend
	timing  Timing
	logger  *slog.Logger
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(logger *slog.Logger, backend Backend, timing Timing) *Dispatcher {
	return &Dispatcher{backend: backend, timing: timing, logger: logger}
}

// Target computes origin + loc + size/2 + offset.
func Target(origin, loc, size, offset image.Point) image.Point {
	return origin.Add(loc).Add(image.Pt(size.X/2, size.Y/2)).Add(offset)
}

// ClickAt moves to the center of a matched region (shifted by offset) and
// clicks with the default timing. It returns the screen point clicked.
func (d *Dispatcher) ClickAt(ctx context.Context, origin, loc, size, offset image.Point) (image.Point, error) {
	p := Target(origin, loc, size, offset)
	return p, d.ClickPoint(ctx, p, d.timing.MoveSettle, d.timing.ClickHold)
}

// ClickPoint moves to p, waits settle, then clicks holding for hold.
func (d *Dispatcher) ClickPoint(ctx context.Context, p image.Point, settle, hold time.Duration) error {
	if err := d.MoveTo(p); err != nil {
		return err
	}
	if err := sleep(ctx, settle); err != nil {
		return err
	}
	return d.Click(ctx, hold)
}

// MoveTo places the cursor at p in virtual-screen coordinates.
func (d *Dispatcher) MoveTo(p image.Point) error {
	if d.logger != nil {
		d.logger.Debug("input.move", "x", p.X, "y", p.Y)
	}
	return d.backend.MoveCursor(p.X, p.Y)
}

// ClickButton sends a single primary button transition.
func (d *Dispatcher) ClickButton(down bool) error {
	return d.backend.SendButton(down)
}

// Click sends button down, waits hold, then button up. The button is
// released even when ctx is cancelled during the hold.
func (d *Dispatcher) Click(ctx context.Context, hold time.Duration) error {
	if err := d.backend.SendButton(true); err != nil {
		return err
	}
	waitErr := sleep(ctx, hold)
	if err := d.backend.SendButton(false); err != nil {
		return err
	}
	return waitErr
}

// DoubleClick clicks twice separated by gap.
func (d *Dispatcher) DoubleClick(ctx context.Context, hold, gap time.Duration) error {
	if err := d.Click(ctx, hold); err != nil {
		return err
	}
	if err := sleep(ctx, gap); err != nil {
		return err
	}
	return d.Click(ctx, hold)
}

// PressKey sends one key transition using the key's scan code.
func (d *Dispatcher) PressKey(k Key, down bool) error {
	if d.logger != nil {
		d.logger.Debug("input.key", "key", k.Name, "down", down)
	}
	return d.backend.SendKey(d.backend.ScanCode(k.VK), k.VK, k.Extended, down)
}

// TapKey presses and releases k.
func (d *Dispatcher) TapKey(ctx context.Context, k Key) error {
	if err := d.PressKey(k, true); err != nil {
		return err
	}
	waitErr := sleep(ctx, d.timing.KeyHold)
	if err := d.PressKey(k, false); err != nil {
		return err
	}
	return waitErr
}

// Chord holds mod, taps key, then releases mod, pausing gap around the tap.
// mod is released on every path; a failed release is returned when nothing
// else failed first.
func (d *Dispatcher) Chord(ctx context.Context, mod, key Key, gap time.Duration) (err error) {
	if err := d.PressKey(mod, true); err != nil {
		return err
	}
	defer func() {
		if uerr := d.PressKey(mod, false); uerr != nil && err == nil {
			err = uerr
		}
	}()
	if err := sleep(ctx, gap); err != nil {
		return err
	}
	if err := d.TapKey(ctx, key); err != nil {
		return err
	}
	return sleep(ctx, gap)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
