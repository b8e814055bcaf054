package images

import (
	"errors"
	"image"
	"image/draw"
)

// ExtractRegion copies r grown by pad on every side out of frame, clamped
// to the frame bounds. The returned rectangle is the one actually copied.
func ExtractRegion(frame *image.RGBA, r image.Rectangle, pad int) (*image.RGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	if pad < 0 {
		pad = 0
	}
	region := r.Inset(-pad).Intersect(frame.Bounds())
	if region.Empty() {
		return nil, image.Rectangle{}, errors.New("region outside frame")
	}
	out := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(out, out.Bounds(), frame, region.Min, draw.Src)
	return out, region, nil
}
