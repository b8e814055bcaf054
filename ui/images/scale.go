// Package images holds the small image helpers the preview window needs.
package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// ScaleToFit downsamples src so it fits within maxW x maxH preserving aspect
// ratio. A source that already fits is returned unchanged.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src
	}
	return imaging.Fit(src, max(maxW, 1), max(maxH, 1), imaging.Box)
}

// DrawRect outlines r on img with a border of width px, clipped to img.
func DrawRect(img *image.RGBA, r image.Rectangle, c color.RGBA, width int) {
	if img == nil || width < 1 {
		return
	}
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		e = e.Intersect(r)
		for y := e.Min.Y; y < e.Max.Y; y++ {
			for x := e.Min.X; x < e.Max.X; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
}
