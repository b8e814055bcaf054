package vision

import (
	"errors"
	"image"
	"image/color"
	"math"
)

// Template is a reference image prepared for matching. Pixels are stored in
// the same B, G, R order as capture snapshots; alpha is discarded.
type Template struct {
	Name          string
	Width, Height int
	// Threshold overrides the cascade threshold when > 0.
	Threshold float64

	pix      []byte
	centered []float64 // pixel minus its channel mean
	norm     float64   // sqrt of the sum of centered squares
	sums     [Channels]int64
	uniform  bool
}

// NewTemplate converts img into a Template.
func NewTemplate(name string, img image.Image) (*Template, error) {
	if img == nil {
		return nil, errors.New("vision: nil template image")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*Channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := (y*w + x) * Channels
			pix[i], pix[i+1], pix[i+2] = c.B, c.G, c.R
		}
	}
	return TemplateFromSnapshot(name, &Snapshot{Width: w, Height: h, Pix: pix})
}

// TemplateFromSnapshot builds a Template from already normalized pixels. The
// pixels are copied.
func TemplateFromSnapshot(name string, s *Snapshot) (*Template, error) {
	if !s.Valid() || s.Width == 0 || s.Height == 0 {
		return nil, errors.New("vision: empty template")
	}
	t := &Template{
		Name:     name,
		Width:    s.Width,
		Height:   s.Height,
		pix:      append([]byte(nil), s.Pix...),
		centered: make([]float64, len(s.Pix)),
	}
	for i, v := range t.pix {
		t.sums[i%Channels] += int64(v)
	}
	n := float64(s.Width * s.Height)
	var mean [Channels]float64
	for c := range mean {
		mean[c] = float64(t.sums[c]) / n
	}
	var ss float64
	for i, v := range t.pix {
		d := float64(v) - mean[i%Channels]
		t.centered[i] = d
		ss += d * d
	}
	t.norm = math.Sqrt(ss)
	t.uniform = t.isUniform()
	return t, nil
}

func (t *Template) isUniform() bool {
	for i := Channels; i < len(t.pix); i++ {
		if t.pix[i] != t.pix[i%Channels] {
			return false
		}
	}
	return true
}

// Size returns the template dimensions.
func (t *Template) Size() image.Point { return image.Pt(t.Width, t.Height) }
