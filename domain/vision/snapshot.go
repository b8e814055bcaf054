package vision

import (
	"errors"
	"fmt"
	"image"
)

// Channels is the number of interleaved channels stored per Snapshot pixel.
const Channels = 3

var (
	// ErrUnsupportedDepth is returned when a raw buffer's bit depth is not a
	// whole number of bytes or carries fewer than three channels.
	ErrUnsupportedDepth = errors.New("vision: unsupported bit depth")
	// ErrShortBuffer is returned when a raw buffer is smaller than its
	// declared geometry.
	ErrShortBuffer = errors.New("vision: raw buffer shorter than declared geometry")
)

// Snapshot is a normalized capture: Width*Height pixels, three interleaved
// channels per pixel in the order the capture backend delivered them
// (B, G, R for GDI), row-major with the origin at the top-left.
//
// A Snapshot produced by NormalizeInto reuses its backing slice between
// captures; do not retain Pix across capture cycles.
type Snapshot struct {
	Width, Height int
	Pix           []byte
}

// Stride returns the byte length of one row.
func (s *Snapshot) Stride() int { return s.Width * Channels }

// Bounds returns the snapshot rectangle anchored at (0,0).
func (s *Snapshot) Bounds() image.Rectangle { return image.Rect(0, 0, s.Width, s.Height) }

// Valid reports whether the declared geometry matches the backing buffer.
func (s *Snapshot) Valid() bool {
	return s != nil && s.Width >= 0 && s.Height >= 0 && len(s.Pix) == s.Width*s.Height*Channels
}

// ToRGBA converts a BGR snapshot into an opaque *image.RGBA for display,
// hashing and encoding.
func (s *Snapshot) ToRGBA() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	n := s.Width * s.Height
	for i := 0; i < n; i++ {
		src := s.Pix[i*Channels : i*Channels+Channels]
		d := dst.Pix[i*4 : i*4+4]
		d[0], d[1], d[2], d[3] = src[2], src[1], src[0], 0xFF
	}
	return dst
}

// Normalize converts a raw capture buffer into a new Snapshot. Rows are
// assumed to be tightly packed (stride = width * bitsPerPixel/8).
func Normalize(raw []byte, width, height, bitsPerPixel int) (*Snapshot, error) {
	s := &Snapshot{}
	if err := NormalizeInto(s, raw, width, height, bitsPerPixel, 0); err != nil {
		return nil, err
	}
	return s, nil
}

// NormalizeInto extracts the first three channels of every pixel of raw into
// dst, reusing dst.Pix when it has enough capacity. stride is the byte
// length of one raw row; 0 means tightly packed. raw is never written.
func NormalizeInto(dst *Snapshot, raw []byte, width, height, bitsPerPixel, stride int) error {
	if bitsPerPixel <= 0 || bitsPerPixel%8 != 0 {
		return fmt.Errorf("%w: %d bpp", ErrUnsupportedDepth, bitsPerPixel)
	}
	nch := bitsPerPixel / 8
	if nch < Channels {
		return fmt.Errorf("%w: %d channel(s)", ErrUnsupportedDepth, nch)
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("vision: invalid geometry %dx%d", width, height)
	}
	if stride == 0 {
		stride = width * nch
	}
	if stride < width*nch {
		return fmt.Errorf("vision: stride %d below row size %d", stride, width*nch)
	}
	if height > 0 && len(raw) < (height-1)*stride+width*nch {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(raw), (height-1)*stride+width*nch)
	}

	need := width * height * Channels
	if cap(dst.Pix) < need {
		dst.Pix = make([]byte, need)
	}
	dst.Pix = dst.Pix[:need]
	dst.Width, dst.Height = width, height

	out := dst.Stride()
	for y := 0; y < height; y++ {
		src := raw[y*stride : y*stride+width*nch]
		row := dst.Pix[y*out : (y+1)*out]
		if nch == Channels {
			copy(row, src)
			continue
		}
		for x := 0; x < width; x++ {
			p := src[x*nch:]
			row[x*3+0] = p[0]
			row[x*3+1] = p[1]
			row[x*3+2] = p[2]
		}
	}
	return nil
}
