package templates

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"testing"
	"testing/fstest"

	"golang.org/x/image/bmp"
)

func encodeSquare(t *testing.T, w, h int, enc func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 99, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := enc(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

const testManifest = `
templates:
  - name: start
    path: fn_start.png
  - name: team
    path: fn_team.bmp
    threshold: 0.9
  - name: missing
    path: fn_missing.png
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	m, err := ParseManifest([]byte(testManifest))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	fsys := fstest.MapFS{
		"fn_start.png": {Data: encodeSquare(t, 6, 4, func(b *bytes.Buffer, i image.Image) error { return png.Encode(b, i) })},
		"fn_team.bmp":  {Data: encodeSquare(t, 3, 5, func(b *bytes.Buffer, i image.Image) error { return bmp.Encode(b, i) })},
	}
	return NewStore(nil, fsys, m)
}

func TestStore_LoadsPNGAndBMP(t *testing.T) {
	s := newTestStore(t)
	ts, err := s.Load("start", "team")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ts[0].Width != 6 || ts[0].Height != 4 || ts[0].Name != "start" {
		t.Fatalf("unexpected start template %+v", ts[0].Size())
	}
	if ts[1].Width != 3 || ts[1].Height != 5 || ts[1].Threshold != 0.9 {
		t.Fatalf("unexpected team template %v threshold=%v", ts[1].Size(), ts[1].Threshold)
	}
	again, _ := s.Get("start")
	if again != ts[0] {
		t.Fatalf("expected cached template")
	}
}

func TestStore_MissingFileIsLoadError(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("start", "missing", "team")
	var le *LoadError
	if !errors.As(err, &le) || le.Name != "missing" {
		t.Fatalf("expected LoadError for missing, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist cause, got %v", err)
	}
}

func TestStore_UnknownName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("nope"); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	names := s.Names()
	if len(names) != 3 || names[0] != "missing" || names[2] != "team" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestParseManifest_Validation(t *testing.T) {
	bad := []string{
		"templates:\n  - path: a.png\n",
		"templates:\n  - name: a\n",
		"templates:\n  - name: a\n    path: a.png\n  - name: a\n    path: b.png\n",
		"templates:\n  - name: a\n    path: a.png\n    threshold: 1.5\n",
		"templates: [",
	}
	for _, doc := range bad {
		if _, err := ParseManifest([]byte(doc)); err == nil {
			t.Fatalf("expected error for %q", doc)
		}
	}
}
