package vision

import (
	"image"
	"math"
	"math/rand"
	"testing"
)

// newSnapshot returns a w x h snapshot filled with a single color.
func newSnapshot(w, h int, c0, c1, c2 byte) *Snapshot {
	s := &Snapshot{Width: w, Height: h, Pix: make([]byte, w*h*Channels)}
	for i := 0; i < len(s.Pix); i += Channels {
		s.Pix[i], s.Pix[i+1], s.Pix[i+2] = c0, c1, c2
	}
	return s
}

func noiseSnapshot(w, h int, seed int64) *Snapshot {
	r := rand.New(rand.NewSource(seed))
	s := &Snapshot{Width: w, Height: h, Pix: make([]byte, w*h*Channels)}
	r.Read(s.Pix)
	return s
}

// paste copies src into dst with its top-left at (x, y).
func paste(dst, src *Snapshot, x, y int) {
	for py := 0; py < src.Height; py++ {
		copy(dst.Pix[(y+py)*dst.Stride()+x*Channels:], src.Pix[py*src.Stride():(py+1)*src.Stride()])
	}
}

// crop returns the w x h region of s at (x, y) as a new snapshot.
func crop(s *Snapshot, x, y, w, h int) *Snapshot {
	out := &Snapshot{Width: w, Height: h, Pix: make([]byte, w*h*Channels)}
	for py := 0; py < h; py++ {
		copy(out.Pix[py*out.Stride():(py+1)*out.Stride()], s.Pix[(y+py)*s.Stride()+x*Channels:])
	}
	return out
}

func mustTemplate(t *testing.T, name string, s *Snapshot) *Template {
	t.Helper()
	tmpl, err := TemplateFromSnapshot(name, s)
	if err != nil {
		t.Fatalf("template %s: %v", name, err)
	}
	return tmpl
}

func TestMatch_UniformTemplateFindsWhiteSquare(t *testing.T) {
	snap := newSnapshot(200, 200, 128, 128, 128)
	paste(snap, newSnapshot(20, 20, 255, 255, 255), 50, 50)
	tmpl := mustTemplate(t, "white", newSnapshot(20, 20, 255, 255, 255))

	res := Match(snap, tmpl)
	if math.Abs(res.Score-1) > 1e-9 {
		t.Fatalf("expected score ~1, got %v", res.Score)
	}
	if res.Location != image.Pt(50, 50) {
		t.Fatalf("expected location (50,50), got %v", res.Location)
	}
	if res.Center() != image.Pt(60, 60) {
		t.Fatalf("unexpected center %v", res.Center())
	}
}

func TestMatch_TexturedTemplateLocated(t *testing.T) {
	snap := noiseSnapshot(64, 48, 1)
	tmpl := mustTemplate(t, "patch", crop(snap, 13, 27, 8, 6))
	res := Match(snap, tmpl)
	if res.Score < 0.999 {
		t.Fatalf("expected near perfect score, got %v", res.Score)
	}
	if res.Location != image.Pt(13, 27) {
		t.Fatalf("expected (13,27), got %v", res.Location)
	}
	if res.Size != image.Pt(8, 6) {
		t.Fatalf("unexpected size %v", res.Size)
	}
}

func TestMatch_ScoreWithinBounds(t *testing.T) {
	snap := noiseSnapshot(40, 30, 2)
	tmpl := mustTemplate(t, "other", noiseSnapshot(6, 5, 3))
	res := Match(snap, tmpl)
	if res.Score < -1 || res.Score > 1 {
		t.Fatalf("score out of range: %v", res.Score)
	}
	if res.Location.X < 0 || res.Location.X > 40-6 || res.Location.Y < 0 || res.Location.Y > 30-5 {
		t.Fatalf("location outside full-overlap range: %v", res.Location)
	}
}

func TestMatch_OversizedTemplateReportsLowestScore(t *testing.T) {
	snap := newSnapshot(10, 10, 1, 2, 3)
	tmpl := mustTemplate(t, "big", noiseSnapshot(11, 4, 4))
	res := Match(snap, tmpl)
	if res.Score != LowestScore {
		t.Fatalf("expected lowest score, got %v", res.Score)
	}
	if res.Score >= DefaultThreshold {
		t.Fatalf("oversized template must never pass the threshold")
	}
}

func TestMatch_Deterministic(t *testing.T) {
	snap := noiseSnapshot(50, 40, 5)
	tmpl := mustTemplate(t, "patch", crop(snap, 3, 4, 7, 7))
	a := Match(snap, tmpl)
	for i := 0; i < 5; i++ {
		if b := Match(snap, tmpl); b != a {
			t.Fatalf("run %d differs: %+v vs %+v", i, b, a)
		}
	}
}

func TestMatch_TiesResolveRowMajor(t *testing.T) {
	snap := newSnapshot(60, 60, 0, 0, 0)
	patch := noiseSnapshot(5, 5, 6)
	paste(snap, patch, 5, 40)
	paste(snap, patch, 30, 10)
	res := Match(snap, mustTemplate(t, "patch", patch))
	if res.Location != image.Pt(30, 10) {
		t.Fatalf("expected first row-major maximum (30,10), got %v", res.Location)
	}
}

func TestMatch_UniformWindowScoresZero(t *testing.T) {
	snap := newSnapshot(20, 20, 9, 9, 9)
	tmpl := mustTemplate(t, "patch", noiseSnapshot(4, 4, 7))
	res := Match(snap, tmpl)
	if res.Score != 0 {
		t.Fatalf("expected 0 on a flat snapshot, got %v", res.Score)
	}
}

func TestMatcher_ReusedAcrossTemplates(t *testing.T) {
	snap := noiseSnapshot(32, 32, 8)
	m := NewMatcher(snap)
	a := m.Match(mustTemplate(t, "a", crop(snap, 1, 2, 5, 5)))
	b := m.Match(mustTemplate(t, "b", crop(snap, 20, 21, 6, 4)))
	if a.Location != image.Pt(1, 2) || b.Location != image.Pt(20, 21) {
		t.Fatalf("unexpected locations %v %v", a.Location, b.Location)
	}
}
