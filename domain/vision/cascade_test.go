package vision

import (
	"image"
	"testing"
)

func TestEvaluate_StopsAtFirstHit(t *testing.T) {
	snap := noiseSnapshot(48, 48, 11)
	absent := mustTemplate(t, "absent", noiseSnapshot(8, 8, 12))
	first := mustTemplate(t, "first", crop(snap, 4, 4, 8, 8))
	second := mustTemplate(t, "second", crop(snap, 30, 30, 8, 8))

	d := Evaluate(snap, []*Template{absent, first, second}, DefaultThreshold)
	if !d.Matched {
		t.Fatalf("expected a hit, scores=%v", d.Scores)
	}
	if d.Hit.Index != 1 || d.Hit.Template != first {
		t.Fatalf("expected index 1, got %d", d.Hit.Index)
	}
	if d.Hit.Result.Location != image.Pt(4, 4) {
		t.Fatalf("unexpected location %v", d.Hit.Result.Location)
	}
	if len(d.Scores) != 2 {
		t.Fatalf("templates after the hit must not be evaluated, scores=%v", d.Scores)
	}
}

func TestMatchFirst_NoHit(t *testing.T) {
	snap := noiseSnapshot(32, 32, 13)
	templates := []*Template{
		mustTemplate(t, "a", noiseSnapshot(8, 8, 14)),
		mustTemplate(t, "b", noiseSnapshot(40, 8, 15)),
	}
	if _, ok := MatchFirst(snap, templates, DefaultThreshold); ok {
		t.Fatalf("expected no hit")
	}
}

func TestMatchFirst_TemplateThresholdOverride(t *testing.T) {
	snap := noiseSnapshot(32, 32, 16)
	other := mustTemplate(t, "loose", noiseSnapshot(6, 6, 17))
	other.Threshold = -1
	hit, ok := MatchFirst(snap, []*Template{other}, DefaultThreshold)
	if !ok || hit.Index != 0 {
		t.Fatalf("expected per-template threshold to apply, ok=%v", ok)
	}
}
