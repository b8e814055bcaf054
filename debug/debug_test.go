package debug

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/soocke/llama-bot-go/domain/vision"
)

func noise(w, h int, seed int64) *vision.Snapshot {
	s := &vision.Snapshot{Width: w, Height: h, Pix: make([]byte, w*h*vision.Channels)}
	rand.New(rand.NewSource(seed)).Read(s.Pix)
	return s
}

func TestFrameDump_ReadBack(t *testing.T) {
	snap := noise(64, 48, 1)
	var buf bytes.Buffer
	if err := WriteDump(&buf, snap); err != nil {
		t.Fatal(err)
	}
	got, err := ReadDump(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != 64 || got.Height != 48 || !bytes.Equal(got.Pix, snap.Pix) {
		t.Fatalf("dump did not preserve the snapshot")
	}
	if _, err := ReadDump(bytes.NewReader([]byte("PNG not a dump"))); !errors.Is(err, ErrBadDump) {
		t.Fatalf("expected ErrBadDump, got %v", err)
	}
}

func TestFrameDumper_SkipsDuplicates(t *testing.T) {
	dir := t.TempDir()
	d := NewFrameDumper(nil, dir)
	d.now = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }

	first, err := d.Dump("blocking dialog #32770", noise(64, 48, 2))
	if err != nil || first == "" {
		t.Fatalf("first dump: %q %v", first, err)
	}
	again, err := d.Dump("idle timeout", noise(64, 48, 2))
	if err != nil || again != "" {
		t.Fatalf("identical frame should be skipped, got %q %v", again, err)
	}
	d.now = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 1, 0, time.UTC) }
	other, err := d.Dump("idle timeout", noise(64, 48, 3))
	if err != nil || other == "" || other == first {
		t.Fatalf("different frame should be written, got %q %v", other, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("expected 2 dump files, got %d", len(entries))
	}
}

func TestSlug(t *testing.T) {
	if got := slug("Blocking dialog #32770 / warning"); got != "blocking-dialog-32770-warning" {
		t.Fatalf("slug = %q", got)
	}
	if got := slug("!!!"); got != "frame" {
		t.Fatalf("slug of punctuation = %q", got)
	}
}

func TestChangeDetector_Streak(t *testing.T) {
	c := NewChangeDetector(nil, 2, 3)
	same := noise(64, 48, 4)
	for i := 0; i < 4; i++ {
		c.Observe("team", same, vision.Decision{})
	}
	if c.Streak() != 3 {
		t.Fatalf("expected streak 3, got %d", c.Streak())
	}
	c.Observe("team", noise(64, 48, 5), vision.Decision{})
	if c.Streak() != 0 {
		t.Fatalf("a changed screen resets the streak, got %d", c.Streak())
	}
}
