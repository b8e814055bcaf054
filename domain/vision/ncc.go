package vision

import (
	"image"
	"math"
	"runtime"
	"sync"
)

// LowestScore is reported when a template cannot be placed inside a snapshot
// at all (template larger than the snapshot in either dimension).
const LowestScore = -math.MaxFloat64

// MatchResult is the best alignment of a template inside a snapshot.
// Location is the top-left corner in snapshot pixel coordinates.
type MatchResult struct {
	Score    float64
	Location image.Point
	Size     image.Point
}

// Center returns the snapshot-space center of the matched region.
func (r MatchResult) Center() image.Point {
	return r.Location.Add(image.Pt(r.Size.X/2, r.Size.Y/2))
}

// snapshotPrecomp stores summed-area tables for a snapshot: one per channel
// for plain sums and one for the squares summed over all channels. Tables are
// (W+1)*(H+1) with a zero first row and column so window queries are
// branch-free. Integer tables keep degenerate-window checks exact.
type snapshotPrecomp struct {
	sum   [Channels][]int64
	sumSq []int64
	W, H  int
}

func buildSnapshotPrecomp(s *Snapshot) *snapshotPrecomp {
	W, H := s.Width, s.Height
	iw := W + 1
	p := &snapshotPrecomp{W: W, H: H, sumSq: make([]int64, iw*(H+1))}
	for c := 0; c < Channels; c++ {
		p.sum[c] = make([]int64, iw*(H+1))
	}
	stride := s.Stride()
	for y := 0; y < H; y++ {
		var rowSum [Channels]int64
		var rowSq int64
		row := s.Pix[y*stride : (y+1)*stride]
		for x := 0; x < W; x++ {
			off := (y+1)*iw + x + 1
			up := y*iw + x + 1
			for c := 0; c < Channels; c++ {
				v := int64(row[x*Channels+c])
				rowSum[c] += v
				rowSq += v * v
				p.sum[c][off] = p.sum[c][up] + rowSum[c]
			}
			p.sumSq[off] = p.sumSq[up] + rowSq
		}
	}
	return p
}

// window returns the sum over the w*h rectangle whose top-left is (x, y).
func window(t []int64, iw, x, y, w, h int) int64 {
	return t[(y+h)*iw+x+w] - t[y*iw+x+w] - t[(y+h)*iw+x] + t[y*iw+x]
}

// Matcher evaluates templates against one snapshot, sharing the snapshot's
// integral images across calls. A Matcher must not outlive the capture cycle
// that produced its snapshot.
type Matcher struct {
	snap *Snapshot
	once sync.Once
	pre  *snapshotPrecomp
}

// NewMatcher prepares a Matcher for s. Integral images are built lazily on
// the first Match call.
func NewMatcher(s *Snapshot) *Matcher { return &Matcher{snap: s} }

// Match performs normalized cross-correlation of t over every full-overlap
// position of the snapshot and returns the best one. Ties resolve to the
// first maximum in row-major order.
func Match(s *Snapshot, t *Template) MatchResult {
	return NewMatcher(s).Match(t)
}

// Match scores t against the Matcher's snapshot.
func (m *Matcher) Match(t *Template) MatchResult {
	res := MatchResult{Score: LowestScore}
	if m.snap == nil || t == nil {
		return res
	}
	res.Size = image.Pt(t.Width, t.Height)
	W, H := m.snap.Width, m.snap.Height
	w, h := t.Width, t.Height
	if w == 0 || h == 0 || W < w || H < h {
		return res
	}
	m.once.Do(func() { m.pre = buildSnapshotPrecomp(m.snap) })

	rows := H - h + 1
	best := make([]rowBest, rows)
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.NumCPU())
	for y := 0; y < rows; y++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(y int) {
			defer wg.Done()
			defer func() { <-sem }()
			best[y] = m.scanRow(t, y)
		}(y)
	}
	wg.Wait()

	// Sequential reduction keeps the row-major first-maximum rule regardless
	// of goroutine scheduling.
	for y, b := range best {
		if b.score > res.Score {
			res.Score = b.score
			res.Location = image.Pt(b.x, y)
		}
	}
	return res
}

type rowBest struct {
	score float64
	x     int
}

func (m *Matcher) scanRow(t *Template, y int) rowBest {
	s, pre := m.snap, m.pre
	W := s.Width
	w, h := t.Width, t.Height
	iw := W + 1
	n := int64(w * h)
	stride := s.Stride()
	tw := w * Channels

	out := rowBest{score: LowestScore}
	for x := 0; x+w <= W; x++ {
		var sums [Channels]int64
		var sq2 int64
		for c := 0; c < Channels; c++ {
			sums[c] = window(pre.sum[c], iw, x, y, w, h)
			sq2 += sums[c] * sums[c]
		}
		sumSq := window(pre.sumSq, iw, x, y, w, h)
		// n * sum over channels of the window's squared deviations.
		varN := n*sumSq - sq2

		var score float64
		switch {
		case t.uniform:
			if varN == 0 && sums == t.sums {
				score = 1
			}
		case varN == 0:
			score = 0
		default:
			var cross float64
			for py := 0; py < h; py++ {
				base := (y+py)*stride + x*Channels
				irow := s.Pix[base : base+tw]
				trow := t.centered[py*tw : (py+1)*tw]
				for i, v := range irow {
					cross += float64(v) * trow[i]
				}
			}
			score = cross / (t.norm * math.Sqrt(float64(varN)/float64(n)))
			if score > 1 {
				score = 1
			} else if score < -1 {
				score = -1
			}
		}
		if score > out.score {
			out.score, out.x = score, x
		}
	}
	return out
}
