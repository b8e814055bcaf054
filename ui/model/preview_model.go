package model

import (
	"image"
	"sync"
)

// Preview is the latest analysed frame with its best match.
type Preview struct {
	Poll    string
	Frame   *image.RGBA
	Match   image.Rectangle // frame coordinates, empty when nothing matched
	Name    string
	Score   float64
	Matched bool
	Seq     uint64
}

// PreviewModel hands frames from the poll goroutine to the UI tick. Only
// the newest frame is kept.
type PreviewModel struct {
	mu   sync.Mutex
	cur  Preview
	seen uint64
}

// Publish replaces the current preview.
func (m *PreviewModel) Publish(p Preview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Seq = m.cur.Seq + 1
	m.cur = p
}

// Take returns the current preview if it has not been taken yet.
func (m *PreviewModel) Take() (Preview, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur.Seq == m.seen || m.cur.Frame == nil {
		return Preview{}, false
	}
	m.seen = m.cur.Seq
	return m.cur, true
}
