package debug

import (
	"log/slog"
	"sync"

	"github.com/corona10/goimagehash"

	"github.com/soocke/llama-bot-go/domain/vision"
)

// ChangeDetector watches analysed snapshots and logs when the screen has
// not changed for a number of polls in a row. A long static streak while a
// landmark is awaited usually means the game froze or a template is stale.
type ChangeDetector struct {
	logger   *slog.Logger
	maxDist  int
	reportAt int

	mu     sync.Mutex
	last   *goimagehash.ImageHash
	streak int
}

// NewChangeDetector reports every reportAt consecutive static polls. Frames
// whose pHash distance is at most maxDist count as static.
func NewChangeDetector(logger *slog.Logger, maxDist, reportAt int) *ChangeDetector {
	if reportAt <= 0 {
		reportAt = 30
	}
	return &ChangeDetector{logger: logger, maxDist: maxDist, reportAt: reportAt}
}

// Observe implements automation.Observer.
func (c *ChangeDetector) Observe(poll string, snap *vision.Snapshot, d vision.Decision) {
	if snap == nil || !snap.Valid() || snap.Width == 0 {
		return
	}
	hash, err := goimagehash.PerceptionHash(snap.ToRGBA())
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last != nil {
		if dist, err := c.last.Distance(hash); err == nil && dist <= c.maxDist {
			c.streak++
			if c.streak%c.reportAt == 0 && c.logger != nil {
				c.logger.Warn("screen static", "poll", poll, "polls", c.streak, "matched", d.Matched)
			}
			return
		}
	}
	if c.streak >= c.reportAt && c.logger != nil {
		c.logger.Info("screen changed", "poll", poll, "after_polls", c.streak)
	}
	c.last = hash
	c.streak = 0
}

// Streak is the current number of consecutive static polls.
func (c *ChangeDetector) Streak() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streak
}
