package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RunStats shows elapsed run time and completed steps.
type RunStats interface {
	Set(elapsed time.Duration, stepsDone int)
}

type runStats struct {
	elapsed *TLabelWidget
	steps   *TLabelWidget
}

// NewRunStats grids two labels into columns 0 and 1 of row.
func NewRunStats(row int) RunStats {
	elapsed := TLabel(Txt("Run: 00:00"))
	steps := TLabel(Txt("Steps: 0"))
	Grid(elapsed, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	Grid(steps, Row(row), Column(1), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	return &runStats{elapsed: elapsed, steps: steps}
}

func (s *runStats) Set(elapsed time.Duration, stepsDone int) {
	s.elapsed.Configure(Txt("Run: " + clock(elapsed)))
	s.steps.Configure(Txt(fmt.Sprintf("Steps: %d", stepsDone)))
}

func clock(d time.Duration) string {
	secs := int(d / time.Second)
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
