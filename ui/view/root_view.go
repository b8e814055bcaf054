package view

import (
	"image"
	"time"

	"github.com/soocke/llama-bot-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView lays out the run preview window: run stats and state on top,
// the stop button on the right and the capture preview below.
type RootView struct {
	mode string

	Stats       RunStats
	CapturePrev CapturePreview

	StateLabel *TLabelWidget
	MatchLabel *TLabelWidget
}

func NewRootView(mode string) *RootView {
	return &RootView{mode: mode}
}

// Build constructs the layout. onStop is invoked from the Stop button and
// the window close box.
func (rv *RootView) Build(onStop func()) {
	if rv == nil {
		return
	}
	App.WmTitle("llama-bot: " + rv.mode)
	rv.Stats = NewRunStats(0)
	rv.StateLabel = TLabel(Txt("State: <idle>"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(2), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	stop := TButton(Txt("Stop"), Style(theme.StyleDangerButton), Command(onStop))
	Grid(stop, Row(0), Column(4), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))

	rv.MatchLabel = TLabel(Txt("No frame yet"), Style(theme.StyleAccentLabel))
	Grid(rv.MatchLabel, Row(1), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.2m"))

	rv.CapturePrev = NewCapturePreview(2)
	WmProtocol(App, "WM_DELETE_WINDOW", onStop)
}

// SetStateLabel implements presenter.StatusView.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// SetRun implements presenter.StatusView.
func (rv *RootView) SetRun(elapsed time.Duration, stepsDone int) {
	if rv != nil && rv.Stats != nil {
		rv.Stats.Set(elapsed, stepsDone)
	}
}

// UpdateCapture implements presenter.PreviewView.
func (rv *RootView) UpdateCapture(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdateCapture(img)
	}
}

// UpdateMatch implements presenter.PreviewView.
func (rv *RootView) UpdateMatch(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdateMatch(img)
	}
}

// SetMatchLabel implements presenter.PreviewView.
func (rv *RootView) SetMatchLabel(text string) {
	if rv != nil && rv.MatchLabel != nil {
		rv.MatchLabel.Configure(Txt(text))
	}
}
