package presenter

import (
	"fmt"
	"image"
	"image/color"

	"github.com/soocke/llama-bot-go/domain/vision"
	"github.com/soocke/llama-bot-go/ui/images"
	"github.com/soocke/llama-bot-go/ui/model"
)

// PreviewView shows the analysed frame and the matched region.
type PreviewView interface {
	UpdateCapture(img image.Image)
	UpdateMatch(img image.Image)
	SetMatchLabel(text string)
}

var matchColor = color.RGBA{R: 0xdc, G: 0x26, B: 0x26, A: 0xff}

// PreviewPresenter is registered as an agent observer. Observe runs on the
// poll goroutine and only converts and publishes; Tick runs on the Tk
// thread and pushes the newest frame to the view.
type PreviewPresenter struct {
	model *model.PreviewModel
	view  PreviewView
}

func NewPreviewPresenter(m *model.PreviewModel, view PreviewView) *PreviewPresenter {
	return &PreviewPresenter{model: m, view: view}
}

// Observe implements automation.Observer.
func (p *PreviewPresenter) Observe(poll string, snap *vision.Snapshot, d vision.Decision) {
	if p == nil || p.model == nil || snap == nil || !snap.Valid() {
		return
	}
	pv := model.Preview{Poll: poll, Frame: snap.ToRGBA(), Matched: d.Matched}
	if d.Matched {
		r := d.Hit.Result
		pv.Match = image.Rectangle{Min: r.Location, Max: r.Location.Add(r.Size)}
		pv.Score = r.Score
		pv.Name = d.Hit.Template.Name
	} else {
		for i, s := range d.Scores {
			if i == 0 || s > pv.Score {
				pv.Score = s
			}
		}
	}
	p.model.Publish(pv)
}

// Tick flushes the newest preview to the view, if any.
func (p *PreviewPresenter) Tick() {
	if p == nil || p.model == nil || p.view == nil {
		return
	}
	pv, ok := p.model.Take()
	if !ok {
		return
	}
	if pv.Matched {
		if region, _, err := images.ExtractRegion(pv.Frame, pv.Match, 16); err == nil {
			p.view.UpdateMatch(region)
		}
		images.DrawRect(pv.Frame, pv.Match, matchColor, 3)
	}
	p.view.UpdateCapture(pv.Frame)
	p.view.SetMatchLabel(matchLabel(pv))
}

func matchLabel(pv model.Preview) string {
	if pv.Matched {
		return fmt.Sprintf("%s: %s %.3f at (%d,%d)", pv.Poll, pv.Name, pv.Score, pv.Match.Min.X, pv.Match.Min.Y)
	}
	return fmt.Sprintf("%s: no match (best %.3f)", pv.Poll, pv.Score)
}
