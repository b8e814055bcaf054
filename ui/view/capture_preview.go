package view

import (
	"image"

	"github.com/soocke/llama-bot-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CapturePreview shows the last analysed frame and the matched region.
type CapturePreview interface {
	UpdateCapture(img image.Image)
	UpdateMatch(img image.Image)
}

type capturePreview struct {
	captureLabel *LabelWidget
	matchLabel   *LabelWidget
	// Tk photos are deleted before replacement so old frames are not retained.
	capturePhoto *Img
	matchPhoto   *Img
}

const (
	maxPreviewW = 480
	maxPreviewH = 270
	maxMatchW   = 160
	maxMatchH   = 160
)

// NewCapturePreview grids the capture across columns 0-3 and the match
// pane at column 4 of row.
func NewCapturePreview(row int) CapturePreview {
	placeholder := images.EncodePNG(image.NewRGBA(image.Rect(0, 0, 240, 135)))
	capPhoto := NewPhoto(Data(placeholder))
	matchPhoto := NewPhoto(Data(placeholder))
	capture := Label(Image(capPhoto), Borderwidth(1), Relief("sunken"))
	match := Label(Image(matchPhoto), Borderwidth(1), Relief("sunken"))
	Grid(capture, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	Grid(match, Row(row), Column(4), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
	return &capturePreview{captureLabel: capture, matchLabel: match, capturePhoto: capPhoto, matchPhoto: matchPhoto}
}

func (v *capturePreview) UpdateCapture(img image.Image) {
	if v.captureLabel == nil || img == nil {
		return
	}
	v.capturePhoto = replacePhoto(v.captureLabel, v.capturePhoto, images.ScaleToFit(img, maxPreviewW, maxPreviewH))
}

func (v *capturePreview) UpdateMatch(img image.Image) {
	if v.matchLabel == nil || img == nil {
		return
	}
	v.matchPhoto = replacePhoto(v.matchLabel, v.matchPhoto, images.ScaleToFit(img, maxMatchW, maxMatchH))
}

func replacePhoto(label *LabelWidget, prev *Img, img image.Image) *Img {
	if prev != nil {
		prev.Delete()
	}
	photo := NewPhoto(Data(images.EncodePNG(img)))
	label.Configure(Image(photo))
	return photo
}
