package presenter

import (
	"fmt"
	"time"

	"github.com/soocke/llama-bot-go/domain/script"
	"github.com/soocke/llama-bot-go/ui/model"
)

// StatusView shows the running step and run duration.
type StatusView interface {
	SetStateLabel(string)
	SetRun(elapsed time.Duration, stepsDone int)
}

// StatusPresenter receives script step transitions and reflects the most
// recent one on the next Tick.
type StatusPresenter struct {
	run    *model.RunModel
	view   StatusView
	latest string
}

func NewStatusPresenter(run *model.RunModel, view StatusView) *StatusPresenter {
	return &StatusPresenter{run: run, view: view}
}

// OnStep is a script.Listener.
func (p *StatusPresenter) OnStep(step string, st script.State) {
	if p == nil || p.run == nil {
		return
	}
	p.run.Step(step, st.String())
}

// Tick pushes the model to the view.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.run == nil || p.view == nil {
		return
	}
	v := p.run.Values(now)
	label := "State: <idle>"
	if v.Step != "" {
		label = fmt.Sprintf("State: %s (%s)", v.Step, v.State)
	}
	if !v.Running && v.Elapsed > 0 {
		label += " - finished"
	}
	if label != p.latest {
		p.latest = label
		p.view.SetStateLabel(label)
	}
	p.view.SetRun(v.Elapsed, v.Done)
}
