package presenter

import "time"

// Loop drives periodic updates of the feature presenters from the Tk
// event loop and then invokes the scheduler callback. The zero value is
// usable (methods are nil-safe).
type Loop struct {
	Status   *StatusPresenter
	Preview  *PreviewPresenter
	Schedule func()
}

func NewLoop(status *StatusPresenter, preview *PreviewPresenter, schedule func()) *Loop {
	return &Loop{Status: status, Preview: preview, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	if l.Status != nil {
		l.Status.Tick(time.Now())
	}
	if l.Preview != nil {
		l.Preview.Tick()
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
