package app

import (
	"context"
	"time"

	"github.com/soocke/llama-bot-go/domain/script"
	"github.com/soocke/llama-bot-go/ui/model"
	"github.com/soocke/llama-bot-go/ui/presenter"
	"github.com/soocke/llama-bot-go/ui/theme"
	"github.com/soocke/llama-bot-go/ui/view"

	tk "modernc.org/tk9.0"
)

const tick = 100 * time.Millisecond

// runPreview shows the preview window on the calling goroutine while the
// script runs in the background. Closing the window or pressing Stop
// cancels the run; the window stays open after the run ends.
func runPreview(parent context.Context, a *Bot, runner *script.Runner) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	run := model.NewRunModel()
	previews := &model.PreviewModel{}

	theme.InitStyles()
	root := view.NewRootView(string(a.mode))
	var afterID string
	stop := func() {
		cancel()
		if afterID != "" {
			tk.TclAfterCancel(afterID)
		}
		tk.Destroy(tk.App)
	}
	root.Build(stop)

	status := presenter.NewStatusPresenter(run, root)
	preview := presenter.NewPreviewPresenter(previews, root)
	runner.AddListener(status.OnStep)
	a.c.Agent.AddObserver(preview)

	done := make(chan error, 1)
	run.Start(time.Now())
	go func() {
		err := a.execute(ctx, runner)
		run.Finish(time.Now())
		done <- err
	}()

	var loop *presenter.Loop
	loop = presenter.NewLoop(status, preview, func() {
		afterID = tk.TclAfter(tick, loop.Tick)
	})
	afterID = tk.TclAfter(tick, loop.Tick)
	tk.App.Wait()

	cancel()
	return <-done
}
