package script

import (
	"context"

	"github.com/soocke/llama-bot-go/domain/action"
	"github.com/soocke/llama-bot-go/domain/automation"
	"github.com/soocke/llama-bot-go/domain/vision"
)

// OpenTemplates are loaded before the open script starts.
var OpenTemplates = []string{"minilama", "continuebtn", "back", "attack"}

type open struct {
	Env
	tmpl    map[string]*vision.Template
	attack  bool // attack stage reached without the mini llama screen
	holding bool
}

// NewOpen builds the llama opening run: pick the mini llama and continue,
// or go straight to the attack stage when it is already showing, then hold
// and click until the back button appears.
func NewOpen(env Env) (*Runner, error) {
	tmpl, err := loadAll(env.Templates, OpenTemplates...)
	if err != nil {
		return nil, err
	}
	o := &open{Env: env, tmpl: tmpl}
	notAttacking := func() bool { return !o.attack }
	return NewRunner(env.Agent.Logger(), "open",
		Step{Name: "focus-game", Run: o.focusGame},
		Step{Name: "find-llama", Run: o.findLlama},
		Step{Name: "continue", When: notAttacking, Run: o.pressContinue},
		Step{Name: "attack-stage", Run: o.attackStage},
	), nil
}

func (o *open) focusGame(ctx context.Context) error {
	h, err := o.require("game", o.Config.Game)
	if err != nil {
		return err
	}
	if err := o.Agent.Windows().BringToForeground(h); err != nil {
		return err
	}
	return o.wait(ctx, 1000)
}

func (o *open) findLlama(ctx context.Context) error {
	pts := o.Config.Open
	return o.Agent.Poll(ctx, automation.PollSpec{
		Name:      "llama",
		Templates: pick(o.tmpl, "minilama", "attack"),
		OnHit: func(ctx context.Context, h automation.Hit) (automation.Outcome, error) {
			if h.Name() == "attack" {
				o.attack = true
				return automation.Done, nil
			}
			if err := o.moveTo(h.Center(offset(pts.MiniLamaHover))); err != nil {
				return automation.Done, err
			}
			if err := o.wait(ctx, 100); err != nil {
				return automation.Done, err
			}
			if err := o.moveTo(h.Center(offset(pts.MiniLamaClick))); err != nil {
				return automation.Done, err
			}
			if err := o.wait(ctx, 1000); err != nil {
				return automation.Done, err
			}
			if err := o.Agent.Input().DoubleClick(ctx, o.ms(50), o.ms(100)); err != nil {
				return automation.Done, err
			}
			return automation.Done, o.wait(ctx, 1000)
		},
	})
}

func (o *open) pressContinue(ctx context.Context) error {
	err := o.Agent.Poll(ctx, automation.PollSpec{
		Name:      "continue",
		Templates: pick(o.tmpl, "continuebtn"),
		OnHit: func(ctx context.Context, h automation.Hit) (automation.Outcome, error) {
			if err := o.moveTo(h.Center(zero)); err != nil {
				return automation.Done, err
			}
			return automation.Done, o.click(ctx, 0)
		},
	})
	if err != nil {
		return err
	}
	return o.wait(ctx, 1000)
}

// attackStage keeps the button held while the llama opening animation
// plays (nothing recognisable on screen), clicks the attack prompt and
// stops once the back button shows.
func (o *open) attackStage(ctx context.Context) error {
	target, err := o.at(o.Config.Open.Attack)
	if err != nil {
		return err
	}
	if err := o.moveTo(target); err != nil {
		return err
	}
	defer o.release()
	in := o.Agent.Input()
	return o.Agent.Poll(ctx, automation.PollSpec{
		Name:      "attack",
		Templates: pick(o.tmpl, "back", "attack"),
		BeforeCapture: func(context.Context) error {
			if o.holding {
				return nil
			}
			o.holding = true
			return in.ClickButton(true)
		},
		OnHit: func(ctx context.Context, h automation.Hit) (automation.Outcome, error) {
			if h.Name() == "back" {
				if err := in.TapKey(ctx, action.MustKey("ESC")); err != nil {
					return automation.Done, err
				}
				return automation.Done, o.moveTo(target)
			}
			o.holding = false
			if err := o.clickAt(ctx, target, 0, 100); err != nil {
				return automation.Continue, err
			}
			return automation.Continue, nil
		},
		OnMiss: func(context.Context) (automation.Outcome, error) {
			return automation.ContinueNow, nil
		},
	})
}

func (o *open) release() {
	if !o.holding {
		return
	}
	o.holding = false
	if err := o.Agent.Input().ClickButton(false); err != nil && o.Agent.Logger() != nil {
		o.Agent.Logger().Warn("release button", "error", err)
	}
}
