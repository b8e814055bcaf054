package script

import (
	"context"
	"fmt"

	"github.com/soocke/llama-bot-go/domain/action"
	"github.com/soocke/llama-bot-go/domain/automation"
	"github.com/soocke/llama-bot-go/domain/vision"
	"github.com/soocke/llama-bot-go/domain/window"
)

// CollectTemplates are loaded before the collect script starts. nextbtn is
// not matched by any step but must still be present.
var CollectTemplates = []string{
	"saveworld", "abandon", "openbtn", "nextbtn", "news", "power", "start", "team",
	"tier1", "tier2", "tier3", "tier4",
}

type collect struct {
	Env
	tmpl    map[string]*vision.Template
	running bool
	game    window.Handle
}

// NewCollect builds the llama collection run: start the game from the
// launcher unless it is already running, clear the save-the-world prompts,
// walk the menus to the reward tiers, claim them, start and leave a match,
// then quit the game and dismiss the launcher popup.
func NewCollect(env Env) (*Runner, error) {
	tmpl, err := loadAll(env.Templates, CollectTemplates...)
	if err != nil {
		return nil, err
	}
	c := &collect{Env: env, tmpl: tmpl}
	notRunning := func() bool { return !c.running }
	return NewRunner(env.Agent.Logger(), "collect",
		Step{Name: "check-launcher", Run: c.checkLauncher},
		Step{Name: "launch-game", When: notRunning, Run: c.launchGame},
		Step{Name: "focus-game", Run: c.focusGame},
		Step{Name: "dismiss-save-world", Run: c.dismissSaveWorld},
		Step{Name: "main-menu", Run: c.mainMenu},
		Step{Name: "select-tier", Run: c.selectTier},
		Step{Name: "confirm-tier", Run: c.confirmTier},
		Step{Name: "start-match", Run: c.startMatch},
		Step{Name: "wait-team", Run: c.waitTeam},
		Step{Name: "leave-match", Run: c.leaveMatch},
		Step{Name: "quit-game", Run: c.quitGame},
		Step{Name: "close-popup", Run: c.closePopup},
	), nil
}

func (c *collect) checkLauncher(ctx context.Context) error {
	if _, err := c.require("launcher", c.Config.Launcher); err != nil {
		return err
	}
	c.Agent.Progress()
	if err := c.Agent.CheckWatchdog(); err != nil {
		return err
	}
	c.game, c.running = c.Agent.Windows().Find(windowSpec(c.Config.Game))
	return nil
}

func (c *collect) launchGame(ctx context.Context) error {
	popup := windowSpec(c.Config.Popup)
	launcher, err := c.require("launcher", c.Config.Launcher)
	if err != nil {
		return err
	}
	c.Agent.CloseIfPresent(popup)
	if err := c.Agent.Windows().BringToForeground(launcher); err != nil {
		return err
	}
	if err := c.wait(ctx, 500); err != nil {
		return err
	}
	c.Agent.CloseIfPresent(popup)

	r, err := c.Agent.Windows().Rect(launcher)
	if err != nil {
		return err
	}
	if err := c.moveTo(r.Max.Add(offset(c.Config.Collect.LauncherCorner))); err != nil {
		return err
	}
	if err := c.wait(ctx, 100); err != nil {
		return err
	}
	c.Agent.CloseIfPresent(popup)
	if err := c.click(ctx, 50); err != nil {
		return err
	}
	c.game, err = c.Agent.WaitWindow(ctx, windowSpec(c.Config.Game))
	return err
}

func (c *collect) focusGame(ctx context.Context) error {
	if err := c.Agent.Windows().BringToForeground(c.game); err != nil {
		return err
	}
	return c.wait(ctx, 1000)
}

func (c *collect) dismissSaveWorld(ctx context.Context) error {
	err := c.Agent.Poll(ctx, automation.PollSpec{
		Name:      "save-world",
		Templates: pick(c.tmpl, "saveworld", "abandon"),
		OnHit: func(ctx context.Context, h automation.Hit) (automation.Outcome, error) {
			if err := c.clickAt(ctx, h.Center(zero), 100, 100); err != nil {
				return automation.Done, err
			}
			if err := c.wait(ctx, 1500); err != nil {
				return automation.Done, err
			}
			return automation.Done, c.click(ctx, 100)
		},
	})
	if err != nil {
		return err
	}
	return c.wait(ctx, 3000)
}

func (c *collect) mainMenu(ctx context.Context) error {
	esc := action.MustKey("ESC")
	err := c.Agent.Poll(ctx, automation.PollSpec{
		Name:      "main-menu",
		Templates: pick(c.tmpl, "openbtn", "news", "power"),
		OnHit: func(ctx context.Context, h automation.Hit) (automation.Outcome, error) {
			switch h.Name() {
			case "openbtn":
				if err := c.moveTo(h.Center(zero)); err != nil {
					return automation.Continue, err
				}
				for i := 0; i < 6; i++ {
					if err := c.click(ctx, 100); err != nil {
						return automation.Continue, err
					}
					if err := c.wait(ctx, 1000); err != nil {
						return automation.Continue, err
					}
				}
				return automation.Continue, nil
			case "news":
				return automation.Continue, c.Agent.Input().TapKey(ctx, esc)
			default:
				p, err := c.at(c.Config.Collect.Power)
				if err != nil {
					return automation.Done, err
				}
				if err := c.clickAt(ctx, p, 100, 100); err != nil {
					return automation.Done, err
				}
				if err := c.wait(ctx, 100); err != nil {
					return automation.Done, err
				}
				return automation.Done, c.click(ctx, 100)
			}
		},
	})
	if err != nil {
		return err
	}
	return c.wait(ctx, 1500)
}

func (c *collect) selectTier(ctx context.Context) error {
	next, err := c.at(c.Config.Collect.TierNext)
	if err != nil {
		return err
	}
	done, err := c.at(c.Config.Collect.TierDone)
	if err != nil {
		return err
	}
	return c.Agent.Poll(ctx, automation.PollSpec{
		Name:      "tier",
		Templates: pick(c.tmpl, "tier1", "tier2", "tier3", "tier4"),
		Interval:  c.ms(300),
		OnHit: func(ctx context.Context, h automation.Hit) (automation.Outcome, error) {
			p, outcome := next, automation.ContinueNow
			if h.Index == 3 {
				p, outcome = done, automation.Done
			}
			if err := c.clickAt(ctx, p, 50, 50); err != nil {
				return automation.Done, err
			}
			return outcome, c.wait(ctx, 50)
		},
	})
}

func (c *collect) confirmTier(ctx context.Context) error {
	if err := c.wait(ctx, 3000); err != nil {
		return err
	}
	done, err := c.at(c.Config.Collect.TierDone)
	if err != nil {
		return err
	}
	if err := c.clickAt(ctx, done, 100, 50); err != nil {
		return err
	}
	if err := c.wait(ctx, 50); err != nil {
		return err
	}
	park, err := c.at(c.Config.Collect.Park)
	if err != nil {
		return err
	}
	if err := c.moveTo(park); err != nil {
		return err
	}
	return c.wait(ctx, 3000)
}

func (c *collect) startMatch(ctx context.Context) error {
	err := c.Agent.Poll(ctx, automation.PollSpec{
		Name:      "start",
		Templates: pick(c.tmpl, "start"),
		OnHit: func(ctx context.Context, h automation.Hit) (automation.Outcome, error) {
			if err := c.clickAt(ctx, h.Center(zero), 100, 0); err != nil {
				return automation.Done, err
			}
			if err := c.wait(ctx, 100); err != nil {
				return automation.Done, err
			}
			return automation.Done, c.click(ctx, 0)
		},
	})
	if err != nil {
		return err
	}
	return c.wait(ctx, 3000)
}

func (c *collect) waitTeam(ctx context.Context) error {
	return c.Agent.Poll(ctx, automation.PollSpec{
		Name:      "team",
		Templates: pick(c.tmpl, "team"),
	})
}

func (c *collect) leaveMatch(ctx context.Context) error {
	if err := c.Agent.Input().TapKey(ctx, action.MustKey("ESC")); err != nil {
		return err
	}
	if err := c.wait(ctx, 500); err != nil {
		return err
	}
	menu, err := c.at(c.Config.Collect.Menu)
	if err != nil {
		return err
	}
	if err := c.clickAt(ctx, menu, 200, 100); err != nil {
		return err
	}
	if err := c.wait(ctx, 500); err != nil {
		return err
	}
	leave, err := c.at(c.Config.Collect.Leave)
	if err != nil {
		return err
	}
	if err := c.clickAt(ctx, leave, 200, 100); err != nil {
		return err
	}
	if err := c.wait(ctx, 1500); err != nil {
		return err
	}
	c.Agent.Progress()
	return c.Agent.CheckWatchdog()
}

func (c *collect) quitGame(ctx context.Context) error {
	if err := c.Agent.Input().Chord(ctx, action.MustKey("ALT"), action.MustKey("F4"), c.ms(100)); err != nil {
		return fmt.Errorf("quit game: %w", err)
	}
	return c.wait(ctx, 1000)
}

func (c *collect) closePopup(ctx context.Context) error {
	h, err := c.Agent.WaitWindow(ctx, windowSpec(c.Config.Popup))
	if err != nil {
		return err
	}
	return c.Agent.Windows().PostClose(h)
}
