package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/soocke/llama-bot-go/assets"
	"github.com/soocke/llama-bot-go/config"
	"github.com/soocke/llama-bot-go/debug"
	"github.com/soocke/llama-bot-go/domain/action"
	"github.com/soocke/llama-bot-go/domain/automation"
	"github.com/soocke/llama-bot-go/domain/capture"
	"github.com/soocke/llama-bot-go/domain/script"
	"github.com/soocke/llama-bot-go/domain/templates"
	"github.com/soocke/llama-bot-go/domain/watchdog"
	"github.com/soocke/llama-bot-go/domain/window"
	"github.com/soocke/llama-bot-go/history"
)

// Mode selects the script a run executes.
type Mode string

const (
	ModeCollect Mode = "collect"
	ModeOpen    Mode = "open"
)

// Container assembles the services one run needs.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Capturer  *capture.Capturer
	Windows   window.Manager
	Input     *action.Dispatcher
	Watchdog  *watchdog.Watchdog
	Templates *templates.Store
	Agent     *automation.Agent

	// History and Recorder are nil when no history path is configured or
	// the database cannot be opened.
	History  *history.DB
	Recorder *history.Recorder
	Dumper   *debug.FrameDumper
}

// BuildContainer constructs all components. Side effects are limited to
// reading the template manifest and opening the history database.
func BuildContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	manifest, err := loadManifest(cfg)
	if err != nil {
		return nil, err
	}
	c.Templates = templates.NewStore(logger, os.DirFS(cfg.TemplateDir), manifest)
	logger.Debug("template manifest", "dir", cfg.TemplateDir, "names", c.Templates.Names())

	c.Capturer = capture.NewCapturer(logger, capture.NewBackend())
	c.Windows = window.NewManager(logger)
	c.Input = action.NewDispatcher(logger, action.NewBackend(), action.Timing{
		MoveSettle: ms(cfg.MoveSettleMS),
		ClickHold:  ms(cfg.ClickHoldMS),
		KeyHold:    ms(cfg.KeyHoldMS),
	})
	dialogs := make([]window.Spec, 0, len(cfg.BlockingDialogs))
	for _, d := range cfg.BlockingDialogs {
		dialogs = append(dialogs, window.Spec{Class: d.Class, Title: d.Title})
	}
	c.Watchdog = watchdog.New(logger, c.Windows, cfg.MaxIdle(), dialogs)
	c.Agent = automation.NewAgent(logger, automation.Options{
		Threshold:    cfg.Threshold,
		ScalePercent: cfg.ScalePercent,
		PollInterval: cfg.PollInterval(),
		ProcessName:  cfg.ProcessName,
		Target:       capture.Desktop(),
	}, c.Capturer, c.Windows, c.Input, c.Watchdog)

	if cfg.DumpDir != "" {
		c.Dumper = debug.NewFrameDumper(logger, cfg.DumpDir)
		c.Agent.OnAbort(c.Dumper.Hook)
	}
	if cfg.Debug {
		c.Agent.AddObserver(debug.NewChangeDetector(logger, 2, 30))
	}

	if cfg.HistoryPath != "" {
		db, err := history.Open(logger, cfg.HistoryPath)
		if err != nil {
			logger.Warn("history disabled", "path", cfg.HistoryPath, "error", err)
		} else {
			c.History = db
			c.Recorder = history.NewRecorder(logger, db)
		}
	}
	return c, nil
}

// Script builds the runner for mode.
func (c *Container) Script(mode Mode) (*script.Runner, error) {
	env := script.Env{Agent: c.Agent, Templates: c.Templates, Config: c.Config}
	switch mode {
	case ModeCollect:
		return script.NewCollect(env)
	case ModeOpen:
		return script.NewOpen(env)
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// Close releases the history database.
func (c *Container) Close() error {
	if c.History == nil {
		return nil
	}
	return c.History.Close()
}

// loadManifest prefers the configured manifest, then templates.yaml in the
// template directory, then the embedded default.
func loadManifest(cfg *config.Config) (*templates.Manifest, error) {
	path := cfg.Manifest
	if path == "" {
		candidate := filepath.Join(cfg.TemplateDir, "templates.yaml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path == "" {
		return assets.DefaultManifest()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template manifest: %w", err)
	}
	return templates.ParseManifest(data)
}
