package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/soocke/llama-bot-go/app"
	"github.com/soocke/llama-bot-go/config"
)

func main() {
	get := flag.Bool("get", false, "run the collect script")
	open := flag.Bool("open", false, "run the open script")
	cfgPath := flag.String("config", "llama-bot.json", "config file (.json or .ini)")
	debugFlag := flag.Bool("debug", false, "debug logging and diagnostics")
	preview := flag.Bool("preview", false, "show the preview window")
	flag.Parse()

	mode, err := selectMode(*get, *open)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, level, err := loadConfig(*cfgPath, *debugFlag, *preview)
	if err != nil {
		NewLogger(slog.LevelInfo).Error("config load failed", "path", *cfgPath, "error", err)
		os.Exit(1)
	}
	logger := NewLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.BuildContainer(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	err = app.NewBot(c, mode).Run(ctx)
	if cerr := c.Close(); cerr != nil {
		logger.Warn("history close", "error", cerr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

// loadConfig reads path and applies the command-line overrides. A missing
// file yields defaults; a file that cannot be decoded is an error.
func loadConfig(path string, debug, preview bool) (*config.Config, slog.Level, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, slog.LevelInfo, err
	}
	level := slog.LevelInfo
	if debug || cfg.Debug {
		cfg.Debug = true
		level = slog.LevelDebug
	}
	cfg.Preview = cfg.Preview || preview
	return cfg, level, nil
}

func selectMode(get, open bool) (app.Mode, error) {
	switch {
	case get && open:
		return "", errors.New("-get and -open are mutually exclusive")
	case get:
		return app.ModeCollect, nil
	case open:
		return app.ModeOpen, nil
	default:
		return "", errors.New("one of -get or -open is required")
	}
}
