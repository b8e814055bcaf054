package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// LoadINI reads configuration from an INI file. Missing keys keep their
// defaults; a missing file yields DefaultConfig().
//
//	[bot]
//	threshold = 0.96
//	poll_interval_ms = 1000
//	[windows]
//	game_title = "Fortnite  "
//	blocking_class = "#32770"
//	[points]
//	collect.power = 777,106
func LoadINI(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	file, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config file: %w", err)
	}

	bot := file.Section("bot")
	cfg.Debug = bot.Key("debug").MustBool(cfg.Debug)
	cfg.Preview = bot.Key("preview").MustBool(cfg.Preview)
	cfg.Threshold = bot.Key("threshold").MustFloat64(cfg.Threshold)
	cfg.ScalePercent = bot.Key("scale_percent").MustInt(cfg.ScalePercent)
	cfg.PollIntervalMS = bot.Key("poll_interval_ms").MustInt(cfg.PollIntervalMS)
	cfg.MaxIdleSeconds = bot.Key("max_idle_seconds").MustInt(cfg.MaxIdleSeconds)
	cfg.MoveSettleMS = bot.Key("move_settle_ms").MustInt(cfg.MoveSettleMS)
	cfg.ClickHoldMS = bot.Key("click_hold_ms").MustInt(cfg.ClickHoldMS)
	cfg.KeyHoldMS = bot.Key("key_hold_ms").MustInt(cfg.KeyHoldMS)
	cfg.TemplateDir = bot.Key("template_dir").MustString(cfg.TemplateDir)
	cfg.Manifest = bot.Key("manifest").MustString(cfg.Manifest)
	cfg.ProcessName = bot.Key("process_name").MustString(cfg.ProcessName)
	cfg.HistoryPath = bot.Key("history_path").MustString(cfg.HistoryPath)
	cfg.DumpDir = bot.Key("dump_dir").MustString(cfg.DumpDir)

	win := file.Section("windows")
	cfg.Launcher.Class = win.Key("launcher_class").MustString(cfg.Launcher.Class)
	cfg.Launcher.Title = win.Key("launcher_title").MustString(cfg.Launcher.Title)
	cfg.Game.Class = win.Key("game_class").MustString(cfg.Game.Class)
	cfg.Game.Title = win.Key("game_title").MustString(cfg.Game.Title)
	cfg.Popup.Class = win.Key("popup_class").MustString(cfg.Popup.Class)
	cfg.Popup.Title = win.Key("popup_title").MustString(cfg.Popup.Title)
	if win.HasKey("blocking_title") {
		cfg.BlockingDialogs = []Window{{
			Class: win.Key("blocking_class").String(),
			Title: win.Key("blocking_title").String(),
		}}
	}

	pts := file.Section("points")
	targets := map[string]*Point{
		"collect.launcher_corner": &cfg.Collect.LauncherCorner,
		"collect.power":           &cfg.Collect.Power,
		"collect.tier_next":       &cfg.Collect.TierNext,
		"collect.tier_done":       &cfg.Collect.TierDone,
		"collect.park":            &cfg.Collect.Park,
		"collect.menu":            &cfg.Collect.Menu,
		"collect.leave":           &cfg.Collect.Leave,
		"open.mini_lama_hover":    &cfg.Open.MiniLamaHover,
		"open.mini_lama_click":    &cfg.Open.MiniLamaClick,
		"open.attack":             &cfg.Open.Attack,
	}
	for name, dst := range targets {
		if !pts.HasKey(name) {
			continue
		}
		p, err := ParsePoint(pts.Key(name).String())
		if err != nil {
			return DefaultConfig(), fmt.Errorf("points.%s: %w", name, err)
		}
		*dst = p
	}

	_ = cfg.Validate()
	return cfg, nil
}

// ParsePoint parses "x,y".
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("expected x,y got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Point{}, fmt.Errorf("bad x in %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Point{}, fmt.Errorf("bad y in %q: %w", s, err)
	}
	return Point{X: x, Y: y}, nil
}
