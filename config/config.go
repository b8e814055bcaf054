package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Point is a screen offset from the virtual-desktop origin.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Window identifies a top-level window by class and/or title.
type Window struct {
	Class string `json:"class,omitempty"`
	Title string `json:"title,omitempty"`
}

// CollectPoints are the fixed click positions used by the collect script.
type CollectPoints struct {
	LauncherCorner Point `json:"launcher_corner"` // from the launcher's bottom-right
	Power          Point `json:"power"`
	TierNext       Point `json:"tier_next"`
	TierDone       Point `json:"tier_done"`
	Park           Point `json:"park"`
	Menu           Point `json:"menu"`
	Leave          Point `json:"leave"`
}

// OpenPoints are the fixed positions and offsets used by the open script.
type OpenPoints struct {
	MiniLamaHover Point `json:"mini_lama_hover"` // from the mini llama center
	MiniLamaClick Point `json:"mini_lama_click"` // from the mini llama center
	Attack        Point `json:"attack"`
}

// Config holds runtime configuration for the bot. Fields may be loaded
// from a JSON or INI file and overridden by command-line flags.
type Config struct {
	Debug   bool `json:"debug"`
	Preview bool `json:"preview"`

	// Matching and capture
	Threshold    float64 `json:"threshold"`
	ScalePercent int     `json:"scale_percent"`

	// Loop pacing
	PollIntervalMS int `json:"poll_interval_ms"`
	MaxIdleSeconds int `json:"max_idle_seconds"`
	MoveSettleMS   int `json:"move_settle_ms"`
	ClickHoldMS    int `json:"click_hold_ms"`
	KeyHoldMS      int `json:"key_hold_ms"`

	// Template store
	TemplateDir string `json:"template_dir"`
	Manifest    string `json:"manifest"`

	// Target application
	ProcessName     string   `json:"process_name"`
	Launcher        Window   `json:"launcher"`
	Game            Window   `json:"game"`
	Popup           Window   `json:"popup"`
	BlockingDialogs []Window `json:"blocking_dialogs"`

	Collect CollectPoints `json:"collect"`
	Open    OpenPoints    `json:"open"`

	// Diagnostics
	HistoryPath string `json:"history_path"`
	DumpDir     string `json:"dump_dir"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Threshold:      0.96,
		ScalePercent:   100,
		PollIntervalMS: 1000,
		MaxIdleSeconds: 120,
		MoveSettleMS:   100,
		ClickHoldMS:    100,
		KeyHoldMS:      50,
		TemplateDir:    ".",
		ProcessName:    "FortniteClient-Win64-Shipping.exe",
		Launcher:       Window{Class: "TWINCONTROL", Title: "WeGame"},
		Game:           Window{Title: "Fortnite  "},
		Popup:          Window{Title: "通用退弹窗口"},
		BlockingDialogs: []Window{
			{Class: "#32770", Title: "警告码 (3, 1015, 91001)"},
		},
		Collect: CollectPoints{
			LauncherCorner: Point{X: -32, Y: -32},
			Power:          Point{X: 777, Y: 106},
			TierNext:       Point{X: 150, Y: 260},
			TierDone:       Point{X: 1600, Y: 900},
			Park:           Point{X: 500, Y: 500},
			Menu:           Point{X: 1600, Y: 406},
			Leave:          Point{X: 1200, Y: 755},
		},
		Open: OpenPoints{
			MiniLamaHover: Point{X: 0, Y: 135},
			MiniLamaClick: Point{X: 0, Y: 140},
			Attack:        Point{X: 400, Y: 300},
		},
		HistoryPath: "llama-bot.db",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.Threshold <= 0 || c.Threshold > 1 {
		c.Threshold = d.Threshold
	}
	if c.ScalePercent <= 0 || c.ScalePercent > 100 {
		c.ScalePercent = d.ScalePercent
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = d.PollIntervalMS
	}
	if c.MaxIdleSeconds <= 0 {
		c.MaxIdleSeconds = d.MaxIdleSeconds
	}
	if c.MoveSettleMS < 0 {
		c.MoveSettleMS = d.MoveSettleMS
	}
	if c.ClickHoldMS < 0 {
		c.ClickHoldMS = d.ClickHoldMS
	}
	if c.KeyHoldMS < 0 {
		c.KeyHoldMS = d.KeyHoldMS
	}
	if strings.TrimSpace(c.TemplateDir) == "" {
		c.TemplateDir = d.TemplateDir
	}
	if strings.TrimSpace(c.ProcessName) == "" {
		c.ProcessName = d.ProcessName
	}
	return nil
}

// PollInterval is the pause between loop iterations.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// MaxIdle is the watchdog liveness timeout.
func (c *Config) MaxIdle() time.Duration { return time.Duration(c.MaxIdleSeconds) * time.Second }

// Load reads configuration from path, choosing the INI or JSON reader by
// extension. If the file does not exist it returns DefaultConfig(). On a
// decode error it returns defaults with the error.
func Load(path string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		return LoadINI(path)
	}
	return LoadJSON(path)
}

// LoadJSON reads a JSON configuration file.
func LoadJSON(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
