package app

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/soocke/llama-bot-go/config"
	"github.com/soocke/llama-bot-go/domain/templates"
)

func TestLoadManifest_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.TemplateDir = dir

	m, err := loadManifest(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Templates) == 0 {
		t.Fatal("expected the embedded manifest")
	}

	local := "templates:\n  - name: only\n    path: only.png\n"
	if err := os.WriteFile(filepath.Join(dir, "templates.yaml"), []byte(local), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err = loadManifest(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Templates) != 1 || m.Templates[0].Name != "only" {
		t.Fatalf("expected the template directory manifest, got %+v", m.Templates)
	}

	cfg.Manifest = filepath.Join(dir, "missing.yaml")
	if _, err := loadManifest(cfg); err == nil {
		t.Fatal("expected an error for a missing explicit manifest")
	}
}

func TestContainer_Script(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TemplateDir = t.TempDir()
	cfg.HistoryPath = ""
	c, err := BuildContainer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Script("fish"); err == nil {
		t.Fatal("expected unknown mode to fail")
	}
	_, err = c.Script(ModeOpen)
	var le *templates.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected a template load error for an empty template dir, got %v", err)
	}
}
