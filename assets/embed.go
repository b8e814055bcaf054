package assets

import (
	_ "embed"

	"github.com/soocke/llama-bot-go/domain/templates"
)

// TemplatesYAML is the default template manifest. It is used when the
// template directory carries no templates.yaml of its own.
//
//go:embed templates.yaml
var TemplatesYAML []byte

// DefaultManifest decodes the embedded manifest.
func DefaultManifest() (*templates.Manifest, error) {
	return templates.ParseManifest(TemplatesYAML)
}
