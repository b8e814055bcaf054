package templates

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition describes one reference image in a manifest.
type Definition struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	// Threshold overrides the run-wide acceptance threshold when > 0.
	Threshold   float64 `yaml:"threshold,omitempty"`
	Description string  `yaml:"description,omitempty"`
}

// Manifest is the YAML file that maps logical template names to image files.
type Manifest struct {
	Templates []Definition `yaml:"templates"`
}

// ParseManifest decodes and validates a manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template manifest: %w", err)
	}
	seen := make(map[string]bool, len(m.Templates))
	for i, def := range m.Templates {
		if def.Name == "" {
			return nil, fmt.Errorf("template %d: name cannot be empty", i+1)
		}
		if def.Path == "" {
			return nil, fmt.Errorf("template %d (%s): path cannot be empty", i+1, def.Name)
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("template %d (%s): duplicate name", i+1, def.Name)
		}
		if def.Threshold < 0 || def.Threshold > 1 {
			return nil, fmt.Errorf("template %d (%s): threshold %v outside [0,1]", i+1, def.Name, def.Threshold)
		}
		seen[def.Name] = true
	}
	return &m, nil
}
