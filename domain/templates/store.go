// Package templates loads reference images by logical name from an image
// store described by a YAML manifest.
package templates

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"log/slog"
	"sort"
	"sync"

	_ "golang.org/x/image/bmp"

	"github.com/soocke/llama-bot-go/domain/vision"
)

// ErrUnknownTemplate is wrapped by LoadError when a name is not in the
// manifest.
var ErrUnknownTemplate = errors.New("unknown template")

// LoadError reports that a required template could not be loaded.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("template load failed: %s: %v", e.Name, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// Store decodes templates on first use and keeps them for the whole run.
type Store struct {
	mu     sync.Mutex
	fsys   fs.FS
	defs   map[string]Definition
	cache  map[string]*vision.Template
	logger *slog.Logger
}

// NewStore builds a store reading image files from fsys.
func NewStore(logger *slog.Logger, fsys fs.FS, m *Manifest) *Store {
	s := &Store{
		fsys:   fsys,
		defs:   make(map[string]Definition),
		cache:  make(map[string]*vision.Template),
		logger: logger,
	}
	if m != nil {
		for _, d := range m.Templates {
			s.defs[d.Name] = d
		}
	}
	return s
}

// Names lists the manifest's logical names in sorted order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.defs))
	for n := range s.defs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Get returns the template for name, decoding it on first use.
func (s *Store) Get(name string) (*vision.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.cache[name]; ok {
		return t, nil
	}
	def, ok := s.defs[name]
	if !ok {
		return nil, &LoadError{Name: name, Err: ErrUnknownTemplate}
	}
	t, err := s.decode(def)
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	s.cache[name] = t
	if s.logger != nil {
		s.logger.Debug("template loaded", "name", name, "path", def.Path, "size", t.Size())
	}
	return t, nil
}

// Load returns the templates for names in order, failing on the first one
// that cannot be loaded.
func (s *Store) Load(names ...string) ([]*vision.Template, error) {
	out := make([]*vision.Template, 0, len(names))
	for _, n := range names {
		t, err := s.Get(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) decode(def Definition) (*vision.Template, error) {
	f, err := s.fsys.Open(def.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", def.Path, err)
	}
	t, err := vision.NewTemplate(def.Name, img)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", format, def.Path, err)
	}
	t.Threshold = def.Threshold
	return t, nil
}
