// Package preset holds named dice pools that callers can roll by ID.
package preset

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/swingdice/internal/game/dice"
)

// ErrNotFound is returned by Registry.Get for an unknown preset ID.
var ErrNotFound = errors.New("preset: not found")

// Preset is a named dice pool loaded from YAML.
type Preset struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Pool        string   `yaml:"pool"`  // pool expression, e.g. "500d20+500d4"
	Swing       *float64 `yaml:"swing"` // nil = caller/server default
}

// Groups parses the preset's pool expression.
func (p *Preset) Groups() ([]dice.Group, error) {
	groups, err := dice.ParsePool(p.Pool)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.ID, err)
	}
	return groups, nil
}

// Validate checks that p has an ID, a parseable pool and a swing in [0, 1].
func (p *Preset) Validate() error {
	if p.ID == "" {
		return errors.New("preset: id must not be empty")
	}
	if _, err := p.Groups(); err != nil {
		return err
	}
	if p.Swing != nil && (math.IsNaN(*p.Swing) || *p.Swing < 0 || *p.Swing > 1) {
		return fmt.Errorf("preset %q: swing must be in [0, 1], got %v", p.ID, *p.Swing)
	}
	return nil
}

// Registry holds presets keyed by ID. It is not safe for concurrent mutation;
// populate it at startup and only read it afterwards.
type Registry struct {
	presets map[string]*Preset
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{presets: make(map[string]*Preset)}
}

// Register validates p and adds it. Duplicate IDs are rejected.
//
// Precondition: p must not be nil.
func (r *Registry) Register(p *Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, dup := r.presets[p.ID]; dup {
		return fmt.Errorf("preset %q: duplicate id", p.ID)
	}
	r.presets[p.ID] = p
	return nil
}

// Get returns the preset for id, or ErrNotFound.
func (r *Registry) Get(id string) (*Preset, error) {
	p, ok := r.presets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return p, nil
}

// All returns every preset sorted by ID.
func (r *Registry) All() []*Preset {
	out := make([]*Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered presets.
func (r *Registry) Len() int {
	return len(r.presets)
}

// Defaults returns a Registry with one million-die preset per standard die type.
func Defaults() *Registry {
	reg := NewRegistry()
	for _, sides := range []int{4, 6, 8, 10, 12, 20, 100} {
		id := fmt.Sprintf("d%d", sides)
		// Built-in pools always parse.
		_ = reg.Register(&Preset{
			ID:          id,
			Name:        fmt.Sprintf("A million %s", id),
			Description: fmt.Sprintf("1,000,000 %d-sided dice.", sides),
			Pool:        fmt.Sprintf("1000000%s", id),
		})
	}
	return reg
}

// LoadDirectory reads every *.yaml file in dir into reg. Each file holds one preset.
//
// Precondition: dir must be a readable directory; reg must not be nil.
// Postcondition: Returns nil, or an error naming the first file that failed.
func LoadDirectory(dir string, reg *Registry) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading preset dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		var p Preset
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := reg.Register(&p); err != nil {
			return fmt.Errorf("registering %q: %w", path, err)
		}
	}
	return nil
}
