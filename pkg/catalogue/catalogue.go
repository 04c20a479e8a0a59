package catalogue

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var defaultData []byte

// ErrUnknownProject is returned when a selection names an id the registry does not hold.
var ErrUnknownProject = errors.New("unknown project")

// Registry is an immutable id → project mapping. It is built once and passed to
// whichever component needs it.
type Registry struct {
	byID  map[int]Project
	order []int
}

// Default returns the registry built from the embedded catalogue.
func Default() (*Registry, error) {
	return Parse(defaultData)
}

// MustDefault is Default for program initialisation; it panics on a malformed
// embedded catalogue.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Load reads a catalogue from a YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalogue file: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML bytes and checks every entry.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalogue YAML: %w", err)
	}
	return New(f.Projects)
}

// New builds a registry from projects. Ids must be positive and unique and every
// metric vector must hold exactly MetricCount values.
func New(projects []Project) (*Registry, error) {
	r := &Registry{byID: make(map[int]Project, len(projects))}
	for _, p := range projects {
		if p.ID <= 0 {
			return nil, fmt.Errorf("project %q: id must be positive (got %d)", p.Name, p.ID)
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("project id %d: duplicate", p.ID)
		}
		if len(p.Metrics) != MetricCount {
			return nil, fmt.Errorf("project %d: %d metrics, want %d", p.ID, len(p.Metrics), MetricCount)
		}
		metrics := make([]float64, MetricCount)
		copy(metrics, p.Metrics)
		p.Metrics = metrics
		r.byID[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	sort.Ints(r.order)
	return r, nil
}

// Len returns the number of projects.
func (r *Registry) Len() int { return len(r.order) }

// Lookup returns a copy of the project with the given id.
func (r *Registry) Lookup(id int) (Project, bool) {
	p, ok := r.byID[id]
	if !ok {
		return Project{}, false
	}
	return clone(p), true
}

// Select resolves ids to projects, preserving the order of ids.
func (r *Registry) Select(ids []int) ([]Project, error) {
	out := make([]Project, 0, len(ids))
	for _, id := range ids {
		p, ok := r.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("project id %d: %w", id, ErrUnknownProject)
		}
		out = append(out, p)
	}
	return out, nil
}

// All returns every project in ascending id order.
func (r *Registry) All() []Project {
	out := make([]Project, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.byID[id]))
	}
	return out
}

func clone(p Project) Project {
	m := make([]float64, len(p.Metrics))
	copy(m, p.Metrics)
	p.Metrics = m
	return p
}
