// Package registry discovers and exposes the project templates bundled with
// the faststart binary. Templates are loaded once at startup from an fs.FS
// (go:embed in production, fstest.MapFS in tests) and are immutable after
// load. The registry is constructed explicitly and passed to consumers;
// there is no package-level singleton.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/faststart/faststart/internal/schema"
)

// ManifestFile is the per-template manifest describing the template and its
// parameter schema.
const ManifestFile = "template.yaml"

// Sentinel errors for registry operations.
var (
	// ErrTemplateNotFound indicates the requested template ID is unknown.
	ErrTemplateNotFound = errors.New("registry: template not found")

	// ErrCorruptManifest indicates a bundled template manifest could not be
	// parsed. This is the only fatal condition: the bundled assets shipped
	// with the binary are broken and no invocation can succeed.
	ErrCorruptManifest = errors.New("registry: corrupt template manifest")
)

// Condition gates a template file on a parameter value. The file at Path is
// included in the render plan only when the named parameter renders to the
// Equals string, or to anything but the NotEquals string (booleans compare
// against "true"/"false"). Exactly one of Equals/NotEquals is set.
type Condition struct {
	Path      string `yaml:"path"`
	Parameter string `yaml:"parameter"`
	Equals    string `yaml:"equals,omitempty"`
	NotEquals string `yaml:"not_equals,omitempty"`
}

// Manifest is the parsed template.yaml of one template.
type Manifest struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Long        string         `yaml:"long,omitempty"` // markdown, shown by describe/list --long
	Version     string         `yaml:"version"`
	Parameters  []schema.Field `yaml:"parameters"`
	Conditions  []Condition    `yaml:"conditions,omitempty"`
}

// Template is a named, versioned bundle of files with placeholder markers.
// Files holds the template tree rooted at the template directory, with the
// manifest itself excluded. Immutable once registered.
type Template struct {
	ID         string
	Manifest   Manifest
	Schema     *schema.Schema
	Conditions []Condition
	Files      fs.FS
}

// Registry enumerates the available templates.
type Registry struct {
	templates map[string]*Template
	order     []string
}

// Load constructs a Registry from the given filesystem. Each top-level
// directory containing a template.yaml becomes one template. A manifest that
// fails to parse or declares an invalid schema returns ErrCorruptManifest:
// the caller is expected to abort.
func Load(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("registry: read template root: %w", err)
	}

	r := &Registry{templates: make(map[string]*Template)}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()

		data, err := fs.ReadFile(fsys, id+"/"+ManifestFile)
		if err != nil {
			// Directories without a manifest are not templates.
			continue
		}

		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptManifest, id, err)
		}
		if m.Name == "" {
			m.Name = id
		}
		if m.Name != id {
			return nil, fmt.Errorf("%w: %s: manifest name %q does not match directory", ErrCorruptManifest, id, m.Name)
		}

		s := &schema.Schema{Fields: m.Parameters}
		if err := s.Check(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptManifest, id, err)
		}

		sub, err := fs.Sub(fsys, id)
		if err != nil {
			return nil, fmt.Errorf("registry: open template %s: %w", id, err)
		}

		r.templates[id] = &Template{
			ID:         id,
			Manifest:   m,
			Schema:     s,
			Conditions: m.Conditions,
			Files:      sub,
		}
		r.order = append(r.order, id)
	}

	sort.Strings(r.order)
	return r, nil
}

// List returns all templates sorted by ID.
func (r *Registry) List() []*Template {
	out := make([]*Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}

// Get returns the template with the given ID, or ErrTemplateNotFound.
func (r *Registry) Get(id string) (*Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q (run \"faststart list\" to see available templates)", ErrTemplateNotFound, id)
	}
	return t, nil
}

// IDs returns the sorted template identifiers.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
