package schema

import (
	"fmt"
	"slices"
)

// FieldType is the declared type of a template parameter.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldBoolean FieldType = "boolean"
	FieldInteger FieldType = "integer"
	FieldChoice  FieldType = "choice"
)

// IsValid reports whether the field type is one of the supported variants.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldString, FieldBoolean, FieldInteger, FieldChoice:
		return true
	}
	return false
}

// Field declares a single template parameter. Fields are read-only after the
// owning template is loaded.
type Field struct {
	Name        string    `yaml:"name"`
	Type        FieldType `yaml:"type"`
	Description string    `yaml:"description,omitempty"`
	Required    bool      `yaml:"required,omitempty"`
	Default     string    `yaml:"default,omitempty"`
	Choices     []string  `yaml:"choices,omitempty"`
}

// Schema is an ordered set of parameter fields owned by a template.
type Schema struct {
	Fields []Field `yaml:"parameters"`
}

// Lookup returns the field with the given name.
func (s *Schema) Lookup(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Check verifies the schema itself is well formed: every field has a name and
// a supported type, choice fields declare at least one choice, defaults of
// choice fields are members of their choice set, and optional choice fields
// carry a default.
func (s *Schema) Check() error {
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field with empty name", ErrInvalidSchema)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = true

		if !f.Type.IsValid() {
			return fmt.Errorf("%w: field %q has unsupported type %q", ErrInvalidSchema, f.Name, f.Type)
		}
		if f.Type == FieldChoice {
			if len(f.Choices) == 0 {
				return fmt.Errorf("%w: choice field %q declares no choices", ErrInvalidSchema, f.Name)
			}
			if f.Default != "" && !slices.Contains(f.Choices, f.Default) {
				return fmt.Errorf("%w: choice field %q default %q not in choices", ErrInvalidSchema, f.Name, f.Default)
			}
			// An omitted optional choice falls back to its default; with
			// neither required nor a default there is no valid value for an
			// absent field.
			if !f.Required && f.Default == "" {
				return fmt.Errorf("%w: optional choice field %q needs a default", ErrInvalidSchema, f.Name)
			}
		}
		if f.Type != FieldChoice && len(f.Choices) > 0 {
			return fmt.Errorf("%w: field %q declares choices but has type %q", ErrInvalidSchema, f.Name, f.Type)
		}
	}
	return nil
}

// ProjectSpec is a validated mapping from parameter name to typed value.
// Values are string, bool, or int depending on the declared field type.
// A ProjectSpec is built per invocation and consumed once by the render engine.
type ProjectSpec map[string]any

// String returns the string value for name, or "" when absent or not a string.
func (p ProjectSpec) String(name string) string {
	if v, ok := p[name].(string); ok {
		return v
	}
	return ""
}

// Bool returns the boolean value for name, or false when absent or not a bool.
func (p ProjectSpec) Bool(name string) bool {
	if v, ok := p[name].(bool); ok {
		return v
	}
	return false
}

// Int returns the integer value for name, or 0 when absent or not an int.
func (p ProjectSpec) Int(name string) int {
	if v, ok := p[name].(int); ok {
		return v
	}
	return 0
}
