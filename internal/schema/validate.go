package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Validate turns raw, untyped parameter values into a ProjectSpec.
// It is a pure function of its inputs: defaults are applied for absent
// optional fields, raw strings are coerced to the declared type, and every
// violation (missing required field, wrong type, value outside the allowed
// choices, unknown parameter name) is collected before returning.
// On failure the returned error is a *ValidationErrors naming each field.
func Validate(s *Schema, raw map[string]string) (ProjectSpec, error) {
	if err := s.Check(); err != nil {
		return nil, err
	}

	var errs []ValidationError
	spec := make(ProjectSpec, len(s.Fields))

	for _, f := range s.Fields {
		rawVal, supplied := raw[f.Name]

		if !supplied || rawVal == "" {
			if f.Required {
				errs = append(errs, ValidationError{
					Field:   f.Name,
					Message: "required parameter is missing",
					Wrapped: ErrRequiredParam,
				})
				continue
			}
			rawVal = f.Default
		}

		val, err := coerce(f, rawVal)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		spec[f.Name] = val
	}

	// Unknown parameter names are violations too, reported deterministically.
	var unknown []string
	for name := range raw {
		if _, ok := s.Lookup(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		errs = append(errs, ValidationError{
			Field:   name,
			Message: "not declared by the template schema",
			Value:   raw[name],
			Wrapped: ErrUnknownParam,
		})
	}

	if len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}
	return spec, nil
}

// coerce converts a raw string to the typed value for the field variant.
func coerce(f Field, raw string) (any, *ValidationError) {
	switch f.Type {
	case FieldString:
		return raw, nil

	case FieldBoolean:
		switch strings.ToLower(raw) {
		case "", "false", "no", "off", "0":
			return false, nil
		case "true", "yes", "on", "1":
			return true, nil
		}
		return nil, &ValidationError{
			Field:   f.Name,
			Message: "must be a boolean (true/false)",
			Value:   raw,
			Wrapped: ErrWrongType,
		}

	case FieldInteger:
		if raw == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &ValidationError{
				Field:   f.Name,
				Message: "must be an integer",
				Value:   raw,
				Wrapped: ErrWrongType,
			}
		}
		return n, nil

	case FieldChoice:
		for _, c := range f.Choices {
			if raw == c {
				return raw, nil
			}
		}
		return nil, &ValidationError{
			Field:   f.Name,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(f.Choices, ", ")),
			Value:   raw,
			Wrapped: ErrNotInChoices,
		}
	}

	return nil, &ValidationError{
		Field:   f.Name,
		Message: fmt.Sprintf("unsupported field type %q", f.Type),
		Wrapped: ErrWrongType,
	}
}
