package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// templateFuncMap provides custom functions available in all templates.
var templateFuncMap = template.FuncMap{
	// snake converts "My Project" or "my-project" to "my_project".
	"snake": func(s string) string {
		return strings.ToLower(strings.NewReplacer(" ", "_", "-", "_").Replace(s))
	},
	// kebab converts "My Project" or "my_project" to "my-project".
	"kebab": func(s string) string {
		return strings.ToLower(strings.NewReplacer(" ", "-", "_", "-").Replace(s))
	},
	// pascal converts "my-project" to "MyProject".
	"pascal": func(s string) string {
		words := strings.FieldsFunc(s, func(r rune) bool {
			return r == ' ' || r == '-' || r == '_'
		})
		caser := cases.Title(language.English, cases.NoLower)
		for i, w := range words {
			words[i] = caser.String(strings.ToLower(w))
		}
		return strings.Join(words, "")
	},
	// title converts "my project" to "My Project".
	"title": func(s string) string {
		return cases.Title(language.English).String(s)
	},
	// jsonEscape escapes a string for safe embedding in JSON values.
	// It handles backslashes, quotes, and control characters by leveraging
	// encoding/json.Marshal, then stripping the surrounding quotes.
	"jsonEscape": func(s string) string {
		b, err := json.Marshal(s)
		if err != nil {
			return s
		}
		return string(b[1 : len(b)-1])
	},
}

// unexpandedTokenPattern detects leftover placeholder markers in rendered
// output. Matches {{VAR}}, {{.Var}}, and ${VAR} patterns.
var unexpandedTokenPattern = regexp.MustCompile(`\{\{\.?[A-Za-z_][A-Za-z0-9_.]*\}\}|\$\{[A-Za-z_][A-Za-z0-9_]*\}`)

// Renderer renders template text with strict mode enabled.
type Renderer interface {
	// Render parses the named template file from the template FS and
	// executes it with the given data. Returns ErrMissingTemplateKey if a
	// key is missing and ErrUnexpandedToken if markers remain afterwards.
	Render(name string, data any) ([]byte, error)

	// RenderString renders an inline template string, used for parameter
	// substitution in file and directory names.
	RenderString(text string, data any) (string, error)
}

// renderer is the concrete implementation of Renderer.
type renderer struct {
	fsys fs.FS
}

// NewRenderer creates a Renderer backed by the given filesystem.
func NewRenderer(fsys fs.FS) Renderer {
	return &renderer{fsys: fsys}
}

// Render parses and executes a template file with missingkey=error.
func (r *renderer) Render(name string, data any) ([]byte, error) {
	content, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return execute(name, string(content), data)
}

// RenderString renders an inline template string with missingkey=error.
func (r *renderer) RenderString(text string, data any) (string, error) {
	out, err := execute("inline", text, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// execute parses and runs one template, then verifies no markers survived.
func execute(name, text string, data any) ([]byte, error) {
	tmpl, err := template.New(name).
		Funcs(templateFuncMap).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("template parse %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingTemplateKey, err)
	}

	result := buf.Bytes()
	if loc := unexpandedTokenPattern.Find(result); loc != nil {
		return nil, fmt.Errorf("%w: found %q in %s", ErrUnexpandedToken, string(loc), name)
	}
	return result, nil
}
