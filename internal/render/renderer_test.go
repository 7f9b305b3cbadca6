package render

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestRendererRender(t *testing.T) {
	t.Run("successful_render", func(t *testing.T) {
		fsys := fstest.MapFS{
			"README.md.tmpl": &fstest.MapFile{
				Data: []byte("# {{.project_name}}\n\n{{.description}}\n"),
			},
		}
		r := NewRenderer(fsys)

		data := map[string]any{
			"project_name": "demo",
			"description":  "A demo service",
		}

		result, err := r.Render("README.md.tmpl", data)
		if err != nil {
			t.Fatalf("Render error: %v", err)
		}

		expected := "# demo\n\nA demo service\n"
		if string(result) != expected {
			t.Errorf("Render result = %q, want %q", string(result), expected)
		}
	})

	t.Run("missing_key_strict_mode", func(t *testing.T) {
		fsys := fstest.MapFS{
			"test.tmpl": &fstest.MapFile{
				Data: []byte("Hello {{.name}}, port {{.port}}"),
			},
		}
		r := NewRenderer(fsys)

		// Only provide name, not port
		data := map[string]any{"name": "demo"}

		_, err := r.Render("test.tmpl", data)
		if err == nil {
			t.Fatal("expected error for missing key")
		}
		if !errors.Is(err, ErrMissingTemplateKey) {
			t.Errorf("expected ErrMissingTemplateKey, got: %v", err)
		}
	})

	t.Run("nonexistent_template", func(t *testing.T) {
		r := NewRenderer(fstest.MapFS{})

		_, err := r.Render("nonexistent.tmpl", nil)
		if err == nil {
			t.Fatal("expected error for nonexistent template")
		}
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("expected ErrTemplateNotFound, got: %v", err)
		}
	})

	t.Run("no_unexpanded_tokens_in_result", func(t *testing.T) {
		fsys := fstest.MapFS{
			"config.tmpl": &fstest.MapFile{
				Data: []byte("name: {{.name}}\nport: {{.port}}"),
			},
		}
		r := NewRenderer(fsys)

		result, err := r.Render("config.tmpl", map[string]any{
			"name": "svc",
			"port": 8000,
		})
		if err != nil {
			t.Fatalf("Render error: %v", err)
		}
		if strings.Contains(string(result), "{{") {
			t.Errorf("result contains unexpanded template token: %s", result)
		}
	})

	t.Run("conditional_blocks", func(t *testing.T) {
		fsys := fstest.MapFS{
			"main.tmpl": &fstest.MapFile{
				Data: []byte(`{{if .use_auth}}auth on{{else}}auth off{{end}}`),
			},
		}
		r := NewRenderer(fsys)

		result, err := r.Render("main.tmpl", map[string]any{"use_auth": true})
		if err != nil {
			t.Fatalf("Render error: %v", err)
		}
		if string(result) != "auth on" {
			t.Errorf("result = %q, want %q", string(result), "auth on")
		}
	})

	t.Run("render_string_for_file_names", func(t *testing.T) {
		r := NewRenderer(fstest.MapFS{})

		got, err := r.RenderString("app/{{snake .project_name}}/main.py", map[string]any{
			"project_name": "My Demo",
		})
		if err != nil {
			t.Fatalf("RenderString error: %v", err)
		}
		if got != "app/my_demo/main.py" {
			t.Errorf("RenderString = %q, want %q", got, "app/my_demo/main.py")
		}
	})

	t.Run("plain_name_passes_through", func(t *testing.T) {
		r := NewRenderer(fstest.MapFS{})
		got, err := r.RenderString("app/api/v1/endpoints.py.tmpl", map[string]any{})
		if err != nil {
			t.Fatalf("RenderString error: %v", err)
		}
		if got != "app/api/v1/endpoints.py.tmpl" {
			t.Errorf("RenderString = %q", got)
		}
	})
}

func TestTemplateFuncs(t *testing.T) {
	tests := []struct {
		fn    string
		input string
		want  string
	}{
		{"snake", "My Demo-App", "my_demo_app"},
		{"snake", "already_snake", "already_snake"},
		{"kebab", "My Demo_App", "my-demo-app"},
		{"pascal", "my-demo_app", "MyDemoApp"},
		{"pascal", "demo", "Demo"},
		{"title", "my demo", "My Demo"},
	}

	for _, tt := range tests {
		t.Run(tt.fn+"_"+tt.input, func(t *testing.T) {
			fn := templateFuncMap[tt.fn].(func(string) string)
			got := fn(tt.input)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.fn, tt.input, got, tt.want)
			}
		})
	}
}

func TestJsonEscapeTemplateFunc(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain_string_unchanged", "demo-service", "demo-service"},
		{"double_quotes_escaped", `a "quoted" name`, `a \"quoted\" name`},
		{"backslashes_escaped", `C:\path`, `C:\\path`},
		{"tab_and_newline_escaped", "line1\tvalue\nline2", `line1\tvalue\nline2`},
		{"empty_string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := templateFuncMap["jsonEscape"].(func(string) string)
			got := fn(tt.input)
			if got != tt.want {
				t.Errorf("jsonEscape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnexpandedTokenDetection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		match   bool
	}{
		{"double_brace", "{{VAR}}", true},
		{"go_template_dot", "{{.name}}", true},
		{"dollar_brace", "${SHELL}", true},
		{"normal_text", "hello world", false},
		{"empty_braces", "{{}}", false},
		{"shell_positional", "$1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := unexpandedTokenPattern.MatchString(tt.content)
			if got != tt.match {
				t.Errorf("pattern match for %q = %v, want %v", tt.content, got, tt.match)
			}
		})
	}
}
