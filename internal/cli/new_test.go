package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/faststart/faststart/internal/registry"
	"github.com/faststart/faststart/internal/render"
	"github.com/faststart/faststart/internal/schema"
)

// readProject returns a map of destination-relative path to file content.
func readProject(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return tree
}

func TestNewMinimalAPIEndToEnd(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "demo")

	_, err := executeCLI(t, "new", "minimal-api",
		"--dest", dest,
		"--set", "project_name=demo",
		"--set", "use_auth=false",
		"--non-interactive")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tree := readProject(t, dest)

	want := []string{
		".gitignore",
		"README.md",
		"app/__init__.py",
		"app/api/__init__.py",
		"app/api/v1/__init__.py",
		"app/api/v1/endpoints.py",
		"app/core/__init__.py",
		"app/core/config.py",
		"main.py",
		"requirements.txt",
		"run.sh",
	}
	if len(tree) != len(want) {
		t.Errorf("generated %d files, want %d: %v", len(tree), len(want), keysOf(tree))
	}
	for _, path := range want {
		if _, ok := tree[path]; !ok {
			t.Errorf("missing generated file %q", path)
		}
	}

	// Auth and database extras stay out with use_auth=false, database=none.
	for _, path := range []string{"app/api/v1/auth.py", "app/core/security.py", "app/db/database.py"} {
		if _, ok := tree[path]; ok {
			t.Errorf("file %q should be excluded by its condition", path)
		}
	}

	for _, path := range []string{"main.py", "README.md"} {
		if !strings.Contains(tree[path], "demo") {
			t.Errorf("%s does not mention the project name:\n%s", path, tree[path])
		}
	}
	for path, content := range tree {
		if strings.Contains(content, "{{") {
			t.Errorf("%s contains an unexpanded placeholder:\n%s", path, content)
		}
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dest, "run.sh"))
		if err != nil {
			t.Fatalf("stat run.sh: %v", err)
		}
		if info.Mode().Perm()&0o100 == 0 {
			t.Errorf("run.sh is not executable: %v", info.Mode())
		}
	}
}

func TestNewWithAuthAndDatabase(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "secure")

	_, err := executeCLI(t, "new", "minimal-api",
		"--dest", dest,
		"--set", "project_name=secure",
		"--set", "use_auth=true",
		"--set", "database=sqlite",
		"--non-interactive")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tree := readProject(t, dest)
	for _, path := range []string{
		"app/api/v1/auth.py",
		"app/core/security.py",
		"app/db/__init__.py",
		"app/db/database.py",
	} {
		if _, ok := tree[path]; !ok {
			t.Errorf("missing conditional file %q", path)
		}
	}
	if !strings.Contains(tree["requirements.txt"], "sqlalchemy") {
		t.Errorf("requirements.txt missing database dependency:\n%s", tree["requirements.txt"])
	}
}

func TestNewMLAPI(t *testing.T) {
	t.Run("prediction_endpoints_without_auth", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "scorer")

		_, err := executeCLI(t, "new", "ml-api",
			"--dest", dest,
			"--set", "project_name=scorer",
			"--non-interactive")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tree := readProject(t, dest)
		endpoints := tree["app/api/v1/endpoints.py"]
		if !strings.Contains(endpoints, "/predict") || !strings.Contains(endpoints, "/model/info") {
			t.Errorf("endpoints.py missing prediction routes:\n%s", endpoints)
		}
		if strings.Contains(endpoints, "get_current_user") {
			t.Errorf("endpoints.py should not be auth-gated with use_auth=false:\n%s", endpoints)
		}
		if _, ok := tree["app/core/security.py"]; ok {
			t.Error("security.py should be excluded with use_auth=false")
		}
		if !strings.Contains(tree["app/services/prediction.py"], "DefaultModel") {
			t.Errorf("prediction.py missing default model name:\n%s", tree["app/services/prediction.py"])
		}
	})

	t.Run("auth_gates_prediction_endpoints", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "scorer")

		_, err := executeCLI(t, "new", "ml-api",
			"--dest", dest,
			"--set", "project_name=scorer",
			"--set", "use_auth=true",
			"--set", "model_name=FraudModel",
			"--non-interactive")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tree := readProject(t, dest)
		endpoints := tree["app/api/v1/endpoints.py"]
		if !strings.Contains(endpoints, "Depends(get_current_user)") {
			t.Errorf("endpoints.py not auth-gated with use_auth=true:\n%s", endpoints)
		}
		if _, ok := tree["app/core/security.py"]; !ok {
			t.Error("security.py missing with use_auth=true")
		}
		if !strings.Contains(tree["app/services/prediction.py"], "FraudModel") {
			t.Errorf("model_name not substituted:\n%s", tree["app/services/prediction.py"])
		}
	})
}

func TestNewIsIdempotentAcrossDestinations(t *testing.T) {
	base := t.TempDir()
	destA := filepath.Join(base, "a")
	destB := filepath.Join(base, "b")

	for _, dest := range []string{destA, destB} {
		_, err := executeCLI(t, "new", "microservice",
			"--dest", dest,
			"--set", "project_name=twin",
			"--non-interactive")
		if err != nil {
			t.Fatalf("render into %s: %v", dest, err)
		}
	}

	if diff := cmp.Diff(readProject(t, destA), readProject(t, destB)); diff != "" {
		t.Errorf("renders differ (-a +b):\n%s", diff)
	}
}

func TestNewPositionalProjectName(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "hello")

	_, err := executeCLI(t, "new", "minimal-api", "hello",
		"--dest", dest,
		"--non-interactive")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tree := readProject(t, dest)
	if !strings.Contains(tree["README.md"], "hello") {
		t.Errorf("README.md does not mention project name:\n%s", tree["README.md"])
	}
}

func TestNewMissingRequiredParameter(t *testing.T) {
	_, err := executeCLI(t, "new", "minimal-api",
		"--dest", filepath.Join(t.TempDir(), "x"),
		"--non-interactive")
	if err == nil {
		t.Fatal("expected validation error without project_name")
	}

	var verrs *schema.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error is not ValidationErrors: %v", err)
	}
	fields := verrs.Fields()
	if len(fields) != 1 || fields[0] != "project_name" {
		t.Errorf("Fields() = %v, want [project_name]", fields)
	}
	if got := ExitCode(err); got != exitValidation {
		t.Errorf("ExitCode() = %d, want %d", got, exitValidation)
	}
}

func TestNewCollectsAllViolations(t *testing.T) {
	_, err := executeCLI(t, "new", "minimal-api",
		"--dest", filepath.Join(t.TempDir(), "x"),
		"--set", "use_auth=maybe",
		"--set", "database=mongodb",
		"--set", "bogus=1",
		"--non-interactive")
	if err == nil {
		t.Fatal("expected validation errors")
	}

	var verrs *schema.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error is not ValidationErrors: %v", err)
	}
	got := verrs.Fields()
	for _, field := range []string{"project_name", "use_auth", "database", "bogus"} {
		if !slices.Contains(got, field) {
			t.Errorf("Fields() = %v, missing %q", got, field)
		}
	}
}

func TestNewRefusesNonEmptyDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "occupied")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dest, "precious.txt"), []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := executeCLI(t, "new", "minimal-api",
		"--dest", dest,
		"--set", "project_name=demo",
		"--non-interactive")
	if !errors.Is(err, render.ErrDestinationExists) {
		t.Fatalf("error = %v, want ErrDestinationExists", err)
	}
	if got := ExitCode(err); got != exitDestExists {
		t.Errorf("ExitCode() = %d, want %d", got, exitDestExists)
	}

	data, readErr := os.ReadFile(filepath.Join(dest, "precious.txt"))
	if readErr != nil || string(data) != "keep me" {
		t.Errorf("existing file disturbed after refused render: %q, %v", data, readErr)
	}

	// --overwrite replaces the destination wholesale.
	_, err = executeCLI(t, "new", "minimal-api",
		"--dest", dest,
		"--set", "project_name=demo",
		"--overwrite",
		"--non-interactive")
	if err != nil {
		t.Fatalf("overwrite render failed: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dest, "precious.txt")); !os.IsNotExist(statErr) {
		t.Error("precious.txt survived an overwrite render")
	}
	if _, statErr := os.Stat(filepath.Join(dest, "main.py")); statErr != nil {
		t.Errorf("main.py missing after overwrite render: %v", statErr)
	}
}

func TestNewUnknownTemplate(t *testing.T) {
	_, err := executeCLI(t, "new", "no-such-template",
		"--dest", filepath.Join(t.TempDir(), "x"),
		"--non-interactive")
	if !errors.Is(err, registry.ErrTemplateNotFound) {
		t.Fatalf("error = %v, want ErrTemplateNotFound", err)
	}
	if got := ExitCode(err); got != exitNotFound {
		t.Errorf("ExitCode() = %d, want %d", got, exitNotFound)
	}
}

func TestNewConfigDefaultsPrefillParameters(t *testing.T) {
	confDir := t.TempDir()
	faststartDir := filepath.Join(confDir, "faststart")
	if err := os.MkdirAll(faststartDir, 0o755); err != nil {
		t.Fatal(err)
	}
	conf := "defaults:\n  set:\n    python_version: \"3.11\"\n"
	if err := os.WriteFile(filepath.Join(faststartDir, "config.yaml"), []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "demo")
	t.Cleanup(func() { resetNewFlags(t) })
	t.Setenv("NO_COLOR", "1")
	t.Setenv("XDG_CONFIG_HOME", confDir)

	rootCmd.SetArgs([]string{"new", "minimal-api",
		"--dest", dest,
		"--set", "project_name=demo",
		"--non-interactive"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tree := readProject(t, dest)
	if !strings.Contains(tree["README.md"], "3.11") {
		t.Errorf("config default python_version=3.11 not applied:\n%s", tree["README.md"])
	}
}

func TestNewPositionalNameBeatsConfigDefault(t *testing.T) {
	confDir := t.TempDir()
	faststartDir := filepath.Join(confDir, "faststart")
	if err := os.MkdirAll(faststartDir, 0o755); err != nil {
		t.Fatal(err)
	}
	conf := "defaults:\n  set:\n    project_name: confname\n"
	if err := os.WriteFile(filepath.Join(faststartDir, "config.yaml"), []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "demo")
	t.Cleanup(func() { resetNewFlags(t) })
	t.Setenv("NO_COLOR", "1")
	t.Setenv("XDG_CONFIG_HOME", confDir)

	rootCmd.SetArgs([]string{"new", "minimal-api", "demo",
		"--dest", dest,
		"--non-interactive"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tree := readProject(t, dest)
	if strings.Contains(tree["README.md"], "confname") || !strings.Contains(tree["README.md"], "demo") {
		t.Errorf("config default beat the explicit positional name:\n%s", tree["README.md"])
	}
}

func TestNewTemplateFromConfigDefault(t *testing.T) {
	confDir := t.TempDir()
	faststartDir := filepath.Join(confDir, "faststart")
	if err := os.MkdirAll(faststartDir, 0o755); err != nil {
		t.Fatal(err)
	}
	conf := "defaults:\n  template: minimal-api\n"
	if err := os.WriteFile(filepath.Join(faststartDir, "config.yaml"), []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "demo")
	t.Cleanup(func() { resetNewFlags(t) })
	t.Setenv("NO_COLOR", "1")
	t.Setenv("XDG_CONFIG_HOME", confDir)

	rootCmd.SetArgs([]string{"new",
		"--dest", dest,
		"--set", "project_name=demo",
		"--non-interactive"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "main.py")); err != nil {
		t.Errorf("main.py missing: %v", err)
	}
}

func TestNewWithoutTemplateOrConfigDefault(t *testing.T) {
	_, err := executeCLI(t, "new", "--non-interactive")
	if err == nil {
		t.Fatal("expected error when no template is given")
	}
	if !strings.Contains(err.Error(), "no template given") {
		t.Errorf("error = %v, want template resolution failure", err)
	}
}

func keysOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
