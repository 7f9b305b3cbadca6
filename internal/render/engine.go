package render

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/faststart/faststart/internal/registry"
	"github.com/faststart/faststart/internal/schema"
)

// ProgressFunc is called after each file is staged. done counts staged files,
// total is the plan size.
type ProgressFunc func(done, total int, file string)

// Options configures a single render invocation.
type Options struct {
	// Overwrite allows replacing an existing non-empty destination.
	Overwrite bool
	// OnFile, when set, receives per-file progress.
	OnFile ProgressFunc
}

// Result summarizes a completed render.
type Result struct {
	Dest    string   // Absolute destination path.
	Files   []string // Destination-relative paths of all written files.
	Renamed bool     // True once the staging area was committed.
}

// Engine materializes a template plus project spec into files on disk.
// Output is staged in a temporary sibling of the destination and committed
// with a single rename after every file rendered successfully, so an
// interrupted render leaves the destination untouched.
type Engine struct {
	logger *log.Logger
}

// NewEngine creates an Engine. A nil logger discards output.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{logger: logger}
}

// Render builds the plan for (template, spec) and writes it under dest.
// It fails with ErrDestinationExists when dest is non-empty and
// opts.Overwrite is unset, and with ErrUnsafePath before writing anything
// when a template-provided name escapes dest.
func (e *Engine) Render(ctx context.Context, tpl *registry.Template, spec schema.ProjectSpec, dest string, opts Options) (*Result, error) {
	plan, err := BuildPlan(tpl, spec)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, tpl, spec, plan, dest, opts)
}

// Execute writes a previously built plan under dest.
func (e *Engine) Execute(ctx context.Context, tpl *registry.Template, spec schema.ProjectSpec, plan *Plan, dest string, opts Options) (*Result, error) {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("resolve destination %q: %w", dest, err)
	}

	if err := checkDestination(absDest, opts.Overwrite); err != nil {
		return nil, err
	}

	// Stage in a sibling directory so the final rename stays on one
	// filesystem.
	parent := filepath.Dir(absDest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create destination parent %q: %w", parent, err)
	}
	staging, err := os.MkdirTemp(parent, ".faststart-")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}

	result := &Result{Dest: absDest}
	defer func() {
		if !result.Renamed {
			_ = os.RemoveAll(staging)
		}
	}()

	e.logger.Debug("staging render", "template", tpl.ID, "files", plan.FileCount(), "staging", staging)

	renderer := NewRenderer(tpl.Files)
	for i, entry := range plan.Entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := e.stageFile(renderer, tpl, spec, entry, staging); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, entry.Dest)
		if opts.OnFile != nil {
			opts.OnFile(i+1, plan.FileCount(), entry.Dest)
		}
	}

	if err := commit(staging, absDest); err != nil {
		return nil, err
	}
	result.Renamed = true

	e.logger.Info("project rendered", "template", tpl.ID, "dest", absDest, "files", len(result.Files))
	return result, nil
}

// stageFile writes one plan entry into the staging directory.
func (e *Engine) stageFile(r Renderer, tpl *registry.Template, spec schema.ProjectSpec, entry Entry, staging string) error {
	var content []byte
	if entry.Rendered {
		rendered, err := r.Render(entry.Source, spec)
		if err != nil {
			return fmt.Errorf("render %q: %w", entry.Source, err)
		}
		content = rendered
	} else {
		raw, err := fs.ReadFile(tpl.Files, entry.Source)
		if err != nil {
			return fmt.Errorf("read %q: %w", entry.Source, err)
		}
		content = raw
	}

	target := filepath.Join(staging, filepath.FromSlash(entry.Dest))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("mkdir for %q: %w", entry.Dest, err)
	}

	perm := fs.FileMode(0o644)
	if entry.Executable {
		perm = 0o755
	}
	if err := os.WriteFile(target, content, perm); err != nil {
		return fmt.Errorf("write %q: %w", entry.Dest, err)
	}
	return nil
}

// checkDestination enforces the overwrite policy before any staging happens.
func checkDestination(absDest string, overwrite bool) error {
	info, err := os.Stat(absDest)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat destination %q: %w", absDest, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q is a file", ErrDestinationExists, absDest)
	}

	entries, err := os.ReadDir(absDest)
	if err != nil {
		return fmt.Errorf("read destination %q: %w", absDest, err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("%w: %q is not empty (pass --overwrite to replace it)", ErrDestinationExists, absDest)
	}
	return nil
}

// commit atomically moves the fully staged tree into place.
func commit(staging, absDest string) error {
	if info, err := os.Stat(absDest); err == nil && info.IsDir() {
		// Either empty, or non-empty with overwrite granted; checked above.
		if err := os.RemoveAll(absDest); err != nil {
			return fmt.Errorf("replace destination %q: %w", absDest, err)
		}
	}
	if err := os.Rename(staging, absDest); err != nil {
		return fmt.Errorf("commit staged project to %q: %w", absDest, err)
	}
	return nil
}
