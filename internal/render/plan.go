package render

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/faststart/faststart/internal/registry"
	"github.com/faststart/faststart/internal/schema"
)

// TemplateSuffix marks files whose contents are rendered; other files are
// copied byte for byte. The suffix is stripped from the destination name.
const TemplateSuffix = ".tmpl"

// Entry is one (source file, destination path) pair of a render plan.
type Entry struct {
	// Source is the file path inside the template FS.
	Source string
	// Dest is the destination path relative to the output root, with
	// parameters substituted and the .tmpl suffix stripped.
	Dest string
	// Rendered is true when the file contents go through the renderer.
	Rendered bool
	// Executable is true for files that receive the executable bit.
	Executable bool
}

// Plan is the ordered sequence of render entries derived from a template and
// a validated project spec. Destinations are unique and contained within the
// output root; both invariants are enforced at build time, before any file
// is written.
type Plan struct {
	Template string
	Entries  []Entry
}

// BuildPlan walks the template tree and derives the render plan for the given
// project spec. Conditional files whose gate evaluates false are excluded.
// Parameter substitution applies to file and directory names as well as
// contents; a name that renders to a path outside the destination root fails
// with ErrUnsafePath.
func BuildPlan(tpl *registry.Template, spec schema.ProjectSpec) (*Plan, error) {
	r := NewRenderer(tpl.Files)
	plan := &Plan{Template: tpl.ID}
	seen := make(map[string]string)

	err := fs.WalkDir(tpl.Files, ".", func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." || entry.IsDir() {
			return nil
		}
		// The manifest describes the template; it is never part of the output.
		if p == registry.ManifestFile {
			return nil
		}

		if excluded, err := excludedByCondition(tpl.Conditions, p, spec); err != nil {
			return err
		} else if excluded {
			return nil
		}

		dest, err := r.RenderString(p, spec)
		if err != nil {
			return fmt.Errorf("render file name %q: %w", p, err)
		}
		isTemplate := strings.HasSuffix(dest, TemplateSuffix)
		dest = strings.TrimSuffix(dest, TemplateSuffix)

		if err := validateDestPath(dest); err != nil {
			return err
		}
		if prev, dup := seen[dest]; dup {
			return fmt.Errorf("%w: %q produced by both %q and %q", ErrDuplicateDestination, dest, prev, p)
		}
		seen[dest] = p

		plan.Entries = append(plan.Entries, Entry{
			Source:     p,
			Dest:       dest,
			Rendered:   isTemplate,
			Executable: strings.HasSuffix(dest, ".sh"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// FileCount returns the number of files the plan will produce.
func (p *Plan) FileCount() int {
	return len(p.Entries)
}

// excludedByCondition reports whether a conditional rule gates out the file.
func excludedByCondition(conds []registry.Condition, p string, spec schema.ProjectSpec) (bool, error) {
	for _, c := range conds {
		if c.Path != p {
			continue
		}
		val, ok := spec[c.Parameter]
		if !ok {
			return false, fmt.Errorf("render: condition on %q references unknown parameter %q", p, c.Parameter)
		}
		rendered := fmt.Sprint(val)
		if c.Equals != "" && rendered != c.Equals {
			return true, nil
		}
		if c.NotEquals != "" && rendered == c.NotEquals {
			return true, nil
		}
	}
	return false, nil
}

// validateDestPath ensures a rendered destination stays inside the output
// root. Destinations are slash-separated relative paths at this stage; the
// engine joins them to the staging directory at write time.
func validateDestPath(dest string) error {
	if dest == "" {
		return fmt.Errorf("%w: empty destination", ErrUnsafePath)
	}
	// Backslashes are never valid here: destinations are slash-separated,
	// and on Windows a `\` would act as a separator after FromSlash, letting
	// `..\..\escape` slip past the traversal checks below as one segment.
	if strings.ContainsRune(dest, '\\') {
		return fmt.Errorf("%w: backslash in %q", ErrUnsafePath, dest)
	}
	if strings.HasPrefix(dest, "/") {
		return fmt.Errorf("%w: absolute path %q", ErrUnsafePath, dest)
	}
	cleaned := path.Clean(dest)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%w: %q escapes the destination root", ErrUnsafePath, dest)
	}
	for _, seg := range strings.Split(cleaned, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: parent reference in %q", ErrUnsafePath, dest)
		}
	}
	return nil
}
