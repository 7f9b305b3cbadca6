// Package render materializes a template and a validated project spec into a
// directory tree on disk. Rendering is staged in a temporary directory and
// committed with a single rename, so a failure partway through never leaves a
// partially written project.
package render

import "errors"

// Sentinel errors for render operations.
var (
	// ErrTemplateNotFound indicates a template file is missing from the bundle.
	ErrTemplateNotFound = errors.New("render: template file not found")

	// ErrMissingTemplateKey indicates a template referenced a key absent from
	// the substitution context (strict mode).
	ErrMissingTemplateKey = errors.New("render: missing template key")

	// ErrUnexpandedToken indicates placeholder syntax survived rendering.
	ErrUnexpandedToken = errors.New("render: unexpanded token in rendered output")

	// ErrUnsafePath indicates a computed destination would resolve outside the
	// destination root (path traversal in a template-provided name).
	ErrUnsafePath = errors.New("render: unsafe destination path")

	// ErrDuplicateDestination indicates two template files map to the same
	// destination path.
	ErrDuplicateDestination = errors.New("render: duplicate destination path")

	// ErrDestinationExists indicates the destination directory is non-empty
	// and the overwrite flag was not set.
	ErrDestinationExists = errors.New("render: destination already exists")
)
