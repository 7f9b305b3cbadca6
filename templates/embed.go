// Package templates bundles the project templates shipped inside the
// faststart binary. The registry loads this FS once at startup.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed all:minimal-api all:microservice all:ml-api
var bundled embed.FS

// Bundled returns the root of the embedded template bundle. Each top-level
// directory is one template with its template.yaml manifest.
func Bundled() fs.FS {
	return bundled
}
