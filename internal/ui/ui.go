// Package ui provides terminal progress reporting for render operations.
// Interactive terminals get animated bubbletea components; non-TTY sessions
// (CI, pipes, --non-interactive) fall back to plain log lines.
package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Palette holds the brand colors used across progress components and the
// wizard theme.
type Palette struct {
	Primary   string
	Secondary string
	Success   string
	Error     string
	Muted     string
}

// Theme configures colors and color suppression for UI components.
type Theme struct {
	NoColor bool
	Colors  Palette
}

// DefaultTheme returns the faststart palette, honoring the NO_COLOR
// convention.
func DefaultTheme() *Theme {
	_, noColor := os.LookupEnv("NO_COLOR")
	return &Theme{
		NoColor: noColor,
		Colors: Palette{
			Primary:   "#16A085",
			Secondary: "#2980B9",
			Success:   "#27AE60",
			Error:     "#E74C3C",
			Muted:     "#7F8C8D",
		},
	}
}

// ProgressBar is a determinate progress indicator.
type ProgressBar interface {
	Increment(n int)
	SetTitle(title string)
	Done()
}

// Spinner is an indeterminate activity indicator.
type Spinner interface {
	SetTitle(title string)
	Stop()
}

// Progress creates progress indicators appropriate for the session.
type Progress interface {
	Start(title string, total int) ProgressBar
	Spinner(title string) Spinner
}

// HeadlessManager decides whether the UI runs without terminal animation.
// ForceHeadless overrides TTY detection, which tests and the
// --non-interactive flag rely on.
type HeadlessManager struct {
	forced *bool
}

// NewHeadlessManager creates a HeadlessManager using TTY detection on stdin.
func NewHeadlessManager() *HeadlessManager {
	return &HeadlessManager{}
}

// IsHeadless returns true when the UI should operate in headless mode.
func (h *HeadlessManager) IsHeadless() bool {
	if h.forced != nil {
		return *h.forced
	}
	return !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// ForceHeadless overrides TTY detection.
func (h *HeadlessManager) ForceHeadless(force bool) {
	h.forced = &force
}

// ClearForce reverts to automatic TTY detection.
func (h *HeadlessManager) ClearForce() {
	h.forced = nil
}
