// Package cli wires the faststart command tree: list, describe, and new.
// Commands resolve templates through an explicit registry loaded once from
// the embedded template filesystem; every error kind surfaces as a
// user-facing message with a distinct non-zero exit code.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/faststart/faststart/internal/cli/wizard"
	"github.com/faststart/faststart/internal/registry"
	"github.com/faststart/faststart/internal/render"
	"github.com/faststart/faststart/internal/schema"
	"github.com/faststart/faststart/pkg/version"
	"github.com/faststart/faststart/templates"
)

// Exit codes per error kind. Anything unrecognized exits 1.
const (
	exitOK         = 0
	exitFailure    = 1
	exitNotFound   = 2
	exitValidation = 3
	exitDestExists = 4
	exitUnsafePath = 5
)

// templatesFS is the source of bundled templates. Tests swap it for a MapFS.
var templatesFS fs.FS = templates.Bundled()

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "faststart",
	Short: "faststart: scaffold web-service projects from bundled templates",
	Long: `faststart generates new web-service projects from bundled, versioned
templates. Pick a template, answer a few questions (or pass --set flags),
and get a ready-to-run project directory.

  faststart list                 Show available templates
  faststart describe minimal-api Show a template's parameters
  faststart new minimal-api demo Create ./demo from the minimal-api template`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the error for main to map onto
// an exit code.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an error returned by Execute to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, registry.ErrTemplateNotFound):
		return exitNotFound
	case errors.Is(err, schema.ErrInvalidParams):
		return exitValidation
	case errors.Is(err, render.ErrDestinationExists):
		return exitDestExists
	case errors.Is(err, render.ErrUnsafePath):
		return exitUnsafePath
	default:
		return exitFailure
	}
}

// PrintError renders err for the terminal. Validation aggregates get one
// line per offending field.
func PrintError(err error) {
	var verrs *schema.ValidationErrors
	if errors.As(err, &verrs) {
		fmt.Fprintln(os.Stderr, cliError.Render("Error: invalid parameters"))
		for _, ve := range verrs.Errors {
			fmt.Fprintf(os.Stderr, "  %s %s\n", cliKey.Render(ve.Field+":"), ve.Message)
		}
		return
	}
	if errors.Is(err, wizard.ErrCancelled) {
		fmt.Fprintln(os.Stderr, cliMuted.Render("Cancelled."))
		return
	}
	fmt.Fprintln(os.Stderr, cliError.Render("Error: ")+err.Error())
}

// loadRegistry parses the embedded template bundle. A corrupt manifest is
// fatal: no invocation can succeed against broken bundled assets.
func loadRegistry() (*registry.Registry, error) {
	reg, err := registry.Load(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("load bundled templates: %w", err)
	}
	return reg, nil
}

// newLogger builds the CLI logger; --verbose lowers the level to debug.
func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportTimestamp(true)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("faststart %s\n", version.GetFullVersion()))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
