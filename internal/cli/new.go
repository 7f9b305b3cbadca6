package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/faststart/faststart/internal/cli/wizard"
	"github.com/faststart/faststart/internal/config"
	"github.com/faststart/faststart/internal/render"
	"github.com/faststart/faststart/internal/schema"
	"github.com/faststart/faststart/internal/ui"
)

var newCmd = &cobra.Command{
	Use:   "new [template] [project-name]",
	Short: "Create a new project from a template",
	Long: `Create a new project directory from a bundled template. The template
argument may be omitted when defaults.template is set in the user
configuration.

Parameter values come from, in order of precedence:
  1. --set name=value flags
  2. the positional project-name argument
  3. the interactive wizard (TTY sessions, unless --non-interactive)
  4. defaults.set entries in the user configuration
  5. the template's own defaults

Examples:
  faststart new minimal-api demo
  faststart new minimal-api --set project_name=demo --set use_auth=true
  faststart new microservice svc --dest ~/src --non-interactive`,
	Args: cobra.MaximumNArgs(2),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().String("dest", "", "Destination directory (default: <dest-root>/<project-name>)")
	newCmd.Flags().StringArray("set", nil, "Set a template parameter as name=value (repeatable)")
	newCmd.Flags().Bool("overwrite", false, "Replace the destination if it already exists")
	newCmd.Flags().Bool("non-interactive", false, "Skip the wizard; use flags, config, and defaults only")
}

// getStringFlag retrieves a string flag value from the command.
func getStringFlag(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return val
}

// getBoolFlag retrieves a bool flag value from the command.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return val
}

// parseSetFlags splits repeated --set name=value flags into a map.
func parseSetFlags(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set value %q: expected name=value", v)
		}
		out[name] = value
	}
	return out, nil
}

func runNew(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tplID := cfg.Defaults.Template
	if len(args) > 0 {
		tplID = args[0]
	}
	if tplID == "" {
		return fmt.Errorf("no template given and no defaults.template configured (run \"faststart list\")")
	}
	tpl, err := reg.Get(tplID)
	if err != nil {
		return err
	}

	setFlags, err := parseSetFlags(mustStringArray(cmd, "set"))
	if err != nil {
		return err
	}

	// Raw parameter values, lowest precedence first.
	raw := make(map[string]string)
	for k, v := range cfg.Defaults.Set {
		if _, ok := tpl.Schema.Lookup(k); ok {
			raw[k] = v
		}
	}
	if len(args) > 1 {
		raw["project_name"] = args[1]
	}
	for k, v := range setFlags {
		raw[k] = v
	}

	nonInteractive := getBoolFlag(cmd, "non-interactive")
	theme := ui.DefaultTheme()

	if !nonInteractive && isatty.IsTerminal(os.Stdin.Fd()) {
		answers, err := wizard.Run(tpl.Schema, raw, theme)
		if err != nil {
			if errors.Is(err, wizard.ErrCancelled) {
				_, _ = fmt.Fprintln(cmd.OutOrStderr(), cliMuted.Render("Cancelled."))
				return nil
			}
			return err
		}
		raw = answers
	}

	spec, err := schema.Validate(tpl.Schema, raw)
	if err != nil {
		return err
	}

	dest := getStringFlag(cmd, "dest")
	if dest == "" {
		root := cfg.Defaults.DestRoot
		if root == "" {
			root = "."
		}
		name := spec.String("project_name")
		if name == "" {
			return fmt.Errorf("cannot determine destination: no --dest flag and no project_name parameter")
		}
		dest = filepath.Join(root, name)
	}

	plan, err := render.BuildPlan(tpl, spec)
	if err != nil {
		return err
	}

	hm := ui.NewHeadlessManager()
	if nonInteractive {
		hm.ForceHeadless(true)
	}
	progress := ui.NewProgress(theme, hm)
	bar := progress.Start("Rendering "+tpl.ID, plan.FileCount())

	engine := render.NewEngine(logger)
	opts := render.Options{
		Overwrite: getBoolFlag(cmd, "overwrite"),
		OnFile: func(done, total int, file string) {
			bar.SetTitle(file)
			bar.Increment(1)
		},
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := engine.Execute(ctx, tpl, spec, plan, dest, opts)
	bar.Done()
	if err != nil {
		return err
	}

	details := []string{
		renderKeyValueLines([]kvPair{
			{"Template", fmt.Sprintf("%s %s", tpl.ID, tpl.Manifest.Version)},
			{"Location", result.Dest},
			{"Files", fmt.Sprintf("%d created", len(result.Files))},
		}),
		nextStepsFor(result),
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderSuccessCard("Project created", details...))
	return nil
}

// mustStringArray reads a repeatable string flag, treating errors as empty.
func mustStringArray(cmd *cobra.Command, name string) []string {
	vals, err := cmd.Flags().GetStringArray(name)
	if err != nil {
		return nil
	}
	return vals
}

// nextStepsFor suggests the first commands to run in the new project.
func nextStepsFor(result *render.Result) string {
	steps := []string{"Next steps:", "  cd " + result.Dest}
	for _, f := range result.Files {
		if f == "run.sh" {
			steps = append(steps, "  ./run.sh")
		}
	}
	return strings.Join(steps, "\n")
}
