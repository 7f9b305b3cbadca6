package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available project templates",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("long", false, "Include each template's full description")
}

func runList(cmd *cobra.Command, _ []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	long := getBoolFlag(cmd, "long")
	out := cmd.OutOrStdout()

	width := 0
	for _, id := range reg.IDs() {
		if len(id) > width {
			width = len(id)
		}
	}

	for _, tpl := range reg.List() {
		id := fmt.Sprintf("%-*s", width, tpl.ID)
		_, _ = fmt.Fprintf(out, "%s  %s  %s\n",
			cliKey.Render(id),
			cliMuted.Render(tpl.Manifest.Version),
			tpl.Manifest.Description)
		if long && tpl.Manifest.Long != "" {
			_, _ = fmt.Fprintln(out, renderMarkdown(tpl.Manifest.Long))
		}
	}
	return nil
}
