package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faststart/faststart/internal/schema"
)

var describeCmd = &cobra.Command{
	Use:   "describe <template>",
	Short: "Show a template's parameters and description",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	tpl, err := reg.Get(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s %s\n%s\n\n",
		cliKey.Render(tpl.ID),
		cliMuted.Render(tpl.Manifest.Version),
		tpl.Manifest.Description)

	if tpl.Manifest.Long != "" {
		_, _ = fmt.Fprintln(out, renderMarkdown(tpl.Manifest.Long))
	}

	_, _ = fmt.Fprintln(out, cliSuccess.Render("Parameters"))
	_, _ = fmt.Fprint(out, renderParameterTable(tpl.Schema))
	return nil
}

// renderParameterTable lays the schema fields out as aligned columns.
func renderParameterTable(s *schema.Schema) string {
	rows := make([][4]string, 0, len(s.Fields)+1)
	rows = append(rows, [4]string{"NAME", "TYPE", "DEFAULT", "DESCRIPTION"})

	for _, f := range s.Fields {
		typ := string(f.Type)
		if f.Type == schema.FieldChoice {
			typ = "choice(" + strings.Join(f.Choices, "|") + ")"
		}
		def := f.Default
		if f.Required {
			def = "(required)"
		}
		rows = append(rows, [4]string{f.Name, typ, def, f.Description})
	}

	var widths [3]int
	for _, r := range rows {
		for i := 0; i < 3; i++ {
			if len(r[i]) > widths[i] {
				widths[i] = len(r[i])
			}
		}
	}

	var b strings.Builder
	for i, r := range rows {
		line := fmt.Sprintf("  %-*s  %-*s  %-*s  %s",
			widths[0], r[0], widths[1], r[1], widths[2], r[2], r[3])
		if i == 0 {
			line = cliMuted.Render(line)
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}
	return b.String()
}
