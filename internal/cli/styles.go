package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	cliSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#27AE60")).Bold(true)
	cliError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")).Bold(true)
	cliWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F39C12"))
	cliMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7F8C8D"))
	cliKey     = lipgloss.NewStyle().Foreground(lipgloss.Color("#2980B9"))

	successCardBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#27AE60")).
				Padding(0, 2)
)

// kvPair is a label/value line inside a success card.
type kvPair struct {
	Key   string
	Value string
}

// renderKeyValueLines aligns key/value pairs into a column block.
func renderKeyValueLines(pairs []kvPair) string {
	width := 0
	for _, p := range pairs {
		if len(p.Key) > width {
			width = len(p.Key)
		}
	}
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(cliKey.Render(p.Key + strings.Repeat(" ", width-len(p.Key))))
		b.WriteString("  ")
		b.WriteString(p.Value)
	}
	return b.String()
}

// renderSuccessCard draws a bordered card with a title line and optional
// detail blocks.
func renderSuccessCard(title string, details ...string) string {
	lines := []string{cliSuccess.Render("✓ " + title)}
	for _, d := range details {
		if d != "" {
			lines = append(lines, d)
		}
	}
	return successCardBorder.Render(strings.Join(lines, "\n\n"))
}

// renderMarkdown renders markdown for the terminal with glamour, falling back
// to the raw text when rendering fails or color output is suppressed.
func renderMarkdown(md string) string {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
