// Package wizard runs the interactive parameter prompts for "faststart new".
// Questions are derived from the template's parameter schema: choice and
// boolean fields become selects, string and integer fields become inputs.
package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/faststart/faststart/internal/schema"
	"github.com/faststart/faststart/internal/ui"
)

// ErrCancelled indicates the user aborted the wizard.
var ErrCancelled = errors.New("wizard: cancelled by user")

// Run prompts for every schema field not already present in preset and
// returns the combined raw answers, ready for schema.Validate. Each question
// runs as its own huh.Form so earlier answers stay on screen.
func Run(s *schema.Schema, preset map[string]string, theme *ui.Theme) (map[string]string, error) {
	answers := make(map[string]string, len(s.Fields))
	for k, v := range preset {
		answers[k] = v
	}

	huhTheme := newWizardTheme(theme)

	for _, f := range s.Fields {
		if _, done := answers[f.Name]; done {
			continue
		}

		field, value := buildField(f)
		form := huh.NewForm(huh.NewGroup(field)).WithTheme(huhTheme)

		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil, ErrCancelled
			}
			return nil, fmt.Errorf("wizard error: %w", err)
		}

		answers[f.Name] = strings.TrimSpace(*value)
		if answers[f.Name] == "" {
			answers[f.Name] = f.Default
		}
	}

	return answers, nil
}

// buildField creates the huh field for one schema parameter and returns the
// string the answer lands in.
func buildField(f schema.Field) (huh.Field, *string) {
	value := new(string)
	*value = f.Default

	title := strings.ReplaceAll(f.Name, "_", " ")
	desc := f.Description

	switch f.Type {
	case schema.FieldBoolean:
		opts := []huh.Option[string]{
			huh.NewOption("no", "false"),
			huh.NewOption("yes", "true"),
		}
		if f.Default == "true" {
			opts[0], opts[1] = opts[1], opts[0]
		}
		return huh.NewSelect[string]().
			Title(title).
			Description(desc).
			Options(opts...).
			Value(value), value

	case schema.FieldChoice:
		opts := make([]huh.Option[string], len(f.Choices))
		for i, c := range f.Choices {
			opts[i] = huh.NewOption(c, c)
		}
		return huh.NewSelect[string]().
			Title(title).
			Description(desc).
			Options(opts...).
			Value(value), value

	case schema.FieldInteger:
		inp := huh.NewInput().
			Title(title).
			Description(desc).
			Value(value).
			Validate(integerValidator(f))
		if f.Default != "" {
			inp = inp.Placeholder(f.Default)
		}
		return inp, value

	default: // string
		inp := huh.NewInput().
			Title(title).
			Description(desc).
			Value(value).
			Validate(requiredValidator(f))
		if f.Default != "" {
			inp = inp.Placeholder(f.Default)
		}
		return inp, value
	}
}

// requiredValidator rejects empty answers to required fields.
func requiredValidator(f schema.Field) func(string) error {
	return func(val string) error {
		if f.Required && strings.TrimSpace(val) == "" && f.Default == "" {
			return errors.New("this parameter is required")
		}
		return nil
	}
}

// integerValidator rejects answers that are not whole numbers.
func integerValidator(f schema.Field) func(string) error {
	required := requiredValidator(f)
	return func(val string) error {
		if err := required(val); err != nil {
			return err
		}
		v := strings.TrimSpace(val)
		if v == "" {
			return nil
		}
		if _, err := strconv.Atoi(v); err != nil {
			return errors.New("must be an integer")
		}
		return nil
	}
}

// newWizardTheme maps the faststart palette onto a huh theme.
func newWizardTheme(theme *ui.Theme) *huh.Theme {
	t := huh.ThemeBase()
	if theme == nil || theme.NoColor {
		return t
	}

	primary := lipgloss.Color(theme.Colors.Primary)
	green := lipgloss.Color(theme.Colors.Success)
	red := lipgloss.Color(theme.Colors.Error)
	muted := lipgloss.Color(theme.Colors.Muted)

	t.Focused.Title = t.Focused.Title.Foreground(primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(muted)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(red)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(red)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(primary).SetString("▸ ")
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(green)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(primary)
	t.Focused.TextInput.Placeholder = t.Focused.TextInput.Placeholder.Foreground(muted)
	t.Blurred = t.Focused
	t.Blurred.Base = t.Focused.Base.BorderStyle(lipgloss.HiddenBorder())

	return t
}
