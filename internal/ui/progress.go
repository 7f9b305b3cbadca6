package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// progressImpl implements the Progress interface.
type progressImpl struct {
	theme    *Theme
	headless *HeadlessManager
	writer   io.Writer
}

// NewProgress creates a Progress backed by the given theme and headless
// manager. Output goes to os.Stderr so progress never mixes with command
// output.
func NewProgress(theme *Theme, hm *HeadlessManager) Progress {
	return &progressImpl{theme: theme, headless: hm, writer: os.Stderr}
}

// newProgressImpl creates a progressImpl with a custom writer (for testing).
func newProgressImpl(theme *Theme, hm *HeadlessManager, w io.Writer) *progressImpl {
	return &progressImpl{theme: theme, headless: hm, writer: w}
}

// Start creates a determinate progress bar with the given total.
func (p *progressImpl) Start(title string, total int) ProgressBar {
	if p.headless.IsHeadless() || p.theme.NoColor {
		return newHeadlessBar(title, total, p.writer)
	}
	return newInteractiveBar(p.theme, title, total)
}

// Spinner creates an indeterminate spinner.
func (p *progressImpl) Spinner(title string) Spinner {
	if p.headless.IsHeadless() || p.theme.NoColor {
		return newHeadlessSpinner(title, p.writer)
	}
	return newInteractiveSpinner(p.theme, title)
}

// --- interactive spinner ---

type spinnerTitleMsg string
type spinnerStopMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func newSpinnerModel(theme *Theme, title string) spinnerModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !theme.NoColor {
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Primary))
	}
	return spinnerModel{spinner: s, title: title}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTitleMsg:
		m.title = string(msg)
		return m, nil
	case spinnerStopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

type interactiveSpinner struct {
	program *tea.Program
	once    sync.Once
}

func newInteractiveSpinner(theme *Theme, title string) *interactiveSpinner {
	p := tea.NewProgram(newSpinnerModel(theme, title))
	s := &interactiveSpinner{program: p}
	go func() {
		_, _ = p.Run()
	}()
	return s
}

// SetTitle updates the spinner title.
func (s *interactiveSpinner) SetTitle(title string) {
	s.program.Send(spinnerTitleMsg(title))
}

// Stop halts the spinner.
func (s *interactiveSpinner) Stop() {
	s.once.Do(func() {
		s.program.Send(spinnerStopMsg{})
		s.program.Wait()
	})
}

// --- interactive progress bar ---

type barIncrMsg int
type barTitleMsg string
type barDoneMsg struct{}

type barModel struct {
	bar     progress.Model
	title   string
	current int
	total   int
	done    bool
}

func newBarModel(theme *Theme, title string, total int) barModel {
	bar := progress.New(
		progress.WithGradient(theme.Colors.Primary, theme.Colors.Secondary),
		progress.WithWidth(40),
	)
	if theme.NoColor {
		bar = progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
		)
	}
	return barModel{bar: bar, title: title, total: total}
}

func (m barModel) Init() tea.Cmd {
	return nil
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case barIncrMsg:
		m.current += int(msg)
		if m.current > m.total {
			m.current = m.total
		}
		return m, nil
	case barTitleMsg:
		m.title = string(msg)
		return m, nil
	case barDoneMsg:
		m.current = m.total
		m.done = true
		return m, tea.Quit
	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		m.bar = pm.(progress.Model)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m barModel) View() string {
	if m.done {
		return ""
	}
	pct := 0.0
	if m.total > 0 {
		pct = float64(m.current) / float64(m.total)
	}
	return m.bar.ViewAs(pct) + " " + fmt.Sprintf("[%d/%d] %s\n", m.current, m.total, m.title)
}

type interactiveBar struct {
	program *tea.Program
	once    sync.Once
}

func newInteractiveBar(theme *Theme, title string, total int) *interactiveBar {
	p := tea.NewProgram(newBarModel(theme, title, total))
	b := &interactiveBar{program: p}
	go func() {
		_, _ = p.Run()
	}()
	return b
}

// Increment advances the progress by n.
func (b *interactiveBar) Increment(n int) {
	b.program.Send(barIncrMsg(n))
}

// SetTitle updates the progress bar title.
func (b *interactiveBar) SetTitle(title string) {
	b.program.Send(barTitleMsg(title))
}

// Done completes the progress bar at 100%.
func (b *interactiveBar) Done() {
	b.once.Do(func() {
		b.program.Send(barDoneMsg{})
		b.program.Wait()
	})
}

// --- headless fallbacks ---

// headlessBar writes a log line per increment.
type headlessBar struct {
	title   string
	total   int
	current int
	writer  io.Writer
}

func newHeadlessBar(title string, total int, w io.Writer) *headlessBar {
	return &headlessBar{title: title, total: total, writer: w}
}

// Increment advances the progress by n and writes a log line.
func (b *headlessBar) Increment(n int) {
	b.current += n
	if b.current > b.total {
		b.current = b.total
	}
	_, _ = fmt.Fprintf(b.writer, "[%d/%d] %s\n", b.current, b.total, b.title)
}

// SetTitle updates the progress bar title.
func (b *headlessBar) SetTitle(title string) {
	b.title = title
}

// Done completes the progress bar at 100%.
func (b *headlessBar) Done() {
	b.current = b.total
	_, _ = fmt.Fprintf(b.writer, "[%d/%d] %s\n", b.current, b.total, b.title)
}

// headlessSpinner prints title changes as plain text.
type headlessSpinner struct {
	title  string
	writer io.Writer
}

func newHeadlessSpinner(title string, w io.Writer) *headlessSpinner {
	s := &headlessSpinner{title: title, writer: w}
	_, _ = fmt.Fprintf(w, "%s\n", title)
	return s
}

// SetTitle updates the spinner title and prints a log line.
func (s *headlessSpinner) SetTitle(title string) {
	s.title = title
	_, _ = fmt.Fprintf(s.writer, "%s\n", title)
}

// Stop halts the spinner.
func (s *headlessSpinner) Stop() {}
