package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"assetbake/internal/app"
	"assetbake/internal/domain"
)

// Phase represents the current state of the TUI
type Phase int

const (
	PhaseCopying Phase = iota
	PhaseTranscoding
	PhasePublishing
	PhaseDone
	PhaseError
)

// Messages sent into the TUI by the running pipeline
type (
	ProgressMsg struct {
		Event app.Progress
	}
	DoneMsg struct {
		Report domain.BuildReport
	}
	ErrorMsg struct {
		Err error
	}
)

// Config for the TUI
type Config struct {
	OutputDir string
	Mode      string
}

// Model is the build-progress TUI model
type Model struct {
	config        Config
	Phase         Phase
	Report        domain.BuildReport
	spinner       spinner.Model
	progress      progress.Model
	currentSource string
	current       int
	total         int
	currentFile   string
	Err           error
	Quitting      bool
	width         int
}

func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return Model{
		config:   cfg,
		Phase:    PhaseCopying,
		spinner:  s,
		progress: p,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(msg.Width-20, 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.Quitting = true
			return m, tea.Quit
		case "enter":
			if m.Phase == PhaseDone || m.Phase == PhaseError {
				return m, tea.Quit
			}
		}

	case ProgressMsg:
		switch msg.Event.Phase {
		case app.PhaseCopy:
			m.Phase = PhaseCopying
		case app.PhaseTranscode:
			m.Phase = PhaseTranscoding
			m.currentSource = msg.Event.Source
			m.current = msg.Event.Current
			m.total = msg.Event.Total
			m.currentFile = msg.Event.File
			if m.total > 0 {
				return m, m.progress.SetPercent(float64(m.current) / float64(m.total))
			}
		case app.PhasePublish:
			m.Phase = PhasePublishing
		}
		return m, nil

	case DoneMsg:
		m.Phase = PhaseDone
		m.Report = msg.Report
		return m, nil

	case ErrorMsg:
		m.Phase = PhaseError
		m.Err = msg.Err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.Phase {
	case PhaseCopying:
		b.WriteString(fmt.Sprintf("%s Copying static assets...", m.spinner.View()))
	case PhaseTranscoding:
		b.WriteString(m.renderTranscoding())
	case PhasePublishing:
		b.WriteString(fmt.Sprintf("%s Publishing...", m.spinner.View()))
	case PhaseDone:
		b.WriteString(m.renderDone())
	case PhaseError:
		b.WriteString(m.renderError())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("assetbake")
	subtitle := subtitleStyle.Render("Site asset pipeline")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		"",
		dimStyle.Render(fmt.Sprintf("%s Output: %s", iconArrow, m.config.OutputDir)),
		dimStyle.Render(fmt.Sprintf("%s Mode:   %s", iconArrow, m.config.Mode)),
	)
}

func (m Model) renderTranscoding() string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Processing %s", m.currentSource)))
	b.WriteString("\n\n")

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.current) / float64(m.total)
	}

	b.WriteString(fmt.Sprintf("  %s Transcoding...\n\n", m.spinner.View()))
	b.WriteString(fmt.Sprintf("  %s\n", m.progress.ViewAs(percent)))
	b.WriteString(fmt.Sprintf("  %s %s\n",
		countStyle.Render(fmt.Sprintf("%d/%d images", m.current, m.total)),
		dimStyle.Render(fmt.Sprintf("(%.0f%%)", percent*100)),
	))

	if m.currentFile != "" {
		b.WriteString(fmt.Sprintf("\n  %s %s\n", iconArrow, fileNameStyle.Render(m.currentFile)))
	}

	return b.String()
}

func (m Model) renderDone() string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Build Complete"))
	b.WriteString("\n\n")

	failures := m.Report.Failures()
	if len(failures) == 0 {
		b.WriteString(fmt.Sprintf("  %s %s\n\n",
			successStyle.Render(iconSuccess),
			successStyle.Render("All images processed"),
		))
	} else {
		b.WriteString(fmt.Sprintf("  %s %s\n\n",
			errorStyle.Render(iconError),
			errorStyle.Render(fmt.Sprintf("%d images failed", len(failures))),
		))
		for _, failure := range failures {
			b.WriteString(fmt.Sprintf("  %s %s\n", iconError, dimStyle.Render(failure.Err.Error())))
		}
		b.WriteString("\n")
	}

	for _, src := range m.Report.Sources {
		label := statLabelStyle.Render(src.Source.DirName + ":")
		value := fmt.Sprintf("%d processed", len(src.Pairs))
		if len(src.Failures) > 0 {
			value += errorStyle.Render(fmt.Sprintf("  %d failed", len(src.Failures)))
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", label, value))
	}

	if m.Report.Published {
		b.WriteString(fmt.Sprintf("\n  %s %s\n", successStyle.Render(iconSuccess), "Published to static directory"))
	}

	return b.String()
}

func (m Model) renderError() string {
	icon := errorStyle.Render(iconError)
	msg := errorStyle.Render(fmt.Sprintf("Error: %s", m.Err.Error()))
	return fmt.Sprintf("%s %s", icon, msg)
}

func (m Model) renderHelp() string {
	switch m.Phase {
	case PhaseDone, PhaseError:
		return helpStyle.Render("Press Enter to exit")
	default:
		return helpStyle.Render("Press q to quit")
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
