// Package tui provides a Bubble Tea terminal user interface for the
// freshener: a small form for the run parameters, then live progress of the
// file operations.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jaki95/music-freshener/config"
	"github.com/jaki95/music-freshener/internal/freshen"
	prg "github.com/jaki95/music-freshener/internal/progress"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// Form field indices.
const (
	fieldTarget = iota
	fieldPlaylist
	fieldRatio
	fieldCount
)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	inputs   []textinput.Model
	focused  int
	spinner  spinner.Model
	progress progress.Model
	cfg      *config.Config
	dryRun   bool

	logs   []string
	result *freshen.RunResult
	err    error

	events chan prg.Event
	done   int
	total  int

	ctx    context.Context
	cancel context.CancelFunc

	width int
}

// NewModel creates a new TUI model pre-filled from cfg.
func NewModel(cfg *config.Config) Model {
	inputs := make([]textinput.Model, fieldCount)

	target := textinput.New()
	target.Placeholder = "/Volumes/WALKMAN/MUSIC"
	target.SetValue(cfg.Target)
	target.CharLimit = 300
	target.Width = 50
	target.Focus()
	inputs[fieldTarget] = target

	playlist := textinput.New()
	playlist.Placeholder = "whole library"
	playlist.SetValue(cfg.Playlist)
	playlist.CharLimit = 100
	playlist.Width = 50
	inputs[fieldPlaylist] = playlist

	ratio := textinput.New()
	ratio.SetValue(strconv.FormatFloat(cfg.Ratio, 'g', -1, 64))
	ratio.CharLimit = 6
	ratio.Width = 10
	inputs[fieldRatio] = ratio

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateInput,
		inputs:   inputs,
		spinner:  sp,
		progress: prog,
		cfg:      cfg,
		events:   make(chan prg.Event, 64),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// EventMsg wraps one progress event from the running pass.
	EventMsg struct {
		Event prg.Event
	}

	// RunDoneMsg is sent when the pass finishes.
	RunDoneMsg struct {
		Result *freshen.RunResult
		Err    error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
			}

		case "tab", "shift+tab", "up", "down":
			if m.state == StateInput {
				m.moveFocus(msg.String())
			}

		case "enter":
			if m.state == StateInput {
				if err := m.applyForm(); err != nil {
					m.logs = append(m.logs, errorStyle.Render(err.Error()))
					return m, nil
				}
				m.state = StateRunning
				return m, tea.Batch(m.startRun(), m.waitForEvent(), m.spinner.Tick)
			}

		case "ctrl+d":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case EventMsg:
		m.applyEvent(msg.Event)
		cmds = append(cmds, m.waitForEvent())
		if m.total > 0 {
			cmds = append(cmds, m.progress.SetPercent(float64(m.done)/float64(m.total)))
		}

	case RunDoneMsg:
		m.result = msg.Result
		switch {
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case msg.Result.Summary.Canceled:
			m.state = StateError
			m.err = fmt.Errorf("canceled by user")
		case msg.Result.Summary.Err() != nil:
			m.state = StateError
			m.err = msg.Result.Summary.Err()
		default:
			m.state = StateComplete
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) moveFocus(key string) {
	m.inputs[m.focused].Blur()
	if key == "shift+tab" || key == "up" {
		m.focused = (m.focused + fieldCount - 1) % fieldCount
	} else {
		m.focused = (m.focused + 1) % fieldCount
	}
	m.inputs[m.focused].Focus()
}

// applyForm copies the form values into the config and validates them.
func (m *Model) applyForm() error {
	m.cfg.Target = strings.TrimSpace(m.inputs[fieldTarget].Value())
	m.cfg.Playlist = strings.TrimSpace(m.inputs[fieldPlaylist].Value())

	if v := strings.TrimSpace(m.inputs[fieldRatio].Value()); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid ratio %q", v)
		}
		m.cfg.Ratio = ratio
	}
	return m.cfg.Validate()
}

func (m *Model) applyEvent(e prg.Event) {
	if e.Total > 0 {
		m.done, m.total = e.Index, e.Total
	}

	switch e.Stage {
	case prg.StageDeleting, prg.StageCopying:
		line := fmt.Sprintf("%s %s", string(e.Stage), e.Path)
		if e.Err != nil {
			line = errorStyle.Render("✗ " + line)
		} else {
			line = dimStyle.Render(line)
		}
		m.logs = append(m.logs, line)
	default:
		if e.Message != "" {
			m.logs = append(m.logs, infoStyle.Render(e.Message))
		}
	}
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
}

// startRun launches the freshening pass in the background.
func (m *Model) startRun() tea.Cmd {
	tracker := prg.NewTracker()
	events := m.events
	tracker.AddListener(func(e prg.Event) {
		select {
		case events <- e:
		default:
		}
	})

	f := freshen.New(m.cfg, tracker, m.dryRun)
	ctx := m.ctx

	return func() tea.Msg {
		res, err := f.Run(ctx)
		close(events)
		return RunDoneMsg{Result: res, Err: err}
	}
}

// waitForEvent blocks on the next progress event.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.events
		if !ok {
			return nil
		}
		return EventMsg{Event: e}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎵 Music Freshener"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Rotate a slice of the music on your device"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	labels := [fieldCount]string{"Device path:", "Playlist:", "Replace ratio:"}
	for i, in := range m.inputs {
		b.WriteString(subtitleStyle.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}

	check := "[ ]"
	if m.dryRun {
		check = "[×]"
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf("%s Dry run (ctrl+d)", check)))
	b.WriteString("\n")

	for _, line := range m.logs {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Freshening..."))
	b.WriteString("\n\n")

	if m.total > 0 {
		b.WriteString(m.progress.ViewAs(float64(m.done) / float64(m.total)))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d", m.done, m.total)))
		b.WriteString("\n\n")
	}

	for _, line := range m.logs {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewComplete() string {
	removed, added := 0, 0
	if m.result != nil && m.result.Plan != nil {
		removed = len(m.result.Plan.Removals)
		added = len(m.result.Plan.Additions)
	}
	label := "Device freshened!"
	if m.dryRun {
		label = "Dry run complete, nothing touched."
	}
	return boxStyle.Render(successStyle.Render(fmt.Sprintf(
		"✨ %s", label)) + fmt.Sprintf("\n\nRemoved: %d\nAdded: %d", removed, added))
}

func (m Model) viewError() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("❌ Freshening failed:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("  " + m.err.Error())
	}
	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: next field • ctrl+d: dry run • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(cfg *config.Config) error {
	p := tea.NewProgram(NewModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
