package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-stepseq/midi"
	"go-stepseq/sequencer"
	"go-stepseq/theme"
	"go-stepseq/widgets"
)

// Status describes the hardware around the sequencer
type Status struct {
	Output     string // trigger port, empty when none
	Controller string // Launchpad id, empty when none
	Audio      bool
}

type Model struct {
	Manager  *sequencer.Manager
	Theme    *theme.Theme
	Playhead *Playhead
	Lights   *midi.StepLights // nil without Launchpad support
	Status   func() Status    // nil shows nothing
	status   Status
	help     help.Model
	cursor   int
	step     int // highlighted step, -1 when stopped
	quitting bool
}

type UpdateMsg struct{}

type PlayheadMsg int

// DeviceMsg reports that outputs or controllers changed
type DeviceMsg struct{}

func NewModel(manager *sequencer.Manager, playhead *Playhead, th *theme.Theme) Model {
	return Model{
		Manager:  manager,
		Theme:    th,
		Playhead: playhead,
		help:     help.New(),
		step:     -1,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForPlayhead(p *Playhead) tea.Cmd {
	return func() tea.Msg {
		return PlayheadMsg(<-p.ch)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForPlayhead(m.Playhead),
		func() tea.Msg { return DeviceMsg{} },
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			m.Manager.Stop()
			return m, tea.Quit
		case key.Matches(msg, keys.Play):
			m.Manager.StartStop()
		case key.Matches(msg, keys.TempoUp):
			m.Manager.NudgeTempo(1)
		case key.Matches(msg, keys.TempoDown):
			m.Manager.NudgeTempo(-1)
		case key.Matches(msg, keys.Left):
			m.cursor = (m.cursor + sequencer.NumSteps - 1) % sequencer.NumSteps
		case key.Matches(msg, keys.Right):
			m.cursor = (m.cursor + 1) % sequencer.NumSteps
		case key.Matches(msg, keys.Toggle):
			m.Manager.ToggleStep(m.cursor)
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case UpdateMsg:
		if m.Manager.State().State != sequencer.Playing {
			m.step = -1
		}
		m.showLights()
		return m, ListenForUpdates(m.Manager)

	case PlayheadMsg:
		// highlights still in flight after a stop are dropped
		if m.Manager.State().State == sequencer.Playing {
			m.step = int(msg)
		}
		m.showLights()
		return m, ListenForPlayhead(m.Playhead)

	case DeviceMsg:
		if m.Status != nil {
			m.status = m.Status()
		}
		m.showLights()
	}

	return m, nil
}

func (m Model) playing() bool {
	return m.Manager.State().State == sequencer.Playing
}

func (m Model) showLights() {
	if m.Lights == nil {
		return
	}
	m.Lights.Show(m.Manager.Pattern().Snapshot(), m.step, m.playing())
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Manager.State()
	steps := m.Manager.Pattern().Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := "STOP"
	if st.State == sequencer.Playing {
		playState = "PLAY"
	}
	stepLabel := "--"
	if m.step >= 0 {
		stepLabel = fmt.Sprintf("%02d", m.step+1)
	}
	header := headerStyle.Render(fmt.Sprintf("go-stepseq  %s  %3.0fbpm  step:%s", playState, st.Tempo, stepLabel))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(m.status.String()))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderBeatRuler(m.Theme))
	out.WriteString("\n")
	out.WriteString(widgets.RenderStepRow(m.Theme, steps, m.step, m.cursor))
	out.WriteString("\n")

	if m.status.Controller != "" {
		out.WriteString("\n")
		out.WriteString(widgets.RenderLaunchpad(midi.StepLEDs(steps, m.step, st.State == sequencer.Playing)))
		out.WriteString("\n")
	}

	if err := m.Manager.Err(); err != nil {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(err.Error()))
		out.WriteString("\n")
	}
	if late := m.Manager.Stats().Late; late > 0 {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(fmt.Sprintf("%d late notes", late)))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(m.help.View(keys))
	return out.String()
}

func (s Status) String() string {
	output := s.Output
	if output == "" {
		output = "none"
	}
	lp := s.Controller
	if lp == "" {
		lp = "-"
	}
	audio := "off"
	if s.Audio {
		audio = "on"
	}
	return fmt.Sprintf("out: %s  lp: %s  audio: %s", output, lp, audio)
}
