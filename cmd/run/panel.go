//go:build debug

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-codecs/loader"
)

const debugBuild = true

func addDebugCommands(root *cobra.Command, a *app) {
	root.AddCommand(&cobra.Command{
		Use:   "panel",
		Short: "Interactive module diagnostics (debug builds only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPanel(cmd.Context(), a)
		},
	})
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type panelState int

const (
	panelBrowse panelState = iota
	panelEditSample
	panelBusy
)

type panelModel struct {
	ctx      context.Context
	app      *app
	events   <-chan loader.Event
	result   string
	snap     []loader.Status
	sample   textinput.Model
	selected int
	state    panelState
	failed   bool
}

type eventMsg loader.Event

type eventsClosedMsg struct{}

type reloadedMsg struct{}

type selfTestMsg struct {
	line string
	ok   bool
}

func newPanelModel(ctx context.Context, a *app, events <-chan loader.Event) *panelModel {
	ti := textinput.New()
	ti.Prompt = a.p.T("panel.sample")
	ti.Placeholder = "Hello ZSTD!"
	ti.Width = 40

	return &panelModel{
		ctx:    ctx,
		app:    a,
		events: events,
		sample: ti,
		snap:   a.loader.Snapshot(),
		state:  panelBusy,
	}
}

func runPanel(ctx context.Context, a *app) error {
	events, stop := a.loader.Subscribe(64)
	defer stop()

	_, err := tea.NewProgram(newPanelModel(ctx, a, events),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	).Run()
	return err
}

func (m *panelModel) Init() tea.Cmd {
	return tea.Batch(m.waitEvent, m.initialize)
}

func (m *panelModel) waitEvent() tea.Msg {
	ev, ok := <-m.events
	if !ok {
		return eventsClosedMsg{}
	}
	return eventMsg(ev)
}

func (m *panelModel) initialize() tea.Msg {
	m.app.loader.Initialize(m.ctx)
	return reloadedMsg{}
}

func (m *panelModel) forceReload() tea.Msg {
	m.app.loader.ForceReload(m.ctx)
	return reloadedMsg{}
}

func (m *panelModel) selfTest(name string, sample []byte) tea.Cmd {
	return func() tea.Msg {
		line, ok := m.app.selfTestLine(m.ctx, name, sample)
		return selfTestMsg{line: line, ok: ok}
	}
}

func (m *panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == panelEditSample {
			switch msg.String() {
			case "enter", "esc":
				m.sample.Blur()
				m.state = panelBrowse
				return m, nil
			}
			var cmd tea.Cmd
			m.sample, cmd = m.sample.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.snap)-1 {
				m.selected++
			}

		case "e":
			if m.state == panelBrowse {
				m.state = panelEditSample
				return m, m.sample.Focus()
			}

		case "t", "enter":
			if m.state == panelBrowse && len(m.snap) > 0 {
				var sample []byte
				if v := m.sample.Value(); v != "" {
					sample = []byte(v)
				}
				return m, m.selfTest(m.snap[m.selected].Name, sample)
			}

		case "r":
			if m.state == panelBrowse {
				m.state = panelBusy
				m.result = ""
				return m, m.forceReload
			}
		}

	case eventMsg:
		m.snap = m.app.loader.Snapshot()
		return m, m.waitEvent

	case eventsClosedMsg:
		return m, nil

	case reloadedMsg:
		m.snap = m.app.loader.Snapshot()
		if m.state == panelBusy {
			m.state = panelBrowse
		}

	case selfTestMsg:
		m.result = msg.line
		m.failed = !msg.ok
	}

	return m, nil
}

func (m *panelModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.app.p.T("panel.title")))
	b.WriteString("\n\n")

	for i, st := range m.snap {
		line := fmt.Sprintf("%-10s %s", st.Name, stateLabel(m.app.p, st.State, true))
		if st.Err != nil {
			line += "  " + errorStyle.Render(st.Err.Error())
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + st.Name))
			b.WriteString(strings.TrimPrefix(line, st.Name))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.sample.View())
	b.WriteString("\n\n")

	switch {
	case m.state == panelBusy:
		b.WriteString(helpStyle.Render(m.app.p.T("panel.reloading")))
		b.WriteString("\n\n")
	case m.result != "" && m.failed:
		b.WriteString(errorStyle.Render(m.result))
		b.WriteString("\n\n")
	case m.result != "":
		b.WriteString(resultStyle.Render(m.result))
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render(m.app.p.T("panel.help")))
	return b.String()
}
