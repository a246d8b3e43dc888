// Package traceview is a bubbletea TUI for paging through a recorded
// internal/trace.Event stream. It is the one place in this module that
// runs a goroutine-driven event loop: spec.md's guest/bridge/driver code
// is deliberately synchronous (one ecall at a time, no scheduler), but an
// interactive trace viewer is ordinary Bubble Tea, the same shape any
// charmbracelet/bubbletea program takes.
package traceview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/r55-labs/r55vm/internal/trace"
	"github.com/r55-labs/r55vm/internal/ui/colorize"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorizeHeader))
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorizeTag))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorizeDim))
)

// Colors mirror colorize's IDA palette so the TUI and the plain-text
// trace renderer colorize.Instruction produces look like one tool.
const (
	colorizeHeader = "#569CD6"
	colorizeTag    = "#FFB4C8"
	colorizeDim    = "#B4B4B4"
)

// Model is a bubbletea model over a fixed, already-recorded slice of
// trace events (a completed run, not a live feed — cmd/r55vm's trace
// subcommand loads a file, then hands every event to NewModel at once).
type Model struct {
	events   []*trace.Event
	viewport viewport.Model
	ready    bool
}

// NewModel returns a Model over events, rendered in order.
func NewModel(events []*trace.Event) Model {
	return Model{events: events}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		headerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight)
			m.viewport.SetContent(m.render())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "loading trace...\n"
	}
	header := headerStyle.Render(fmt.Sprintf(" r55vm trace — %d events (q to quit, ↑/↓ to scroll) ", len(m.events)))
	return header + "\n" + m.viewport.View()
}

func (m Model) render() string {
	var b strings.Builder
	for i, e := range m.events {
		indent := strings.Repeat("  ", e.Depth)
		tags := tagStyle.Render(strings.Join(e.Tags.Strings(), " "))
		line := fmt.Sprintf("%s%s %s %s %s",
			indent,
			colorize.Address(e.PC),
			colorize.FuncName(e.Name),
			tags,
			dimStyle.Render(e.Detail),
		)
		b.WriteString(line)
		if i < len(m.events)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(events []*trace.Event) error {
	p := tea.NewProgram(NewModel(events), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
