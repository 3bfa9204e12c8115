package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"golang.org/x/term"

	"github.com/wippyai/wirechan/channel"
	"github.com/wippyai/wirechan/codec"
	"github.com/wippyai/wirechan/internal/config"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	bytesStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type viewState int

const (
	stateEvents viewState = iota
	stateFilter
	stateValue
)

type traceModel struct {
	err      error
	filter   textinput.Model
	name     string
	value    string
	data     []byte
	events   []channel.Event
	visible  []int
	selected int
	height   int
	state    viewState
}

func newTraceModel(name string, data []byte, events []channel.Event, value any, err error) *traceModel {
	fi := textinput.New()
	fi.Placeholder = "type name"
	fi.Prompt = "filter: "
	fi.Width = 40

	m := &traceModel{
		err:    err,
		filter: fi,
		name:   name,
		data:   data,
		events: events,
		height: 20,
	}
	if value != nil {
		if text, yerr := yaml.Marshal(value); yerr == nil {
			m.value = string(text)
		} else {
			m.value = fmt.Sprintf("%+v", value)
		}
	}
	m.applyFilter()
	return m
}

func (m *traceModel) Init() tea.Cmd {
	return nil
}

func (m *traceModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, ev := range m.events {
		if q == "" || strings.Contains(strings.ToLower(ev.Type.String()), q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *traceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)

	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				m.state = stateEvents
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
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
			if m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "/":
			m.state = stateFilter
			return m, m.filter.Focus()

		case "v":
			if m.state == stateValue {
				m.state = stateEvents
			} else {
				m.state = stateValue
			}

		case "esc":
			m.state = stateEvents
		}
	}
	return m, nil
}

func (m *traceModel) current() (channel.Event, bool) {
	if len(m.visible) == 0 {
		return channel.Event{}, false
	}
	return m.events[m.visible[m.selected]], true
}

func (m *traceModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("wirechan inspect"))
	fmt.Fprintf(&b, " %s, %d bytes, %d values\n\n", m.name, len(m.data), len(m.events))

	if m.state == stateValue {
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(m.value)
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("v back • q quit"))
		return b.String()
	}

	start := 0
	if m.selected >= m.height {
		start = m.selected - m.height + 1
	}
	end := min(start+m.height, len(m.visible))
	for i := start; i < end; i++ {
		line := m.formatLine(m.events[m.visible[i]])
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if ev, ok := m.current(); ok {
		b.WriteString("\n")
		b.WriteString(bytesStyle.Render(strings.TrimRight(hex.Dump(m.slice(ev)), "\n")))
		b.WriteString("\n")
		if ev.Err != nil {
			b.WriteString(errorStyle.Render(ev.Err.Error()))
			b.WriteString("\n")
		}
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("decode failed: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == stateFilter {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter apply • esc done"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • / filter • v value • q quit"))
	}
	return b.String()
}

func (m *traceModel) formatLine(ev channel.Event) string {
	return offsetStyle.Render(fmt.Sprintf("%6d..%-6d", ev.Start, ev.End)) + " " +
		strings.Repeat("  ", ev.Depth) + typeStyle.Render(ev.Type.String())
}

func (m *traceModel) slice(ev channel.Event) []byte {
	start := min(max(ev.Start, 0), int64(len(m.data)))
	end := min(max(ev.End, start), int64(len(m.data)))
	return m.data[start:end]
}

func runInteractive(cfg *config.Config, reg *codec.Registry, doc document, data []byte) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	v, events, err := decodeTraced(cfg, reg, doc, data)
	p := tea.NewProgram(newTraceModel(doc.name, data, events, v, err), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
