package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zoobzio/timerz/typeahead"
)

const sessionName = "demo.list"

// matchMsg reports an item selected by a typeahead match.
type matchMsg struct{ item string }

// settledMsg reports that the typeahead buffer was cleared.
type settledMsg struct{ buffer string }

type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Up:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
	Down: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
	Quit: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	bufferStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

// model is the input layer: it turns key presses into typeahead calls and
// moves the cursor to whatever the session matches.
type model struct {
	title    string
	items    []string
	cursor   int
	buffer   string
	lastNote string

	reg    *typeahead.Registry[string]
	config *typeahead.Config[string]
	events chan tea.Msg
}

func newModel(cfg *Config, reg *typeahead.Registry[string]) *model {
	m := &model{
		title:  cfg.Title,
		items:  cfg.Items,
		reg:    reg,
		events: make(chan tea.Msg, 64),
	}

	// OnMatch runs on the Update goroutine for keystrokes and on a timer
	// goroutine for settles, so it only ever hands the item over.
	m.config = &typeahead.Config[string]{
		Items: cfg.Items,
		Strategy: typeahead.Funcs[string]{
			Predicate: typeahead.StringPrefix(),
			Matched:   func(item string) { m.post(matchMsg{item: item}) },
		},
		DebounceTime: cfg.Debounce(),
		Listeners: []typeahead.ListenerSpec[string]{{
			Name: "ui.settled",
			Callback: func(_ context.Context, ev typeahead.Event[string]) error {
				m.post(settledMsg{buffer: ev.Buffer})
				return nil
			},
			Options: typeahead.ListenerOptions{On: typeahead.EventReset},
		}},
	}
	return m
}

// post forwards msg to the program without blocking the caller.
func (m *model) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
		// UI is behind, drop the notification
	}
}

// waitForEvent delivers the next typeahead notification to Update.
func (m *model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		}

		session, err := m.reg.Handle(sessionName, msg.String(), m.config)
		if err != nil {
			m.lastNote = err.Error()
			return m, nil
		}
		m.buffer = session.Buffer()
		return m, nil

	case matchMsg:
		if i := slices.Index(m.items, msg.item); i >= 0 {
			m.cursor = i
		}
		m.lastNote = fmt.Sprintf("matched %q", msg.item)
		return m, m.waitForEvent()

	case settledMsg:
		m.buffer = ""
		m.lastNote = fmt.Sprintf("settled after %q", msg.buffer)
		return m, m.waitForEvent()
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	for i, item := range m.items {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + item))
		} else {
			b.WriteString("  " + item)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString("typed: " + bufferStyle.Render(m.buffer) + "\n")
	if m.lastNote != "" {
		b.WriteString(dimStyle.Render(m.lastNote) + "\n")
	}
	b.WriteString(dimStyle.Render("type to jump • ↑/↓ move • esc quit"))
	return b.String()
}
