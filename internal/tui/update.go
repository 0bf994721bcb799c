package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.focus(m.focused - 1)

	case key.Matches(msg, m.keys.Down):
		m.focus(m.focused + 1)

	case key.Matches(msg, m.keys.Left):
		if m.sliders[m.focused].Decrement() {
			m.recalculate()
		}

	case key.Matches(msg, m.keys.Right):
		if m.sliders[m.focused].Increment() {
			m.recalculate()
		}

	case key.Matches(msg, m.keys.Reset):
		m.reset()
	}
	return m, nil
}
