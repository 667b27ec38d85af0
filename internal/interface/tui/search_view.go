package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = listView
		m.searchInput.Blur()
		return m, nil

	case "enter":
		m.mode = listView
		m.searchInput.Blur()
		return m, loadTranscriptions(m.store, strings.TrimSpace(m.searchInput.Value()))
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(searchHeaderStyle.Render("Search: "))
	b.WriteString(m.searchInput.View())
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(m.width, 20)))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter search • esc cancel"))

	return b.String()
}
