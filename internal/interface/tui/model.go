// Package tui is the interactive transcription history browser.
package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/neilberkman/whispapi/internal/core/db"
)

type viewMode int

const (
	listView viewMode = iota
	detailView
	searchView
	helpView
)

// Store is the part of the history database the browser reads.
type Store interface {
	ListTranscriptions(f db.ListFilter) ([]db.Transcription, error)
	GetTranscription(idPrefix string) (*db.Transcription, error)
}

type Model struct {
	store    Store
	mode     viewMode
	list     list.Model
	viewport viewport.Model
	width    int
	height   int
	err      error
	status   string

	items   []db.Transcription
	current *db.Transcription

	searchInput textinput.Model
	query       string
}

func New(store Store) Model {
	ti := textinput.New()
	ti.Placeholder = "words, format:srt, lang:fr, status:failed, after:yesterday"
	ti.CharLimit = 200

	return Model{
		store:       store,
		mode:        listView,
		list:        createTranscriptionList(nil, 0, 0),
		searchInput: ti,
	}
}

func (m Model) Init() tea.Cmd {
	return loadTranscriptions(m.store, "")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, listHeight(msg.Height))
		if m.current != nil {
			m.viewport = createViewport(*m.current, m.width, m.height)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Search input owns every other key while typing
		if m.mode == searchView {
			return m.updateSearch(msg)
		}

		switch msg.String() {
		case "q":
			if m.mode == listView {
				return m, tea.Quit
			}
			m.mode = listView
			return m, nil

		case "?":
			if m.mode == helpView {
				m.mode = listView
			} else {
				m.mode = helpView
			}
			return m, nil
		}

		switch m.mode {
		case listView:
			return m.updateList(msg)
		case detailView:
			return m.updateDetail(msg)
		case helpView:
			return m.updateHelp(msg)
		}

	case transcriptionsLoadedMsg:
		m.err = nil
		m.items = msg.items
		m.query = msg.query
		m.list = createTranscriptionList(msg.items, m.width, listHeight(m.height))
		return m, nil

	case detailLoadedMsg:
		m.err = nil
		detail := msg.detail
		m.current = &detail
		m.viewport = createViewport(detail, m.width, m.height)
		m.mode = detailView
		return m, nil

	case statusMsg:
		m.status = msg.text
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit"
	}

	switch m.mode {
	case listView:
		return m.viewList()
	case detailView:
		return m.viewDetail()
	case searchView:
		return m.viewSearch()
	case helpView:
		return m.viewHelp()
	}

	return ""
}

// listHeight reserves one line for the footer.
func listHeight(height int) int {
	if height <= 1 {
		return height
	}
	return height - 1
}
