package tui

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/neilberkman/whispapi/internal/core/db"
)

type transcriptionListItem struct {
	t db.Transcription
}

func (i transcriptionListItem) FilterValue() string {
	return i.t.SourcePath + " " + i.t.Transcript
}

func (i transcriptionListItem) Title() string {
	return filepath.Base(i.t.SourcePath)
}

func (i transcriptionListItem) Description() string {
	desc := fmt.Sprintf("%s | %s/%s | %s | %s",
		shortID(i.t.ID), i.t.Format, i.t.Language,
		humanize.Bytes(uint64(i.t.FileSize)), humanize.Time(i.t.CreatedAt))
	if i.t.Status == db.StatusFailed {
		desc += " | failed"
	}
	return desc
}

// Custom delegate to mark failed attempts
type transcriptionDelegate struct {
	list.DefaultDelegate
}

func (d transcriptionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(transcriptionListItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := it.Title()
	desc := it.Description()

	switch {
	case index == m.Index():
		title = selectedItemStyle.Render(title)
		desc = selectedItemStyle.Faint(true).Render(desc)
	case it.t.Status == db.StatusFailed:
		title = failedItemStyle.Render(title)
		desc = itemStyle.Render(desc)
	default:
		title = itemStyle.Render(title)
		desc = itemStyle.Render(desc)
	}

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func createTranscriptionList(items []db.Transcription, width, height int) list.Model {
	listItems := make([]list.Item, len(items))
	for i, t := range items {
		listItems[i] = transcriptionListItem{t: t}
	}

	delegate := transcriptionDelegate{DefaultDelegate: list.NewDefaultDelegate()}

	l := list.New(listItems, delegate, width, height)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false) // Search goes through the history store with /

	return l
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if selected, ok := m.list.SelectedItem().(transcriptionListItem); ok {
			return m, loadDetail(m.store, selected.t.ID)
		}
		return m, nil

	case "c":
		if selected, ok := m.list.SelectedItem().(transcriptionListItem); ok {
			return m, copyTranscript(selected.t.Transcript)
		}
		return m, nil

	case "/":
		m.mode = searchView
		m.searchInput.SetValue(m.query)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case "r":
		m.status = ""
		return m, loadTranscriptions(m.store, m.query)

	case "esc":
		if m.query != "" {
			return m, loadTranscriptions(m.store, "")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) viewList() string {
	helpText := "↑/k up • ↓/j down • enter open • c copy • / search • q quit • ? more"
	if m.query != "" {
		helpText = "search: " + m.query + " • esc clear • " + helpText
	}
	if m.status != "" {
		helpText = statusStyle.Render(m.status) + " • " + helpText
	}

	if len(m.items) == 0 {
		if m.query != "" {
			return "No transcriptions match.\n\n" + helpStyle.Render(helpText)
		}
		return "No transcriptions yet. Run 'whispapi <file>' to create one.\n\n" + helpStyle.Render(helpText)
	}

	return m.list.View() + "\n" + helpStyle.Render(helpText)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
