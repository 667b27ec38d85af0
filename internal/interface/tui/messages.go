package tui

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/neilberkman/whispapi/internal/core/db"
	"github.com/neilberkman/whispapi/internal/core/history"
)

const listLimit = 500

type errMsg struct {
	err error
}

type transcriptionsLoadedMsg struct {
	items []db.Transcription
	query string
}

type detailLoadedMsg struct {
	detail db.Transcription
}

type statusMsg struct {
	text string
}

func loadTranscriptions(store Store, query string) tea.Cmd {
	return func() tea.Msg {
		filter := history.ParseQuery(query, time.Now())
		filter.Limit = listLimit

		items, err := store.ListTranscriptions(filter)
		if err != nil {
			return errMsg{err}
		}
		return transcriptionsLoadedMsg{items: items, query: query}
	}
}

func loadDetail(store Store, id string) tea.Cmd {
	return func() tea.Msg {
		t, err := store.GetTranscription(id)
		if err != nil {
			return errMsg{err}
		}
		return detailLoadedMsg{detail: *t}
	}
}

// copyToClipboard is swapped out in tests; there is no clipboard in CI.
var copyToClipboard = clipboard.WriteAll

func copyTranscript(text string) tea.Cmd {
	return func() tea.Msg {
		if err := copyToClipboard(text); err != nil {
			return statusMsg{text: "Copy failed: " + err.Error()}
		}
		return statusMsg{text: "Transcript copied to clipboard"}
	}
}
