package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/neilberkman/whispapi/internal/core/db"
)

const detailFooterLines = 2

func createViewport(t db.Transcription, width, height int) viewport.Model {
	h := height - detailFooterLines
	if h < 1 {
		h = 1
	}
	vp := viewport.New(width, h)
	vp.SetContent(renderTranscription(t, width))
	return vp
}

func renderTranscription(t db.Transcription, width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(t.SourcePath))
	b.WriteString("\n")

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-9s", label)))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("ID", t.ID)
	if t.OutputPath != "" {
		field("Output", t.OutputPath)
	}
	field("Format", t.Format+" / "+t.Language)
	field("Size", humanize.Bytes(uint64(t.FileSize)))
	if t.MediaDuration > 0 {
		field("Duration", t.MediaDuration.String())
	}
	field("Elapsed", t.Elapsed.String())
	field("Created", t.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM")+" "+metaStyle.Render("("+humanize.Time(t.CreatedAt)+")"))
	if t.Endpoint != "" {
		field("Endpoint", t.Endpoint)
	}
	if t.Error != "" {
		field("Error", errorStyle.Render(t.Error))
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(width, 20)))
	b.WriteString("\n\n")

	text := t.Transcript
	if text == "" {
		text = metaStyle.Render("(no transcript)")
	}
	if width > 0 {
		text = lipgloss.NewStyle().Width(width).Render(text)
	}
	b.WriteString(text)
	b.WriteString("\n")

	return b.String()
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.mode = listView
		m.status = ""
		return m, nil

	case "c":
		if m.current != nil {
			return m, copyTranscript(m.current.Transcript)
		}
		return m, nil

	case "g":
		m.viewport.GotoTop()
		return m, nil

	case "G":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) viewDetail() string {
	helpText := "j/k scroll • d/u half page • g/G top/bottom • c copy • esc back • q quit"
	if m.status != "" {
		helpText = statusStyle.Render(m.status) + " • " + helpText
	}
	pct := fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100)
	return m.viewport.View() + "\n" + metaStyle.Render(pct) + "\n" + helpStyle.Render(helpText)
}
