package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = listView
	return m, nil
}

func (m Model) viewHelp() string {
	help := `
whispapi History - Help
═══════════════════════

LIST VIEW
─────────
  ↑/↓, j/k     Navigate transcriptions
  Enter        View transcript
  c            Copy transcript to clipboard
  /            Search transcripts
  r            Reload
  esc          Clear search
  ?            Show this help
  q            Quit

TRANSCRIPT VIEW
───────────────
  j/k          Scroll line by line
  d/u          Scroll half page
  g/G          Jump to top/bottom
  c            Copy transcript to clipboard
  esc          Back to list
  q            Quit

SEARCH
──────
  Type words to match transcript text, plus any of:
    format:srt  lang:fr  status:failed
    after:yesterday  before:2024-12-01  since:3d
  Enter        Run search
  esc          Cancel

Press any key to return to the list
`

	return helpStyle.Render(help)
}
