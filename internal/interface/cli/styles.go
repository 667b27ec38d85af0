package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/neilberkman/whispapi/internal/core/spinner"
)

var (
	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("120")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
)

// styled applies style only when w is a terminal so piped output stays plain.
func styled(w io.Writer, style lipgloss.Style, s string) string {
	if !spinner.IsTerminal(w) {
		return s
	}
	return style.Render(s)
}

func statusLine(w io.Writer, s string) string  { return styled(w, statusStyle, s) }
func successLine(w io.Writer, s string) string { return styled(w, successStyle, s) }
func failureLine(w io.Writer, s string) string { return styled(w, failureStyle, s) }
