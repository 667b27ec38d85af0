package spinner

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const clearLine = "\r\033[K"

// Renderer draws frames for the cycling spinner.
type Renderer interface {
	// Render replaces the current line with frame.
	Render(w io.Writer, frame string) error
	// Clear erases the current line.
	Clear(w io.Writer) error
}

// LineRenderer clears the line and writes the frame as-is.
type LineRenderer struct{}

func (LineRenderer) Render(w io.Writer, frame string) error {
	_, err := io.WriteString(w, clearLine+frame)
	return err
}

func (LineRenderer) Clear(w io.Writer) error {
	_, err := io.WriteString(w, clearLine)
	return err
}

// RenderFunc adapts a plain function to a Renderer. Clearing falls back to
// LineRenderer.
type RenderFunc func(w io.Writer, frame string) error

func (f RenderFunc) Render(w io.Writer, frame string) error {
	return f(w, frame)
}

func (f RenderFunc) Clear(w io.Writer) error {
	return LineRenderer{}.Clear(w)
}

// StyledRenderer paints each frame with a lipgloss style.
type StyledRenderer struct {
	Style lipgloss.Style
}

func (r StyledRenderer) Render(w io.Writer, frame string) error {
	_, err := io.WriteString(w, clearLine+r.Style.Render(frame))
	return err
}

func (r StyledRenderer) Clear(w io.Writer) error {
	return LineRenderer{}.Clear(w)
}

// IsTerminal reports whether w is an interactive terminal. Writers without a
// file descriptor never are.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
