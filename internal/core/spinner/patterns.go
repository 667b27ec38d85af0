package spinner

import (
	"time"

	bubblespinner "github.com/charmbracelet/bubbles/spinner"
)

// LoadingBarName selects the loading bar mode instead of glyph cycling.
const LoadingBarName = "loadingbar"

// fallbackFrames is used whenever a table or pattern has nothing to offer.
var fallbackFrames = []string{"|", "/", "-", "\\"}

// Pattern is a named glyph sequence with a suggested frame interval.
type Pattern struct {
	Name   string
	Frames []string
	Speed  time.Duration
}

// Table is the ordered list of patterns that names and indices resolve against.
type Table []Pattern

// Lookup returns the first pattern registered under name.
func (t Table) Lookup(name string) (Pattern, bool) {
	for _, p := range t {
		if p.Name == name {
			return p, true
		}
	}
	return Pattern{}, false
}

// At returns the pattern at index i, wrapping modulo the table length.
// Negative indices count from the end.
func (t Table) At(i int) (Pattern, bool) {
	n := len(t)
	if n == 0 {
		return Pattern{}, false
	}
	return t[((i%n)+n)%n], true
}

// With returns a copy of the table with p added. A pattern with the same
// name is replaced in place so indices of the remaining entries stay put.
func (t Table) With(p Pattern) Table {
	out := make(Table, len(t), len(t)+1)
	copy(out, t)
	for i := range out {
		if out[i].Name == p.Name {
			out[i] = p
			return out
		}
	}
	return append(out, p)
}

// Names lists the pattern names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, p := range t {
		names[i] = p.Name
	}
	return names
}

// Selector picks a glyph sequence out of a Table.
type Selector interface {
	Resolve(t Table) []string
}

// Named selects a pattern by name. Unknown names are used literally, one
// frame per character.
type Named string

func (n Named) Resolve(t Table) []string {
	if p, ok := t.Lookup(string(n)); ok {
		return p.Frames
	}
	frames := make([]string, 0, len(n))
	for _, r := range string(n) {
		frames = append(frames, string(r))
	}
	return frames
}

// Index selects a pattern by position in the table.
type Index int

func (i Index) Resolve(t Table) []string {
	p, ok := t.At(int(i))
	if !ok {
		return nil
	}
	return p.Frames
}

// Frames is an explicit glyph sequence; the table is ignored.
type Frames []string

func (f Frames) Resolve(Table) []string {
	out := make([]string, len(f))
	copy(out, f)
	return out
}

// DefaultTable returns the stock patterns followed by the bubbles spinner set.
func DefaultTable() Table {
	t := Table{
		{Name: "classic", Frames: []string{"|", "/", "-", "\\"}, Speed: 100 * time.Millisecond},
		{Name: "dots", Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}, Speed: 80 * time.Millisecond},
		{Name: "equation", Frames: []string{"+", "-", "×", "÷", "="}, Speed: 200 * time.Millisecond},
		{Name: "loadingtext", Frames: []string{"▹▹▹▹▹", "▸▹▹▹▹", "▹▸▹▹▹", "▹▹▸▹▹", "▹▹▹▸▹", "▹▹▹▹▸"}, Speed: 120 * time.Millisecond},
		{Name: LoadingBarName, Frames: []string{"[    ]", "[=   ]", "[==  ]", "[=== ]", "[====]"}, Speed: 200 * time.Millisecond},
		{Name: "arrows", Frames: []string{"←", "↖", "↑", "↗", "→", "↘", "↓", "↙"}, Speed: 100 * time.Millisecond},
		{Name: "bounce", Frames: []string{"⠁", "⠂", "⠄", "⠂"}, Speed: 120 * time.Millisecond},
		{Name: "pipe", Frames: []string{"┤", "┘", "┴", "└", "├", "┌", "┬", "┐"}, Speed: 100 * time.Millisecond},
		{Name: "toggle", Frames: []string{"⊶", "⊷"}, Speed: 250 * time.Millisecond},
		{Name: "clock", Frames: []string{"🕛", "🕐", "🕑", "🕒", "🕓", "🕔", "🕕", "🕖", "🕗", "🕘", "🕙", "🕚"}, Speed: 100 * time.Millisecond},
		{Name: "triangle", Frames: []string{"◢", "◣", "◤", "◥"}, Speed: 80 * time.Millisecond},
		{Name: "square", Frames: []string{"◰", "◳", "◲", "◱"}, Speed: 120 * time.Millisecond},
	}

	bubbles := []struct {
		name string
		s    bubblespinner.Spinner
	}{
		{"line", bubblespinner.Line},
		{"dot", bubblespinner.Dot},
		{"minidot", bubblespinner.MiniDot},
		{"jump", bubblespinner.Jump},
		{"pulse", bubblespinner.Pulse},
		{"points", bubblespinner.Points},
		{"globe", bubblespinner.Globe},
		{"moon", bubblespinner.Moon},
		{"monkey", bubblespinner.Monkey},
		{"meter", bubblespinner.Meter},
		{"hamburger", bubblespinner.Hamburger},
		{"ellipsis", bubblespinner.Ellipsis},
	}
	for _, b := range bubbles {
		t = append(t, Pattern{Name: b.name, Frames: b.s.Frames, Speed: b.s.FPS})
	}

	return t
}
