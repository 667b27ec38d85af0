// Package spinner renders terminal feedback while a long operation runs:
// a cycling glyph spinner, a typed-out line of text, or a loading bar.
package spinner

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	DefaultInterval = 60 * time.Millisecond
	DefaultSteps    = 20
)

// Mode is the kind of animation a Spinner performs.
type Mode int

const (
	ModeCycle Mode = iota
	ModeTypeText
	ModeLoadingBar
)

func (m Mode) String() string {
	switch m {
	case ModeTypeText:
		return "typetext"
	case ModeLoadingBar:
		return "loadingbar"
	default:
		return "cycle"
	}
}

// Options configures a single Spinner.
type Options struct {
	Spinner  Selector      // pattern; nil uses the factory default
	Speed    time.Duration // frame interval; zero uses the factory default
	Message  string        // may contain one %s for the current glyph
	Text     string        // non-empty switches to typed-text mode
	Steps    int           // loading bar steps
	Output   io.Writer     // defaults to os.Stdout
	Renderer Renderer      // defaults to LineRenderer
}

// Factory owns the defaults shared by the spinners it creates.
type Factory struct {
	Patterns        Table
	DefaultPattern  Selector
	DefaultInterval time.Duration
	IsTerminal      func(io.Writer) bool
}

// NewFactory returns a factory with the stock table, pattern 0 and a 60ms
// interval.
func NewFactory() *Factory {
	return &Factory{
		Patterns:        DefaultTable(),
		DefaultPattern:  Index(0),
		DefaultInterval: DefaultInterval,
		IsTerminal:      IsTerminal,
	}
}

// Register adds or replaces a pattern in the factory table.
func (f *Factory) Register(p Pattern) *Factory {
	f.Patterns = f.Patterns.With(p)
	return f
}

// SetDefaultPattern changes the pattern used when Options.Spinner is nil.
func (f *Factory) SetDefaultPattern(sel Selector) *Factory {
	f.DefaultPattern = sel
	return f
}

// SetDefaultInterval changes the interval used when Options.Speed is zero.
func (f *Factory) SetDefaultInterval(d time.Duration) *Factory {
	f.DefaultInterval = d
	return f
}

// Resolve turns a selector into frames, falling back to the default pattern
// and finally to a built-in sequence.
func (f *Factory) Resolve(sel Selector) []string {
	if isAbsent(sel) {
		sel = f.DefaultPattern
	}
	var frames []string
	if !isAbsent(sel) {
		frames = sel.Resolve(f.Patterns)
	}
	if len(frames) == 0 {
		frames = make([]string, len(fallbackFrames))
		copy(frames, fallbackFrames)
	}
	return frames
}

func isAbsent(sel Selector) bool {
	if sel == nil {
		return true
	}
	n, ok := sel.(Named)
	return ok && n == ""
}

// New creates a Spinner from opts.
func (f *Factory) New(opts Options) *Spinner {
	interval := opts.Speed
	if interval <= 0 {
		interval = f.DefaultInterval
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	steps := opts.Steps
	if steps <= 0 {
		steps = DefaultSteps
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = LineRenderer{}
	}

	isTerminal := f.IsTerminal
	if isTerminal == nil {
		isTerminal = IsTerminal
	}

	mode := ModeCycle
	if opts.Text != "" {
		mode = ModeTypeText
	} else if n, ok := opts.Spinner.(Named); ok && n == LoadingBarName {
		mode = ModeLoadingBar
	}

	return &Spinner{
		factory:    f,
		frames:     f.Resolve(opts.Spinner),
		message:    opts.Message,
		interval:   interval,
		text:       opts.Text,
		steps:      steps,
		mode:       mode,
		out:        out,
		renderer:   renderer,
		isTerminal: isTerminal,
	}
}

// New creates a Spinner from a fresh default factory.
func New(opts Options) *Spinner {
	return NewFactory().New(opts)
}

// Spinner is a single animation session. The cycling mode animates on a
// background goroutine between Start and Stop.
type Spinner struct {
	factory    *Factory
	out        io.Writer
	renderer   Renderer
	isTerminal func(io.Writer) bool
	text       string
	steps      int
	mode       Mode

	mu       sync.Mutex
	frames   []string
	message  string
	interval time.Duration
	stop     chan struct{} // non-nil while spinning
	done     chan struct{}
	err      error // first write error from the background loop
}

// Mode reports which animation Start performs.
func (s *Spinner) Mode() Mode {
	return s.mode
}

// Start begins the animation. Non-interactive outputs are left untouched.
// Typed text and the loading bar run to completion before Start returns;
// the cycling spinner returns immediately and keeps animating until Stop.
func (s *Spinner) Start(ctx context.Context) error {
	if !s.isTerminal(s.out) {
		return nil
	}

	switch s.mode {
	case ModeTypeText:
		return s.typeText(ctx)
	case ModeLoadingBar:
		return s.loadingBar(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return nil
	}
	if err := s.renderer.Render(s.out, s.frameLocked(0)); err != nil {
		return err
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.err = nil
	go s.loop(s.stop, s.done)

	return nil
}

func (s *Spinner) loop(stop, done chan struct{}) {
	defer close(done)

	for i := 1; ; i++ {
		s.mu.Lock()
		interval := s.interval
		s.mu.Unlock()

		timer := time.NewTimer(interval)
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		s.mu.Lock()
		err := s.renderer.Render(s.out, s.frameLocked(i))
		if err != nil {
			s.err = err
		}
		s.mu.Unlock()

		if err != nil {
			// Stay registered until Stop so the error is reported there.
			<-stop
			return
		}
	}
}

// frameLocked builds the line for tick i. Callers hold s.mu.
func (s *Spinner) frameLocked(i int) string {
	glyph := s.frames[i%len(s.frames)]
	if strings.Contains(s.message, "%s") {
		return strings.Replace(s.message, "%s", glyph, 1)
	}
	return glyph + " " + s.message
}

// Stop ends a cycling animation, optionally erasing the current line. It
// returns the first write error seen while animating. Stopping a spinner
// that is not spinning does nothing.
func (s *Spinner) Stop(clear bool) error {
	s.mu.Lock()
	if s.stop == nil {
		s.mu.Unlock()
		return nil
	}
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	close(stop)
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.err
	s.err = nil
	if clear {
		if cerr := s.renderer.Clear(s.out); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// IsSpinning reports whether the cycling animation is running.
func (s *Spinner) IsSpinning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// SetPattern replaces the glyph sequence.
func (s *Spinner) SetPattern(sel Selector) *Spinner {
	frames := s.factory.Resolve(sel)
	s.mu.Lock()
	s.frames = frames
	s.mu.Unlock()
	return s
}

// SetInterval changes the frame interval from the next tick on.
func (s *Spinner) SetInterval(d time.Duration) *Spinner {
	if d <= 0 {
		d = s.factory.DefaultInterval
	}
	if d <= 0 {
		d = DefaultInterval
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
	return s
}

// SetMessage changes the status text from the next tick on.
func (s *Spinner) SetMessage(message string) *Spinner {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
	return s
}

// Frames returns a copy of the current glyph sequence.
func (s *Spinner) Frames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.frames))
	copy(out, s.frames)
	return out
}

func (s *Spinner) currentInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Spinner) typeText(ctx context.Context) error {
	s.mu.Lock()
	prefix := s.frames[0]
	s.mu.Unlock()

	var filled strings.Builder
	for _, r := range s.text {
		filled.WriteRune(r)
		if _, err := fmt.Fprintf(s.out, "\r%s %s", prefix, filled.String()); err != nil {
			return err
		}
		if err := wait(ctx, s.currentInterval()); err != nil {
			return err
		}
	}

	_, err := io.WriteString(s.out, "\n")
	return err
}

func (s *Spinner) loadingBar(ctx context.Context) error {
	for step := 1; step <= s.steps; step++ {
		bar := strings.Repeat("=", step) + strings.Repeat("-", s.steps-step)
		pct := int(math.Round(float64(step) / float64(s.steps) * 100))
		if _, err := fmt.Fprintf(s.out, "\r[%s] %d%%", bar, pct); err != nil {
			return err
		}
		if err := wait(ctx, s.currentInterval()); err != nil {
			return err
		}
	}

	_, err := io.WriteString(s.out, "\n")
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
