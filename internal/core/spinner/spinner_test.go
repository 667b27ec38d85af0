package spinner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the background render loop.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func interactiveFactory() *Factory {
	f := NewFactory()
	f.IsTerminal = func(io.Writer) bool { return true }
	return f
}

func TestResolveIndexWraps(t *testing.T) {
	f := NewFactory()
	n := len(f.Patterns)

	for _, i := range []int{0, 1, n - 1, n, n + 3, -1, -n, -n - 2, 5 * n} {
		want := f.Patterns[((i%n)+n)%n].Frames
		got := f.Resolve(Index(i))
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Resolve(Index(%d)) = %v, want %v", i, got, want)
		}
	}
}

func TestResolveUnknownNameSplitsCharacters(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		name string
		want []string
	}{
		{"abc", []string{"a", "b", "c"}},
		{"←↑→", []string{"←", "↑", "→"}},
		{"x", []string{"x"}},
	}

	for _, tt := range tests {
		got := f.Resolve(Named(tt.name))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Resolve(Named(%q)) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestResolveRegisteredName(t *testing.T) {
	f := NewFactory()
	p, ok := f.Patterns.Lookup("equation")
	if !ok {
		t.Fatal("equation pattern missing from default table")
	}
	if got := f.Resolve(Named("equation")); !reflect.DeepEqual(got, p.Frames) {
		t.Errorf("Resolve(equation) = %v, want %v", got, p.Frames)
	}
}

func TestResolveDefaults(t *testing.T) {
	f := NewFactory()
	first := f.Patterns[0].Frames

	if got := f.Resolve(nil); !reflect.DeepEqual(got, first) {
		t.Errorf("Resolve(nil) = %v, want table entry 0 %v", got, first)
	}
	if got := f.Resolve(Named("")); !reflect.DeepEqual(got, first) {
		t.Errorf("Resolve(empty name) = %v, want table entry 0 %v", got, first)
	}

	f.SetDefaultPattern(Named("dots"))
	dots, _ := f.Patterns.Lookup("dots")
	if got := f.Resolve(nil); !reflect.DeepEqual(got, dots.Frames) {
		t.Errorf("Resolve(nil) after SetDefaultPattern = %v, want %v", got, dots.Frames)
	}
}

func TestResolveMalformedTableFallsBack(t *testing.T) {
	f := &Factory{}
	if got := f.Resolve(Index(3)); !reflect.DeepEqual(got, fallbackFrames) {
		t.Errorf("empty table: got %v, want %v", got, fallbackFrames)
	}

	f.Patterns = Table{{Name: "empty"}}
	if got := f.Resolve(Named("empty")); !reflect.DeepEqual(got, fallbackFrames) {
		t.Errorf("empty pattern: got %v, want %v", got, fallbackFrames)
	}
}

func TestFactoriesDoNotShareDefaults(t *testing.T) {
	a := NewFactory().SetDefaultInterval(time.Second)
	b := NewFactory()

	if b.DefaultInterval != DefaultInterval {
		t.Errorf("second factory interval = %v, want %v", b.DefaultInterval, DefaultInterval)
	}
	if got := a.New(Options{}).currentInterval(); got != time.Second {
		t.Errorf("interval = %v, want 1s", got)
	}
}

func TestRegisterReplacesInPlace(t *testing.T) {
	f := NewFactory()
	n := len(f.Patterns)

	f.Register(Pattern{Name: "dots", Frames: []string{"."}})
	if len(f.Patterns) != n {
		t.Fatalf("table length = %d, want %d", len(f.Patterns), n)
	}
	if got := f.Resolve(Named("dots")); !reflect.DeepEqual(got, []string{"."}) {
		t.Errorf("replaced dots = %v", got)
	}

	f.Register(Pattern{Name: "custom", Frames: []string{"a", "b"}})
	if len(f.Patterns) != n+1 {
		t.Errorf("table length = %d, want %d", len(f.Patterns), n+1)
	}
	if got := f.Resolve(Index(-1)); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Resolve(Index(-1)) = %v", got)
	}
}

func TestStopBeforeStartIsNoop(t *testing.T) {
	s := New(Options{Output: &syncBuffer{}})
	if err := s.Stop(true); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := s.Stop(false); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
	if s.IsSpinning() {
		t.Error("IsSpinning() = true, want false")
	}
}

func TestStartNonInteractiveIsNoop(t *testing.T) {
	out := &syncBuffer{}
	s := New(Options{Output: out, Message: "waiting"})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.IsSpinning() {
		t.Error("IsSpinning() = true for non-terminal output")
	}
	if out.String() != "" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestCycleStartStop(t *testing.T) {
	out := &syncBuffer{}
	s := interactiveFactory().New(Options{
		Spinner: Frames{"a", "b"},
		Speed:   5 * time.Millisecond,
		Message: "working",
		Output:  out,
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsSpinning() {
		t.Fatal("IsSpinning() = false right after Start")
	}
	if !strings.HasPrefix(out.String(), clearLine+"a working") {
		t.Errorf("first frame = %q", out.String())
	}

	time.Sleep(30 * time.Millisecond)

	if err := s.Stop(true); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.IsSpinning() {
		t.Fatal("IsSpinning() = true right after Stop")
	}

	got := out.String()
	if !strings.Contains(got, "b working") {
		t.Errorf("expected the second glyph to render, got %q", got)
	}
	if !strings.HasSuffix(got, clearLine) {
		t.Errorf("Stop(true) should clear the line, got %q", got)
	}

	// Nothing renders once stopped.
	before := out.String()
	time.Sleep(20 * time.Millisecond)
	if out.String() != before {
		t.Error("frames rendered after Stop")
	}
}

func TestCycleRestart(t *testing.T) {
	s := interactiveFactory().New(Options{Output: &syncBuffer{}, Speed: time.Millisecond})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Start(ctx); err != nil {
			t.Fatalf("Start() #%d error = %v", i, err)
		}
		if !s.IsSpinning() {
			t.Fatalf("IsSpinning() = false after Start #%d", i)
		}
		if err := s.Stop(false); err != nil {
			t.Fatalf("Stop() #%d error = %v", i, err)
		}
	}
}

func TestMessagePlaceholder(t *testing.T) {
	s := New(Options{Spinner: Frames{"*"}, Message: "[%s] uploading %s"})
	if got := s.frameLocked(0); got != "[*] uploading %s" {
		t.Errorf("frame = %q", got)
	}

	s.SetMessage("plain")
	if got := s.frameLocked(0); got != "* plain" {
		t.Errorf("frame = %q", got)
	}
}

func TestSettersTakeEffect(t *testing.T) {
	s := New(Options{Spinner: Frames{"a"}})

	s.SetPattern(Frames{"x", "y"}).SetInterval(7 * time.Millisecond).SetMessage("m")
	if got := s.Frames(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("Frames() = %v", got)
	}
	if got := s.currentInterval(); got != 7*time.Millisecond {
		t.Errorf("interval = %v", got)
	}
	if got := s.frameLocked(1); got != "y m" {
		t.Errorf("frame = %q", got)
	}

	s.SetPattern(Named("equation"))
	eq, _ := DefaultTable().Lookup("equation")
	if got := s.Frames(); !reflect.DeepEqual(got, eq.Frames) {
		t.Errorf("Frames() = %v, want %v", got, eq.Frames)
	}
}

func TestCustomRenderer(t *testing.T) {
	var frames []string
	var mu sync.Mutex
	render := RenderFunc(func(w io.Writer, frame string) error {
		mu.Lock()
		frames = append(frames, frame)
		mu.Unlock()
		return nil
	})

	s := interactiveFactory().New(Options{
		Spinner:  Frames{"1", "2", "3"},
		Message:  "%s",
		Speed:    2 * time.Millisecond,
		Output:   &syncBuffer{},
		Renderer: render,
	})
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(25 * time.Millisecond)
	if err := s.Stop(false); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(frames) < 4 {
		t.Fatalf("got %d frames, want at least 4", len(frames))
	}
	for i, f := range frames[:4] {
		want := []string{"1", "2", "3", "1"}[i]
		if f != want {
			t.Errorf("frame %d = %q, want %q", i, f, want)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriteErrorsPropagate(t *testing.T) {
	s := interactiveFactory().New(Options{Output: failingWriter{}})
	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() error = nil, want write error")
	}
	if s.IsSpinning() {
		t.Error("IsSpinning() = true after failed first frame")
	}

	calls := 0
	var mu sync.Mutex
	flaky := RenderFunc(func(w io.Writer, frame string) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls > 1 {
			return errors.New("broken pipe")
		}
		return nil
	})
	s = interactiveFactory().New(Options{Output: &syncBuffer{}, Renderer: flaky, Speed: time.Millisecond})
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := s.Stop(false); err == nil {
		t.Error("Stop() error = nil, want background write error")
	}
}

func TestTypeText(t *testing.T) {
	out := &syncBuffer{}
	s := interactiveFactory().New(Options{
		Spinner: Frames{">"},
		Text:    "abc",
		Speed:   time.Millisecond,
		Output:  out,
	})
	if s.Mode() != ModeTypeText {
		t.Fatalf("Mode() = %v, want typetext", s.Mode())
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.IsSpinning() {
		t.Error("typed text should not leave a timer running")
	}

	want := "\r> a\r> ab\r> abc\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLoadingBar(t *testing.T) {
	out := &syncBuffer{}
	s := interactiveFactory().New(Options{
		Spinner: Named(LoadingBarName),
		Steps:   3,
		Speed:   time.Millisecond,
		Output:  out,
	})
	if s.Mode() != ModeLoadingBar {
		t.Fatalf("Mode() = %v, want loadingbar", s.Mode())
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	want := "\r[=--] 33%\r[==-] 67%\r[===] 100%\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLoadingBarCancelled(t *testing.T) {
	s := interactiveFactory().New(Options{
		Spinner: Named(LoadingBarName),
		Speed:   time.Hour,
		Output:  &syncBuffer{},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Start() error = %v, want context.Canceled", err)
	}
}

func TestOptionDefaults(t *testing.T) {
	s := New(Options{})
	if s.steps != DefaultSteps {
		t.Errorf("steps = %d, want %d", s.steps, DefaultSteps)
	}
	if s.currentInterval() != DefaultInterval {
		t.Errorf("interval = %v, want %v", s.currentInterval(), DefaultInterval)
	}
	if s.Mode() != ModeCycle {
		t.Errorf("Mode() = %v, want cycle", s.Mode())
	}
	if _, ok := s.renderer.(LineRenderer); !ok {
		t.Errorf("renderer = %T, want LineRenderer", s.renderer)
	}
}
