package media

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestKindOf(t *testing.T) {
	for _, ext := range AudioExtensions {
		if k, ok := KindOf("clip" + ext); !ok || k != Audio {
			t.Errorf("KindOf(%s) = %q, %v; want audio", ext, k, ok)
		}
	}
	for _, ext := range VideoExtensions {
		if k, ok := KindOf("/tmp/movie" + ext); !ok || k != Video {
			t.Errorf("KindOf(%s) = %q, %v; want video", ext, k, ok)
		}
	}

	if k, ok := KindOf("LOUD.MP3"); !ok || k != Audio {
		t.Errorf("KindOf is case-sensitive: %q, %v", k, ok)
	}

	for _, p := range []string{"photo.jpg", "notes.txt", "noext", "archive.mp3.zip", ""} {
		if _, ok := KindOf(p); ok {
			t.Errorf("KindOf(%q) accepted", p)
		}
	}
}

func writeWAV(t *testing.T, path string, sampleRate, seconds int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, sampleRate*seconds),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProbeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, 16000, 2)

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Kind != Audio {
		t.Errorf("Kind = %q", info.Kind)
	}
	if info.SampleRate != 16000 || info.Channels != 1 {
		t.Errorf("SampleRate/Channels = %d/%d", info.SampleRate, info.Channels)
	}
	// the RIFF size includes the header, so allow a few milliseconds over
	if info.Duration < 2*time.Second || info.Duration > 2*time.Second+10*time.Millisecond {
		t.Errorf("Duration = %v, want about 2s", info.Duration)
	}
	if info.Size <= 0 {
		t.Errorf("Size = %d", info.Size)
	}
}

func TestProbeNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("ID3 not really"), 0644); err != nil {
		t.Fatal(err)
	}

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Duration != 0 || info.Size != 14 {
		t.Errorf("info = %+v", info)
	}
}

func TestProbeBrokenWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Duration != 0 {
		t.Errorf("Duration = %v, want 0 for unreadable header", info.Duration)
	}
}

func TestProbeErrors(t *testing.T) {
	if _, err := Probe("photo.jpg"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := Probe(filepath.Join(t.TempDir(), "missing.wav")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
