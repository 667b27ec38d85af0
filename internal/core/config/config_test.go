package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvEndpoint, EnvFormat, EnvLanguage} {
		t.Setenv(k, "")
	}
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("Endpoint = %q, want %q", cfg.Endpoint, DefaultEndpoint)
	}
	if cfg.Format != "txt" || cfg.Language != "en" {
		t.Errorf("Format/Language = %q/%q, want txt/en", cfg.Format, cfg.Language)
	}
	if cfg.Spinner != "equation" || cfg.Speed != 200*time.Millisecond {
		t.Errorf("Spinner/Speed = %q/%v", cfg.Spinner, cfg.Speed)
	}
	if !cfg.History || !cfg.Color {
		t.Error("History and Color should default to true")
	}
}

func TestLoadFile_TOML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
endpoint = "http://localhost:9000/asr"
format = "SRT"
language = "fr"
timeout = "90s"
spinner = "dots"
speed_ms = 80
message = "Uploading {{name}}"
color = false
history = false

[[spinners]]
name = "stars"
frames = ["✶", "✸", "✹"]
speed_ms = 150

[[spinners]]
name = "broken"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Endpoint != "http://localhost:9000/asr" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Format != "srt" {
		t.Errorf("Format = %q, want lower-cased srt", cfg.Format)
	}
	if cfg.Language != "fr" {
		t.Errorf("Language = %q", cfg.Language)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.Spinner != "dots" || cfg.Speed != 80*time.Millisecond {
		t.Errorf("Spinner/Speed = %q/%v", cfg.Spinner, cfg.Speed)
	}
	if cfg.MessageTemplate != "Uploading {{name}}" {
		t.Errorf("MessageTemplate = %q", cfg.MessageTemplate)
	}
	if cfg.Color || cfg.History {
		t.Error("Color and History should be false")
	}
	if len(cfg.Patterns) != 1 {
		t.Fatalf("Patterns = %d, want 1 (incomplete entries skipped)", len(cfg.Patterns))
	}
	if p := cfg.Patterns[0]; p.Name != "stars" || len(p.Frames) != 3 || p.Speed != 150*time.Millisecond {
		t.Errorf("pattern = %+v", p)
	}
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`endpoint = "http://file/asr"`), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvEndpoint, "http://env/asr")
	t.Setenv(EnvLanguage, "DE")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Endpoint != "http://env/asr" {
		t.Errorf("Endpoint = %q, want env override", cfg.Endpoint)
	}
	if cfg.Language != "de" {
		t.Errorf("Language = %q, want de", cfg.Language)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte(`endpoint = `), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Error("expected parse error")
	}

	badTimeout := filepath.Join(dir, "timeout.toml")
	if err := os.WriteFile(badTimeout, []byte(`timeout = "soon"`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(badTimeout); err == nil {
		t.Error("expected timeout error")
	}
}
