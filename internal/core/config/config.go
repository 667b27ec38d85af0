package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultEndpoint = "http://whispapi/asr"
	DefaultFormat   = "txt"
	DefaultLanguage = "en"
	DefaultSpinner  = "equation"
	DefaultSpeed    = 200 * time.Millisecond
	DefaultMessage  = "Whispering {{{name}}} ({{size}})..."
)

// Environment variables that override the config file.
const (
	EnvEndpoint = "WHISPAPI_ENDPOINT"
	EnvFormat   = "WHISPAPI_FORMAT"
	EnvLanguage = "WHISPAPI_LANGUAGE"
)

type Config struct {
	Endpoint string
	Format   string
	Language string
	Timeout  time.Duration // zero means no client-side timeout

	Spinner         string
	Speed           time.Duration
	MessageTemplate string // mustache; see transcription message data in cli
	Color           bool
	History         bool
	Patterns        []SpinnerPattern
}

// SpinnerPattern is a user-defined spinner from [[spinners]].
type SpinnerPattern struct {
	Name   string
	Frames []string
	Speed  time.Duration
}

type tomlConfig struct {
	Endpoint string        `toml:"endpoint"`
	Format   string        `toml:"format"`
	Language string        `toml:"language"`
	Timeout  string        `toml:"timeout"`
	Spinner  string        `toml:"spinner"`
	SpeedMS  int           `toml:"speed_ms"`
	Message  string        `toml:"message"`
	Color    *bool         `toml:"color"`
	History  *bool         `toml:"history"`
	Spinners []tomlSpinner `toml:"spinners"`
}

type tomlSpinner struct {
	Name    string   `toml:"name"`
	Frames  []string `toml:"frames"`
	SpeedMS int      `toml:"speed_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint:        DefaultEndpoint,
		Format:          DefaultFormat,
		Language:        DefaultLanguage,
		Spinner:         DefaultSpinner,
		Speed:           DefaultSpeed,
		MessageTemplate: DefaultMessage,
		Color:           true,
		History:         true,
	}
}

// Dir returns ~/.config/whispapi, or an empty string when there is no home.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "whispapi")
}

// DefaultPath is the config file location.
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// DefaultDBPath is the history database location.
func DefaultDBPath() string {
	dir := Dir()
	if dir == "" {
		return "history.db"
	}
	return filepath.Join(dir, "history.db")
}

// Load reads ~/.config/whispapi/config.toml and the environment.
func Load() (*Config, error) {
	return LoadFile(DefaultPath())
}

// LoadFile reads config from path (a missing file is not an error), then
// applies .env and environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			var tc tomlConfig
			if _, err := toml.DecodeFile(path, &tc); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
			if err := cfg.apply(tc); err != nil {
				return nil, fmt.Errorf("invalid config %s: %w", path, err)
			}
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLanguage); v != "" {
		cfg.Language = strings.ToLower(v)
	}

	return cfg, nil
}

func (cfg *Config) apply(tc tomlConfig) error {
	if tc.Endpoint != "" {
		cfg.Endpoint = tc.Endpoint
	}
	if tc.Format != "" {
		cfg.Format = strings.ToLower(tc.Format)
	}
	if tc.Language != "" {
		cfg.Language = strings.ToLower(tc.Language)
	}
	if tc.Timeout != "" {
		d, err := time.ParseDuration(tc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if tc.Spinner != "" {
		cfg.Spinner = tc.Spinner
	}
	if tc.SpeedMS > 0 {
		cfg.Speed = time.Duration(tc.SpeedMS) * time.Millisecond
	}
	if tc.Message != "" {
		cfg.MessageTemplate = tc.Message
	}
	if tc.Color != nil {
		cfg.Color = *tc.Color
	}
	if tc.History != nil {
		cfg.History = *tc.History
	}

	for _, s := range tc.Spinners {
		if s.Name == "" || len(s.Frames) == 0 {
			continue
		}
		cfg.Patterns = append(cfg.Patterns, SpinnerPattern{
			Name:   s.Name,
			Frames: s.Frames,
			Speed:  time.Duration(s.SpeedMS) * time.Millisecond,
		})
	}

	return nil
}
