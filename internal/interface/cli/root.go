package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/neilberkman/whispapi/internal/core/config"
	"github.com/neilberkman/whispapi/internal/core/logging"
	"github.com/spf13/cobra"
)

const usageLine = "Usage: whispapi <file_path> [-f format] [-l language]"

var (
	errUsage = errors.New(usageLine)

	// errReported means the command already printed its failure.
	errReported = errors.New("already reported")
)

var (
	configPath  string
	dbPath      string
	verbose     bool
	quiet       bool
	versionInfo string

	format    string
	language  string
	endpoint  string
	spinnerID string
	speed     time.Duration
	copyOut   bool
	noHistory bool
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "whispapi <file_path>",
	Short: "Transcribe audio and video files with a whisper ASR service",
	Long: `whispapi - send an audio or video file to a whisper ASR webservice and
save the transcript next to it.

Examples:
  whispapi interview.mp3
  whispapi lecture.mp4 -f srt -l de
  whispapi memo.m4a --copy`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			return errUsage
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTranscribe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "History database path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors and skip status lines")

	rootCmd.Flags().StringVarP(&format, "format", "f", "", "Output format: txt, json, srt or vtt (default from config: txt)")
	rootCmd.Flags().StringVarP(&language, "language", "l", "", "Spoken language code (default from config: en)")
	rootCmd.Flags().StringVar(&endpoint, "endpoint", "", "Transcription service URL")
	rootCmd.Flags().StringVar(&spinnerID, "spinner", "", "Spinner name or index (see 'whispapi spinners')")
	rootCmd.Flags().DurationVar(&speed, "speed", 0, "Spinner frame interval, e.g. 120ms")
	rootCmd.Flags().BoolVarP(&copyOut, "copy", "c", false, "Copy the transcript to the clipboard")
	rootCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this transcription in the history")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if cmd != rootCmd {
			return err
		}
		return fmt.Errorf("%v\n%s", err, usageLine)
	})
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Lookup("format") != nil && flags.Changed("format") {
		cfg.Format = strings.ToLower(format)
	}
	if flags.Lookup("language") != nil && flags.Changed("language") {
		cfg.Language = strings.ToLower(language)
	}
	if flags.Lookup("endpoint") != nil && flags.Changed("endpoint") {
		cfg.Endpoint = endpoint
	}
	if flags.Lookup("spinner") != nil && flags.Changed("spinner") {
		cfg.Spinner = spinnerID
	}
	if flags.Lookup("speed") != nil && flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Lookup("no-history") != nil && noHistory {
		cfg.History = false
	}

	return cfg, nil
}

func newLogger(cmd *cobra.Command) *logging.Logger {
	return logging.New(cmd.ErrOrStderr(), verbose, quiet)
}
