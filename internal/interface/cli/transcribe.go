package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/cbroglie/mustache"
	"github.com/dustin/go-humanize"
	"github.com/neilberkman/whispapi/internal/core/config"
	"github.com/neilberkman/whispapi/internal/core/db"
	"github.com/neilberkman/whispapi/internal/core/media"
	"github.com/neilberkman/whispapi/internal/core/spinner"
	"github.com/neilberkman/whispapi/internal/core/transcribe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runTranscribe(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return errUsage
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer func() { _ = logger.Sync() }()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	client, err := transcribe.NewClient(cfg.Endpoint, cfg.Timeout, logger.Logger)
	if err != nil {
		return err
	}

	opts := []transcribe.Option{
		transcribe.WithLogger(logger),
		transcribe.WithIndicator(newIndicator(cfg, out)),
	}

	if cfg.History {
		database, err := db.New(dbPath)
		if err != nil {
			logger.Warn("history disabled", zap.String("db", dbPath), zap.Error(err))
		} else {
			defer func() { _ = database.Close() }()
			opts = append(opts, transcribe.WithRecorder(database))
		}
	}

	svc := transcribe.NewService(client, opts...)

	if !quiet {
		fmt.Fprintln(out, statusLine(out, "Whispering... please wait, this can take some time..."))
	}

	res, err := svc.Transcribe(cmd.Context(), transcribe.Request{
		FilePath: args[0],
		Format:   cfg.Format,
		Language: cfg.Language,
	})
	if err != nil {
		fmt.Fprintln(errOut, failureLine(errOut, "Transcription failed: "+err.Error()))
		if payload := transcribe.Payload(err); payload != "" {
			fmt.Fprintf(errOut, "Response data: %s\n", payload)
		}
		return errReported
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, res.Text)
	fmt.Fprintln(out, successLine(out, "Transcription saved to "+res.OutputPath))

	if copyOut {
		if err := clipboard.WriteAll(res.Text); err != nil {
			logger.Warn("failed to copy transcript to clipboard", zap.Error(err))
		} else if !quiet {
			fmt.Fprintln(out, statusLine(out, "Copied to clipboard"))
		}
	}

	logger.Debug("transcription finished",
		zap.String("id", res.ID),
		zap.Duration("elapsed", res.Elapsed))

	return nil
}

// newIndicator builds the cycling spinner shown while the upload runs.
func newIndicator(cfg *config.Config, out io.Writer) func(transcribe.Request, *media.Info) transcribe.Indicator {
	factory := spinner.NewFactory()
	for _, p := range cfg.Patterns {
		factory.Register(spinner.Pattern{Name: p.Name, Frames: p.Frames, Speed: p.Speed})
	}

	sel := selectorFor(cfg.Spinner)
	interval := cfg.Speed
	if interval <= 0 {
		if p, ok := factory.Patterns.Lookup(cfg.Spinner); ok {
			interval = p.Speed
		}
	}

	return func(req transcribe.Request, info *media.Info) transcribe.Indicator {
		var renderer spinner.Renderer
		if cfg.Color {
			renderer = spinner.StyledRenderer{Style: spinnerStyle}
		}
		return factory.New(spinner.Options{
			Spinner:  sel,
			Speed:    interval,
			Message:  spinnerMessage(cfg.MessageTemplate, req, info),
			Output:   out,
			Renderer: renderer,
		})
	}
}

// selectorFor maps a --spinner value to a pattern: numbers index the table,
// anything else is a name.
func selectorFor(s string) spinner.Selector {
	if n, err := strconv.Atoi(s); err == nil {
		return spinner.Index(n)
	}
	return spinner.Named(s)
}

func spinnerMessage(tmpl string, req transcribe.Request, info *media.Info) string {
	name := filepath.Base(req.FilePath)
	data := map[string]interface{}{
		"name":     name,
		"path":     req.FilePath,
		"format":   req.Format,
		"language": req.Language,
	}
	if info != nil {
		data["size"] = humanize.Bytes(uint64(info.Size))
		data["kind"] = string(info.Kind)
		if info.Duration > 0 {
			data["duration"] = info.Duration.Round(time.Second).String()
		}
	}

	msg, err := mustache.Render(tmpl, data)
	if err != nil || strings.TrimSpace(msg) == "" {
		return fmt.Sprintf("Whispering %s...", name)
	}
	return msg
}
