package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/neilberkman/whispapi/internal/core/db"
	"github.com/neilberkman/whispapi/internal/core/history"
	"github.com/spf13/cobra"
)

var (
	historySince  string
	historyFormat string
	historyLang   string
	historyStatus string
	historyLimit  int
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history [search terms]",
	Short: "List past transcriptions",
	Long: `List recorded transcriptions, newest first.

Search terms match transcript text. Filters may also be written inline:
format:srt lang:fr status:failed after:yesterday before:2024-12-01

Examples:
  whispapi history
  whispapi history --since "last week"
  whispapi history quarterly earnings --format srt
  whispapi history status:failed --json`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historySince, "since", "", "Only show transcriptions after this date (e.g. yesterday, 3d, 2024-11-01)")
	historyCmd.Flags().StringVar(&historyFormat, "format", "", "Filter by output format")
	historyCmd.Flags().StringVar(&historyLang, "language", "", "Filter by language code")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Filter by status (completed or failed)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of transcriptions to display")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print as JSON")
}

type historyEntry struct {
	ID            string    `json:"id"`
	SourcePath    string    `json:"source_path"`
	OutputPath    string    `json:"output_path,omitempty"`
	Format        string    `json:"format"`
	Language      string    `json:"language"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	FileSize      int64     `json:"file_size"`
	MediaDuration float64   `json:"media_duration_seconds,omitempty"`
	Elapsed       float64   `json:"elapsed_seconds"`
	CreatedAt     time.Time `json:"created_at"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	now := time.Now()
	filter := history.ParseQuery(strings.Join(args, " "), now)

	if historySince != "" {
		since, err := history.ParseSince(historySince, now)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		filter.After = since
	}
	if historyFormat != "" {
		filter.Format = historyFormat
	}
	if historyLang != "" {
		filter.Language = historyLang
	}
	if historyStatus != "" {
		filter.Status = strings.ToLower(historyStatus)
	}
	filter.Limit = historyLimit

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	items, err := database.ListTranscriptions(filter)
	if err != nil {
		return fmt.Errorf("failed to list transcriptions: %w", err)
	}

	out := cmd.OutOrStdout()

	if historyJSON {
		entries := make([]historyEntry, 0, len(items))
		for _, t := range items {
			entries = append(entries, historyEntry{
				ID:            t.ID,
				SourcePath:    t.SourcePath,
				OutputPath:    t.OutputPath,
				Format:        t.Format,
				Language:      t.Language,
				Status:        t.Status,
				Error:         t.Error,
				FileSize:      t.FileSize,
				MediaDuration: t.MediaDuration.Seconds(),
				Elapsed:       t.Elapsed.Seconds(),
				CreatedAt:     t.CreatedAt,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No transcriptions found.")
		return nil
	}

	for _, t := range items {
		status := successLine(out, "✓")
		if t.Status == db.StatusFailed {
			status = failureLine(out, "✗")
		}
		fmt.Fprintf(out, "%s %s  %-4s %-3s %8s  %s  (%s)\n",
			status,
			shortID(t.ID),
			t.Format,
			t.Language,
			humanize.Bytes(uint64(t.FileSize)),
			filepath.Base(t.SourcePath),
			humanize.Time(t.CreatedAt))
	}

	fmt.Fprintf(out, "\n%d transcription(s)\n", len(items))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
