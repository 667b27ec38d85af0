package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/neilberkman/whispapi/internal/core/db"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	Long: `Display statistics about recorded transcriptions.

Shows attempt counts, data sent, timing, formats and storage info.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	stats, err := database.GetStats()
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "History Statistics")
	fmt.Fprintln(out, "==================")
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Transcriptions:    %d\n", stats.Total)
	fmt.Fprintf(out, "  Completed:       %d\n", stats.Completed)
	fmt.Fprintf(out, "  Failed:          %d\n", stats.Failed)
	fmt.Fprintf(out, "Data Uploaded:     %s\n", humanize.Bytes(uint64(stats.TotalBytes)))
	if stats.TotalMedia > 0 {
		fmt.Fprintf(out, "Audio Measured:    %s\n", stats.TotalMedia)
	}
	fmt.Fprintln(out)

	if stats.Total > 0 {
		if stats.Completed > 0 {
			fmt.Fprintf(out, "Average Wait:      %s\n", stats.AvgElapsed)
		}
		if !stats.Oldest.IsZero() {
			fmt.Fprintf(out, "Oldest:            %s\n", stats.Oldest.Local().Format("Jan 2, 2006 3:04 PM"))
		}
		if !stats.Newest.IsZero() {
			fmt.Fprintf(out, "Newest:            %s\n", stats.Newest.Local().Format("Jan 2, 2006 3:04 PM"))
		}
		fmt.Fprintln(out)

		formats := make([]string, 0, len(stats.ByFormat))
		for f := range stats.ByFormat {
			formats = append(formats, f)
		}
		sort.Strings(formats)
		fmt.Fprintln(out, "By Format:")
		for _, f := range formats {
			fmt.Fprintf(out, "  %-5s %d\n", f, stats.ByFormat[f])
		}
		fmt.Fprintln(out)

		if stats.TopLanguage != "" {
			fmt.Fprintf(out, "Top Language:      %s (%d)\n", stats.TopLanguage, stats.TopLanguageN)
			fmt.Fprintln(out)
		}
	}

	fileInfo, err := os.Stat(dbPath)
	if err != nil {
		return fmt.Errorf("failed to stat database file: %w", err)
	}

	fmt.Fprintf(out, "Database Location: %s\n", dbPath)
	fmt.Fprintf(out, "Database Size:     %s\n", humanize.Bytes(uint64(fileInfo.Size())))

	return nil
}
