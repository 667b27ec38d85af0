package cli

import (
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/neilberkman/whispapi/internal/core/db"
	"github.com/spf13/cobra"
)

var (
	showInfo bool
	showCopy bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored transcript",
	Long: `Print the transcript of a past transcription. Any unique prefix of the
id shown by 'whispapi history' works.

Examples:
  whispapi show 5f0c2a9e
  whispapi show 5f0c --info
  whispapi show 5f0c --copy`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showInfo, "info", false, "Print details before the transcript")
	showCmd.Flags().BoolVarP(&showCopy, "copy", "c", false, "Copy the transcript to the clipboard")
}

func runShow(cmd *cobra.Command, args []string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	t, err := database.GetTranscription(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if showInfo {
		fmt.Fprintln(out, headerStyle.Render(filepath.Base(t.SourcePath)))
		fmt.Fprintf(out, "ID:        %s\n", t.ID)
		fmt.Fprintf(out, "Source:    %s\n", t.SourcePath)
		if t.OutputPath != "" {
			fmt.Fprintf(out, "Output:    %s\n", t.OutputPath)
		}
		fmt.Fprintf(out, "Format:    %s\n", t.Format)
		fmt.Fprintf(out, "Language:  %s\n", t.Language)
		fmt.Fprintf(out, "Size:      %s\n", humanize.Bytes(uint64(t.FileSize)))
		if t.MediaDuration > 0 {
			fmt.Fprintf(out, "Duration:  %s\n", t.MediaDuration)
		}
		fmt.Fprintf(out, "Elapsed:   %s\n", t.Elapsed)
		fmt.Fprintf(out, "Status:    %s\n", t.Status)
		if t.Error != "" {
			fmt.Fprintf(out, "Error:     %s\n", t.Error)
		}
		fmt.Fprintf(out, "Created:   %s (%s)\n", t.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM"), humanize.Time(t.CreatedAt))
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, t.Transcript)

	if showCopy {
		if err := clipboard.WriteAll(t.Transcript); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
	}
	return nil
}
