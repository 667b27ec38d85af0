package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neilberkman/whispapi/internal/core/spinner"
	"github.com/spf13/cobra"
)

var (
	spinnersPreview  string
	spinnersDuration time.Duration
)

var spinnersCmd = &cobra.Command{
	Use:   "spinners",
	Short: "List spinner patterns",
	Long: `List the spinner patterns available to --spinner, including any defined
under [[spinners]] in the config file.

With --preview the named pattern is animated, followed by demos of the typed
text and loading bar modes.

Examples:
  whispapi spinners
  whispapi spinners --preview moon
  whispapi spinners --preview 3 --duration 5s`,
	RunE: runSpinners,
}

func init() {
	rootCmd.AddCommand(spinnersCmd)
	spinnersCmd.Flags().StringVar(&spinnersPreview, "preview", "", "Animate this pattern (name or index)")
	spinnersCmd.Flags().DurationVar(&spinnersDuration, "duration", 3*time.Second, "How long to animate the preview")
}

func runSpinners(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	factory := spinner.NewFactory()
	for _, p := range cfg.Patterns {
		factory.Register(spinner.Pattern{Name: p.Name, Frames: p.Frames, Speed: p.Speed})
	}

	out := cmd.OutOrStdout()

	if spinnersPreview == "" {
		for i, p := range factory.Patterns {
			marker := " "
			if p.Name == cfg.Spinner {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %2d  %-12s %6s  %s\n", marker, i, p.Name, p.Speed, strings.Join(p.Frames, " "))
		}
		return nil
	}

	if !spinner.IsTerminal(out) {
		return fmt.Errorf("--preview needs an interactive terminal")
	}

	ctx := cmd.Context()
	sel := selectorFor(spinnersPreview)
	interval := cfg.Speed
	if p, ok := factory.Patterns.Lookup(spinnersPreview); ok && p.Speed > 0 {
		interval = p.Speed
	}

	var renderer spinner.Renderer
	if cfg.Color {
		renderer = spinner.StyledRenderer{Style: spinnerStyle}
	}

	if n, ok := sel.(spinner.Named); !ok || n != spinner.LoadingBarName {
		s := factory.New(spinner.Options{
			Spinner:  sel,
			Speed:    interval,
			Message:  fmt.Sprintf("previewing %s", spinnersPreview),
			Output:   out,
			Renderer: renderer,
		})
		if err := s.Start(ctx); err != nil {
			return err
		}
		select {
		case <-time.After(spinnersDuration):
		case <-ctx.Done():
		}
		if err := s.Stop(true); err != nil {
			return err
		}
	}

	text := factory.New(spinner.Options{
		Spinner: sel,
		Speed:   50 * time.Millisecond,
		Text:    "Whispering... please wait, this can take some time...",
		Output:  out,
	})
	if err := text.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	bar := factory.New(spinner.Options{
		Spinner: spinner.Named(spinner.LoadingBarName),
		Speed:   spinnersDuration / spinner.DefaultSteps,
		Output:  out,
	})
	if err := bar.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
