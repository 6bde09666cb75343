package cmd

import (
	"fmt"
	"log/slog"

	"github.com/slogsnap/slogsnap"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Emit sample records through a collector and print the snapshot",
	Long: `Install a collector, emit one sample record at each severity, and
print the rendered snapshot.

The records themselves appear first (teed to stdout with colors, exactly as
they would during a test run), followed by the sanitized snapshot string a
test would assert against.

Examples:
  # Capture everything
  slogsnap demo --level trace

  # Only warnings and errors, no prefix glyph
  slogsnap demo --level warn --no-prefix`,
	RunE: runDemo,
}

var (
	demoPrefix   string
	demoNoPrefix bool
)

func init() {
	demoCmd.Flags().StringVar(&demoPrefix, "prefix", string(slogsnap.DefaultPrefix),
		"prefix glyph for the rendered snapshot")
	demoCmd.Flags().BoolVar(&demoNoPrefix, "no-prefix", false,
		"render without a prefix glyph")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, _ []string) error {
	level, err := slogsnap.ParseLevel(viper.GetString("level"))
	if err != nil {
		return err
	}

	log := slogsnap.Init(level)
	defer log.Close()

	switch {
	case demoNoPrefix:
		log.RemovePrefix()
	default:
		runes := []rune(demoPrefix)
		if len(runes) != 1 {
			return fmt.Errorf("prefix must be a single character, got %q", demoPrefix)
		}
		log.SetPrefix(runes[0])
	}

	slog.Log(cmd.Context(), slogsnap.LevelTrace, "resolving sample fixture")
	slog.Debug("loading sample fixture", "records", 3)
	slog.Info("sample run started")
	slog.Warn("sample quota nearly exhausted", "remaining", 2)
	slog.Error("sample record rejected", "reason", "duplicate id")

	snapshot, err := log.Render()
	if err != nil {
		return fmt.Errorf("rendering snapshot: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "--- rendered snapshot ---")
	fmt.Fprint(cmd.OutOrStdout(), snapshot)
	return nil
}
