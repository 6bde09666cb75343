// Package cmd implements the slogsnap command-line interface.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "slogsnap",
	Short: "Snapshot-friendly slog capture",
	Long: `Slogsnap captures structured log output into a memory buffer and
renders it as a byte-stable string for snapshot assertions in tests.

The library is the product; this command exists to exercise it outside
of "go test" and to preview how captured records render.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("level", "debug",
		"most verbose severity to capture (trace|debug|info|warn|error)")
	_ = viper.BindPFlag("level", rootCmd.PersistentFlags().Lookup("level"))

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SLOGSNAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}
