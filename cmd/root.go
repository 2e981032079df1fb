package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "shortforge",
	Short: "Generate and publish short-form video content",
	Long: `Shortforge discovers trending topics, writes narrated scripts,
assembles vertical captioned videos from stock footage, and uploads
them to YouTube on a daily schedule.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogger()
	}
}

func Execute() error {
	return rootCmd.Execute()
}

func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
