package cmd

import (
	"log/slog"

	"shortforge/internal/app"
	"shortforge/pkg/config"

	"github.com/spf13/cobra"
)

var (
	generateTopic string
	generateCount int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one or more videos",
	Long: `Generate videos immediately. With --topic the given topic is used
directly, otherwise a topic is discovered from Reddit trends.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "Topic for video generation")
	generateCmd.Flags().IntVarP(&generateCount, "count", "c", 1, "Number of videos to generate")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	result, err := app.BuildService(ctx, cfg, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = result.Store.Close() }()

	if generateTopic != "" || generateCount <= 1 {
		rec, err := result.Service.GenerateOne(ctx, generateTopic)
		if err != nil {
			return err
		}
		slog.Info("Video generated",
			"title", rec.Title,
			"path", rec.FilePath,
			"status", rec.Status,
		)
		return nil
	}

	return result.Service.GenerateBatch(ctx, generateCount)
}
