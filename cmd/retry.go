package cmd

import (
	"log/slog"

	"shortforge/internal/app"
	"shortforge/pkg/config"

	"github.com/spf13/cobra"
)

var retryCmd = &cobra.Command{
	Use:   "retry [video-id]",
	Short: "Retry failed uploads",
	Long: `Retry uploading videos stuck in upload_failed. Without an argument
every retryable record is attempted, with an argument only that video.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRetry,
}

func init() {
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		if err := result.Service.RetryUpload(ctx, args[0]); err != nil {
			return err
		}
		slog.Info("Upload complete", "video_id", args[0])
		return nil
	}

	return result.Service.RetryFailedUploads(ctx)
}
