package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"shortforge/internal/api"
	"shortforge/internal/app"
	"shortforge/internal/scheduler"
	"shortforge/pkg/config"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily generation schedule",
	Long: `Run continuously, generating and uploading videos at randomized
times inside the configured daily windows. Failed uploads are retried
before each new generation.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	result, err := app.BuildService(ctx, cfg, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = result.Store.Close() }()

	runner := app.NewRunner(result.Service, slog.Default())
	go runner.Run(ctx)

	sched, err := scheduler.New(runner, cfg.Schedule.VideosPerDay, slog.Default())
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	slog.Info("Schedule started",
		"videos_per_day", cfg.Schedule.VideosPerDay,
		"times", sched.Entries(),
	)

	if cfg.API.Enabled {
		server := api.NewServer(api.ServerOptions{
			DB:         result.Store,
			Uploads:    result.Store,
			Retrier:    result.Service,
			Trigger:    runner,
			MaxRetries: cfg.YouTube.MaxRetries,
		})
		go func() {
			if err := server.Run(ctx, cfg.API.Addr); err != nil {
				slog.Error("API server stopped", "error", err)
			}
		}()
		slog.Info("API server listening", "addr", cfg.API.Addr)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		slog.Info("Shutting down...")
		return nil
	case <-ctx.Done():
		return nil
	}
}
