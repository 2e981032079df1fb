package app

import (
	"context"
	"log/slog"
	"sync"
)

// Runner serializes pipeline runs. Triggers arriving while a run is in
// flight collapse into at most one pending run.
type Runner struct {
	service *Service
	trigger chan struct{}
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

func NewRunner(service *Service, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		service: service,
		trigger: make(chan struct{}, 1),
		logger:  logger,
	}
}

// TriggerNow requests a run without blocking. Returns false when a run
// is already queued.
func (r *Runner) TriggerNow() bool {
	select {
	case r.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Busy reports whether a run is currently executing.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Run consumes triggers until the context is done. Each trigger first
// resumes failed uploads, then generates one new video.
func (r *Runner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.trigger:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	r.mu.Lock()
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	if err := r.service.RetryFailedUploads(ctx); err != nil {
		r.logger.Error("failed upload resume stopped early", "error", err)
	}

	if _, err := r.service.GenerateOne(ctx, ""); err != nil {
		r.logger.Error("pipeline run failed", "error", err)
	}
}
