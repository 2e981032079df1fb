package upload

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shortforge/internal/store"
)

// Recorder persists upload outcomes.
type Recorder interface {
	MarkUploaded(videoID, remoteURL string) error
	MarkUploadFailed(videoID, message string) error
}

// ProgressFunc gets called once per attempt.
type ProgressFunc func(attempt int, kind Kind, err error)

// Machine drives a video record from created to uploaded, or to a
// failed state the next run can resume from.
type Machine struct {
	provider   Provider
	recorder   Recorder
	maxRetries int
	backoff    time.Duration
	progress   ProgressFunc
	logger     *slog.Logger

	tags          []string
	categoryID    string
	privacyStatus string
}

type MachineOptions struct {
	Provider   Provider
	Recorder   Recorder
	MaxRetries int
	Backoff    time.Duration
	Progress   ProgressFunc
	Logger     *slog.Logger

	// Channel-level defaults applied to every upload.
	Tags          []string
	CategoryID    string
	PrivacyStatus string
}

func NewMachine(opts MachineOptions) *Machine {
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	backoff := opts.Backoff
	if backoff == 0 {
		backoff = 2 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		provider:      opts.Provider,
		recorder:      opts.Recorder,
		maxRetries:    maxRetries,
		backoff:       backoff,
		progress:      opts.Progress,
		logger:        logger,
		tags:          opts.Tags,
		categoryID:    opts.CategoryID,
		privacyStatus: opts.PrivacyStatus,
	}
}

// Upload runs the retry loop for one record. Already-uploaded records
// are a no-op returning the stored URL. An auth failure triggers one
// credential refresh; a second auth failure, or a failed refresh, means
// the credentials need manual renewal and nothing more is attempted
// this run. Quota exhaustion stops immediately so the remaining quota
// budget is not burned on retries.
func (m *Machine) Upload(ctx context.Context, rec *store.Video) (string, error) {
	if rec.Status == store.StatusUploaded && rec.RemoteURL != "" {
		return rec.RemoteURL, nil
	}

	meta := Metadata{
		Title:       rec.Title,
		Description: rec.Description,
	}

	refreshed := false
	permanentTried := false
	delay := m.backoff

	var lastErr error
	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		url, err := m.provider.Upload(ctx, rec.FilePath, m.withDefaults(meta))
		if err == nil {
			if recErr := m.recorder.MarkUploaded(rec.VideoID, url); recErr != nil {
				m.logger.Error("uploaded but could not persist state",
					"video_id", rec.VideoID,
					"error", recErr)
			}
			return url, nil
		}
		lastErr = err

		kind := Classify(err)
		m.report(attempt, kind, err)

		// Each failed upload attempt is recorded exactly once; the
		// credential paths record the wrapped message so last_error
		// carries the renewal marker.
		switch kind {
		case KindAuthExpired:
			if refreshed {
				wrapped := fmt.Errorf("%w: %v", ErrCredentialsExpired, err)
				m.record(rec.VideoID, wrapped)
				return "", wrapped
			}
			refreshed = true
			if refreshErr := m.provider.RefreshCredentials(ctx); refreshErr != nil {
				wrapped := fmt.Errorf("%w: %v", ErrCredentialsExpired, refreshErr)
				m.record(rec.VideoID, wrapped)
				return "", wrapped
			}
			m.record(rec.VideoID, err)
			m.logger.Info("credentials refreshed, retrying upload",
				"video_id", rec.VideoID)
			// The refresh consumed nothing, retry the same attempt.
			attempt--

		case KindQuotaExceeded:
			m.record(rec.VideoID, err)
			return "", fmt.Errorf("%w: %v", ErrQuotaExceeded, err)

		case KindPermanent:
			m.record(rec.VideoID, err)
			if permanentTried {
				return "", fmt.Errorf("upload failed permanently: %w", err)
			}
			permanentTried = true

		case KindTransient:
			m.record(rec.VideoID, err)
			// Backoff below, then loop.
		}

		if attempt < m.maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return "", fmt.Errorf("upload failed after %d attempts: %w", m.maxRetries, lastErr)
}

func (m *Machine) withDefaults(meta Metadata) Metadata {
	if len(meta.Tags) == 0 {
		meta.Tags = m.tags
	}
	meta.PrivacyStatus = m.privacyStatus
	if meta.PrivacyStatus == "" {
		meta.PrivacyStatus = "public"
	}
	meta.CategoryID = m.categoryID
	if meta.CategoryID == "" {
		meta.CategoryID = "22"
	}
	return meta
}

func (m *Machine) report(attempt int, kind Kind, err error) {
	m.logger.Warn("upload attempt failed",
		"attempt", attempt,
		"kind", kind.String(),
		"error", err)
	if m.progress != nil {
		m.progress(attempt, kind, err)
	}
}

func (m *Machine) record(videoID string, err error) {
	if recErr := m.recorder.MarkUploadFailed(videoID, err.Error()); recErr != nil {
		m.logger.Error("could not persist upload failure",
			"video_id", videoID,
			"error", recErr)
	}
}
