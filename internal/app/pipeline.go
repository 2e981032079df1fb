package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"shortforge/internal/media"
	"shortforge/internal/plan"
	"shortforge/internal/speech"
	"shortforge/internal/store"
	"shortforge/internal/upload"
	"shortforge/internal/video"
)

// GenerateOne runs the full pipeline for a single video. An empty topic
// means discover one. The returned record reflects the final state,
// including a failed upload that a later run can resume.
func (s *Service) GenerateOne(ctx context.Context, topic string) (*store.Video, error) {
	trendScore := 0.0
	if topic == "" {
		cand := s.topics.Next(ctx)
		topic = cand.Topic
		trendScore = cand.Score
		s.logger.Info("topic selected", "topic", topic, "source", cand.Source, "score", cand.Score)
	}

	pkg := s.content.Generate(ctx, topic)

	if err := os.MkdirAll(s.cfg.Video.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	narrationPath := fmt.Sprintf("%s/narration_%d.mp3", s.cfg.Video.TempDir, time.Now().UnixNano())
	track, err := s.narrator.Synthesize(ctx, pkg.Script, speech.VoiceProfile{
		Style: s.cfg.Content.VoiceStyle,
	}, narrationPath)
	if err != nil {
		return nil, fmt.Errorf("narration: %w", err)
	}
	defer func() { _ = os.Remove(narrationPath) }()

	if min, max := float64(s.cfg.Video.MinDuration), float64(s.cfg.Video.MaxDuration); track.Duration < min || (max > 0 && track.Duration > max) {
		s.logger.Warn("narration outside the configured duration bounds",
			"duration", track.Duration,
			"min", min,
			"max", max)
	}

	segments := plan.Plan(pkg.Script, track.Duration)
	s.logger.Info("narration ready",
		"duration", track.Duration,
		"backend", track.Backend,
		"segments", len(segments))

	assets := s.fetcher.Fetch(ctx, pkg.Keywords, len(segments), media.KindVideo)
	s.logger.Info("stock media fetched", "requested", len(segments), "got", len(assets))

	clips := make([]video.Clip, 0, len(segments))
	for i, seg := range segments {
		var asset *media.Asset
		if i < len(assets) {
			asset = &assets[i]
		}
		clips = append(clips, s.renderer.RenderSegment(ctx, seg, asset))
	}

	musicPath := s.selectMusic(ctx)

	outputPath, err := s.assembler.Assemble(ctx, video.AssembleRequest{
		Clips:     clips,
		Narration: track,
		Segments:  segments,
		MusicPath: musicPath,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	s.cleanClips(clips)

	rec := &store.Video{
		VideoID:     uuid.NewString(),
		Title:       pkg.Title,
		Description: pkg.Description,
		Topic:       topic,
		TrendScore:  trendScore,
		Status:      store.StatusCreated,
		FilePath:    outputPath,
	}
	if err := s.library.CreateVideo(rec); err != nil {
		return nil, fmt.Errorf("persist video record: %w", err)
	}
	s.bumpStats(1, 0)
	s.logger.Info("video created", "video_id", rec.VideoID, "path", outputPath)

	if s.uploader == nil {
		return rec, nil
	}

	url, err := s.uploader.Upload(ctx, rec)
	if err != nil {
		// The record stays in upload_failed; a later run resumes it.
		// Credential and quota errors need the operator or the next
		// quota window, not another attempt right now.
		switch {
		case errors.Is(err, upload.ErrCredentialsExpired):
			s.logger.Error("upload credentials expired, manual renewal required",
				"video_id", rec.VideoID)
		case errors.Is(err, upload.ErrQuotaExceeded):
			s.logger.Warn("upload quota exceeded, deferred to next run",
				"video_id", rec.VideoID)
		default:
			s.logger.Error("upload failed", "video_id", rec.VideoID, "error", err)
		}
		return s.reload(rec), err
	}

	s.bumpStats(0, 1)
	s.logger.Info("video uploaded", "video_id", rec.VideoID, "url", url)
	return s.reload(rec), nil
}

// GenerateBatch produces count videos back to back. One failed video
// does not stop the batch.
func (s *Service) GenerateBatch(ctx context.Context, count int) error {
	var lastErr error
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.GenerateOne(ctx, ""); err != nil {
			lastErr = err
			s.logger.Error("batch item failed", "index", i, "error", err)
			if errors.Is(err, upload.ErrQuotaExceeded) || errors.Is(err, upload.ErrCredentialsExpired) {
				// More uploads this run would fail the same way.
				return err
			}
		}
	}
	return lastErr
}

// RetryFailedUploads resumes every record stuck in upload_failed that
// still has retry budget and a file on disk.
func (s *Service) RetryFailedUploads(ctx context.Context) error {
	records, err := s.library.FailedUploads(s.cfg.YouTube.MaxRetries)
	if err != nil {
		return fmt.Errorf("list failed uploads: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	s.logger.Info("resuming failed uploads", "count", len(records))

	for i := range records {
		rec := &records[i]
		if _, statErr := os.Stat(rec.FilePath); statErr != nil {
			s.logger.Warn("skipping upload, file missing",
				"video_id", rec.VideoID,
				"path", rec.FilePath)
			continue
		}
		if _, err := s.uploader.Upload(ctx, rec); err != nil {
			if errors.Is(err, upload.ErrQuotaExceeded) || errors.Is(err, upload.ErrCredentialsExpired) {
				return err
			}
			s.logger.Error("retry upload failed", "video_id", rec.VideoID, "error", err)
			continue
		}
		s.bumpStats(0, 1)
	}
	return nil
}

// RetryUpload retries a single record by its public id.
func (s *Service) RetryUpload(ctx context.Context, videoID string) error {
	rec, err := s.library.VideoByID(videoID)
	if err != nil {
		return err
	}
	if rec.Status == store.StatusUploaded {
		return nil
	}
	if _, err := s.uploader.Upload(ctx, rec); err != nil {
		return err
	}
	s.bumpStats(0, 1)
	return nil
}

func (s *Service) selectMusic(ctx context.Context) string {
	if s.music == nil || !s.cfg.Music.Enabled {
		return ""
	}
	track, err := s.music.RandomMusicTrack(ctx)
	if err != nil {
		s.logger.Warn("music selection failed, continuing without music", "error", err)
		return ""
	}
	return track
}

func (s *Service) cleanClips(clips []video.Clip) {
	for _, clip := range clips {
		if clip.Path != "" {
			_ = os.Remove(clip.Path)
		}
	}
}

func (s *Service) bumpStats(created, uploaded int) {
	date := time.Now().UTC().Format("2006-01-02")
	if err := s.library.BumpDailyStats(date, created, uploaded); err != nil {
		s.logger.Warn("could not bump daily stats", "error", err)
	}
}

func (s *Service) reload(rec *store.Video) *store.Video {
	fresh, err := s.library.VideoByID(rec.VideoID)
	if err != nil {
		return rec
	}
	return fresh
}
