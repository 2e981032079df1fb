package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// maxErrorLength bounds last_error so provider stack traces cannot
// bloat the row.
const maxErrorLength = 500

var ErrNotFound = errors.New("record not found")

// CreateVideo inserts a new video record.
func (s *Store) CreateVideo(v *Video) error {
	if err := s.db.Create(v).Error; err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

// VideoByID looks up a video by its public video id.
func (s *Store) VideoByID(videoID string) (*Video, error) {
	var v Video
	err := s.db.Where("video_id = ?", videoID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find video %s: %w", videoID, err)
	}
	return &v, nil
}

// MarkUploaded records a successful upload.
func (s *Store) MarkUploaded(videoID, remoteURL string) error {
	now := time.Now().UTC()
	result := s.db.Model(&Video{}).
		Where("video_id = ?", videoID).
		Updates(map[string]any{
			"status":      StatusUploaded,
			"remote_url":  remoteURL,
			"uploaded_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("mark uploaded: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkUploadFailed records a failed attempt: status flips to
// upload_failed, retry_count increments and last_error is overwritten
// with the newest classification message, truncated.
func (s *Store) MarkUploadFailed(videoID, message string) error {
	now := time.Now().UTC()
	result := s.db.Model(&Video{}).
		Where("video_id = ?", videoID).
		Updates(map[string]any{
			"status":        StatusUploadFailed,
			"last_error":    Truncate(message, maxErrorLength),
			"retry_count":   gorm.Expr("retry_count + 1"),
			"last_retry_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("mark upload failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FailedUploads returns videos with a rendered file that still need
// uploading and have retries left, oldest first.
func (s *Store) FailedUploads(maxRetries int) ([]Video, error) {
	var videos []Video
	err := s.db.
		Where("status = ? OR (status != ? AND remote_url = '')", StatusUploadFailed, StatusUploaded).
		Where("retry_count < ?", maxRetries).
		Where("file_path != ''").
		Order("created_at ASC").
		Find(&videos).Error
	if err != nil {
		return nil, fmt.Errorf("list failed uploads: %w", err)
	}
	return videos, nil
}

// Truncate bounds a message to n bytes.
func Truncate(message string, n int) string {
	if len(message) <= n {
		return message
	}
	return message[:n]
}
