package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BumpDailyStats upserts the day's counters, adding the deltas to any
// existing row.
func (s *Store) BumpDailyStats(date string, created, uploaded int) error {
	stat := DailyStat{
		Date:           date,
		VideosCreated:  created,
		VideosUploaded: uploaded,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"videos_created":  gorm.Expr("videos_created + ?", created),
			"videos_uploaded": gorm.Expr("videos_uploaded + ?", uploaded),
		}),
	}).Create(&stat).Error
	if err != nil {
		return fmt.Errorf("bump daily stats: %w", err)
	}
	return nil
}

// DailyStats returns the row for one date, or ErrNotFound.
func (s *Store) DailyStats(date string) (*DailyStat, error) {
	var stat DailyStat
	err := s.db.Where("date = ?", date).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("daily stats for %s: %w", date, err)
	}
	return &stat, nil
}

// OverallStats summarizes all-time activity.
type OverallStats struct {
	TotalVideos    int64
	UploadedVideos int64
	TotalViews     int64
	TotalLikes     int64
}

func (s *Store) Overall() (*OverallStats, error) {
	var out OverallStats
	if err := s.db.Model(&Video{}).Count(&out.TotalVideos).Error; err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}
	if err := s.db.Model(&Video{}).Where("status = ?", StatusUploaded).Count(&out.UploadedVideos).Error; err != nil {
		return nil, fmt.Errorf("count uploaded: %w", err)
	}
	row := s.db.Model(&Video{}).Select("COALESCE(SUM(views),0), COALESCE(SUM(likes),0)").Row()
	if err := row.Scan(&out.TotalViews, &out.TotalLikes); err != nil {
		return nil, fmt.Errorf("sum views: %w", err)
	}
	return &out, nil
}
