package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Video status constants.
const (
	StatusPending      = "pending"       // Record exists, render not finished
	StatusCreated      = "created"       // Rendered to disk, not yet uploaded
	StatusUploaded     = "uploaded"      // Live on the platform
	StatusUploadFailed = "upload_failed" // Last upload attempt failed
)

// Video is one generated short and its upload lifecycle.
type Video struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	VideoID     string     `json:"video_id" gorm:"uniqueIndex;not null"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Topic       string     `json:"topic" gorm:"index"`
	TrendScore  float64    `json:"trend_score"`
	CreatedAt   time.Time  `json:"created_at"`
	UploadedAt  *time.Time `json:"uploaded_at,omitempty"`
	RemoteURL   string     `json:"remote_url"`
	Views       int64      `json:"views" gorm:"default:0"`
	Likes       int64      `json:"likes" gorm:"default:0"`
	Status      string     `json:"status" gorm:"default:pending;size:20;index"`
	FilePath    string     `json:"file_path"`
	LastError   string     `json:"last_error" gorm:"size:500"`
	RetryCount  int        `json:"retry_count" gorm:"default:0"`
	LastRetryAt *time.Time `json:"last_retry_at,omitempty"`
}

func (Video) TableName() string {
	return "videos"
}

// BeforeCreate assigns a video id when the caller did not.
func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.VideoID == "" {
		v.VideoID = uuid.New().String()
	}
	return nil
}

// Trend is a discovered topic candidate.
type Trend struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Topic        string    `json:"topic" gorm:"not null"`
	Source       string    `json:"source"`
	Score        float64   `json:"score" gorm:"index"`
	Metadata     string    `json:"metadata"` // JSON blob, opaque to the store
	DiscoveredAt time.Time `json:"discovered_at" gorm:"autoCreateTime"`
	Used         bool      `json:"used" gorm:"default:false;index"`
}

func (Trend) TableName() string {
	return "trends"
}

// DailyStat aggregates one calendar day of activity.
type DailyStat struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	Date           string `json:"date" gorm:"uniqueIndex;size:10"` // YYYY-MM-DD
	VideosCreated  int    `json:"videos_created" gorm:"default:0"`
	VideosUploaded int    `json:"videos_uploaded" gorm:"default:0"`
	TotalViews     int64  `json:"total_views" gorm:"default:0"`
	TotalLikes     int64  `json:"total_likes" gorm:"default:0"`
	ReportSent     bool   `json:"report_sent" gorm:"default:false"`
}

func (DailyStat) TableName() string {
	return "daily_stats"
}
