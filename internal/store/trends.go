package store

import (
	"encoding/json"
	"fmt"
)

// AddTrend records a discovered topic candidate and returns its id so
// the caller can consume it. Metadata is stored as JSON and
// round-trips through UnusedTrends.
func (s *Store) AddTrend(topic, source string, score float64, metadata map[string]string) (uint, error) {
	var blob string
	if len(metadata) > 0 {
		data, err := json.Marshal(metadata)
		if err != nil {
			return 0, fmt.Errorf("marshal trend metadata: %w", err)
		}
		blob = string(data)
	}

	trend := Trend{Topic: topic, Source: source, Score: score, Metadata: blob}
	if err := s.db.Create(&trend).Error; err != nil {
		return 0, fmt.Errorf("add trend: %w", err)
	}
	return trend.ID, nil
}

// UnusedTrends returns unconsumed trends, highest score first.
func (s *Store) UnusedTrends(limit int) ([]Trend, error) {
	var trends []Trend
	err := s.db.
		Where("used = ?", false).
		Order("score DESC").
		Limit(limit).
		Find(&trends).Error
	if err != nil {
		return nil, fmt.Errorf("list unused trends: %w", err)
	}
	return trends, nil
}

// MarkTrendUsed flags a trend so it is not picked again.
func (s *Store) MarkTrendUsed(id uint) error {
	if err := s.db.Model(&Trend{}).Where("id = ?", id).Update("used", true).Error; err != nil {
		return fmt.Errorf("mark trend used: %w", err)
	}
	return nil
}
