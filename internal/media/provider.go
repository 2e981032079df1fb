// Package media fetches keyword-matched stock photos and videos from
// pluggable providers and pools them into a de-duplicated candidate
// list.
package media

import "context"

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Asset is one remote stock item. LocalPath stays empty until the
// compositor downloads it; cached files live in the run's work
// directory and are never shared across runs.
type Asset struct {
	Provider  string
	ID        string
	URL       string
	Kind      Kind
	Width     int
	Height    int
	Duration  float64
	LocalPath string
}

// Provider is one stock-media backend. Implementations return an
// empty slice for "no results" and an error only for transport
// failure.
type Provider interface {
	Name() string
	SearchImages(ctx context.Context, query string, perPage int) ([]Asset, error)
	SearchVideos(ctx context.Context, query string, perPage int) ([]Asset, error)
}
