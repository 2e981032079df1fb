package media

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type stubProvider struct {
	name   string
	assets map[string][]Asset
	images map[string][]Asset
	err    error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) SearchImages(_ context.Context, query string, _ int) ([]Asset, error) {
	if s.images != nil {
		return s.images[query], s.err
	}
	return s.assets[query], s.err
}

func (s *stubProvider) SearchVideos(_ context.Context, query string, _ int) ([]Asset, error) {
	return s.assets[query], s.err
}

func asset(provider, url string) Asset {
	return Asset{Provider: provider, ID: url, URL: url, Kind: KindVideo}
}

func imageAsset(provider, url string) Asset {
	return Asset{Provider: provider, ID: url, URL: url, Kind: KindImage}
}

func TestFetchDeduplicatesAcrossProviders(t *testing.T) {
	first := &stubProvider{
		name: "first",
		assets: map[string][]Asset{
			"ocean": {asset("first", "https://cdn/a.mp4"), asset("first", "https://cdn/b.mp4")},
		},
	}
	second := &stubProvider{
		name: "second",
		assets: map[string][]Asset{
			"ocean": {asset("second", "https://cdn/a.mp4"), asset("second", "https://cdn/c.mp4")},
		},
	}

	fetcher := NewFetcher([]Provider{first, second}, nil)
	got := fetcher.Fetch(context.Background(), []string{"ocean"}, 10, KindVideo)

	if len(got) != 3 {
		t.Fatalf("expected 3 unique assets, got %d", len(got))
	}
	seen := make(map[string]bool)
	for _, a := range got {
		if seen[a.URL] {
			t.Fatalf("duplicate URL %s in result", a.URL)
		}
		seen[a.URL] = true
	}
}

func TestFetchRespectsCount(t *testing.T) {
	assets := make([]Asset, 20)
	for i := range assets {
		assets[i] = asset("big", fmt.Sprintf("https://cdn/%d.mp4", i))
	}
	provider := &stubProvider{name: "big", assets: map[string][]Asset{"city": assets}}

	fetcher := NewFetcher([]Provider{provider}, nil)
	got := fetcher.Fetch(context.Background(), []string{"city"}, 5, KindVideo)

	if len(got) != 5 {
		t.Fatalf("expected 5 assets, got %d", len(got))
	}
}

func TestFetchKeywordPriority(t *testing.T) {
	provider := &stubProvider{
		name: "p",
		assets: map[string][]Asset{
			"primary":  {asset("p", "https://cdn/primary.mp4")},
			"fallback": {asset("p", "https://cdn/fallback.mp4")},
		},
	}

	fetcher := NewFetcher([]Provider{provider}, nil)
	got := fetcher.Fetch(context.Background(), []string{"primary", "fallback"}, 2, KindVideo)

	if len(got) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(got))
	}
	if got[0].URL != "https://cdn/primary.mp4" {
		t.Errorf("expected primary keyword result first, got %s", got[0].URL)
	}
}

func TestFetchProviderFailureYieldsPartialResults(t *testing.T) {
	broken := &stubProvider{name: "broken", err: errors.New("connection refused")}
	working := &stubProvider{
		name:   "working",
		assets: map[string][]Asset{"space": {asset("working", "https://cdn/space.mp4")}},
	}

	fetcher := NewFetcher([]Provider{broken, working}, nil)
	got := fetcher.Fetch(context.Background(), []string{"space"}, 3, KindVideo)

	if len(got) != 1 {
		t.Fatalf("expected 1 asset from working provider, got %d", len(got))
	}
}

func TestFetchFallsBackToImagesWhenVideosRunDry(t *testing.T) {
	provider := &stubProvider{
		name:   "p",
		assets: map[string][]Asset{},
		images: map[string][]Asset{
			"reef": {imageAsset("p", "https://cdn/reef1.jpg"), imageAsset("p", "https://cdn/reef2.jpg")},
		},
	}

	fetcher := NewFetcher([]Provider{provider}, nil)
	got := fetcher.Fetch(context.Background(), []string{"reef"}, 2, KindVideo)

	if len(got) != 2 {
		t.Fatalf("expected 2 image assets, got %d", len(got))
	}
	for _, a := range got {
		if a.Kind != KindImage {
			t.Errorf("expected image fallback, got kind %v for %s", a.Kind, a.URL)
		}
	}
}

func TestFetchTopsUpShortVideoResultsWithImages(t *testing.T) {
	provider := &stubProvider{
		name: "p",
		assets: map[string][]Asset{
			"reef": {asset("p", "https://cdn/reef.mp4")},
		},
		images: map[string][]Asset{
			"reef": {imageAsset("p", "https://cdn/reef1.jpg"), imageAsset("p", "https://cdn/reef2.jpg")},
		},
	}

	fetcher := NewFetcher([]Provider{provider}, nil)
	got := fetcher.Fetch(context.Background(), []string{"reef"}, 3, KindVideo)

	if len(got) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(got))
	}
	if got[0].Kind != KindVideo {
		t.Errorf("videos keep priority over the image top-up, got %v first", got[0].Kind)
	}
	if got[1].Kind != KindImage || got[2].Kind != KindImage {
		t.Error("remaining slots should be filled with images")
	}
}

func TestFetchEmptyInputs(t *testing.T) {
	provider := &stubProvider{name: "p"}
	fetcher := NewFetcher([]Provider{provider}, nil)

	tests := []struct {
		name     string
		keywords []string
		count    int
	}{
		{name: "no keywords", keywords: nil, count: 5},
		{name: "zero count", keywords: []string{"x"}, count: 0},
		{name: "no results", keywords: []string{"unknown"}, count: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fetcher.Fetch(context.Background(), tt.keywords, tt.count, KindVideo); len(got) != 0 {
				t.Errorf("expected no assets, got %d", len(got))
			}
		})
	}
}
