package topics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shortforge/internal/store"
)

type fakeTrendStore struct {
	added  []string
	unused []store.Trend
	used   []uint
	nextID uint
}

func (f *fakeTrendStore) AddTrend(topic, source string, score float64, _ map[string]string) (uint, error) {
	f.added = append(f.added, topic)
	f.nextID++
	f.unused = append(f.unused, store.Trend{ID: f.nextID, Topic: topic, Source: source, Score: score})
	return f.nextID, nil
}

func (f *fakeTrendStore) UnusedTrends(_ int) ([]store.Trend, error) {
	var out []store.Trend
	for _, trend := range f.unused {
		if !f.isUsed(trend.ID) {
			out = append(out, trend)
		}
	}
	return out, nil
}

func (f *fakeTrendStore) MarkTrendUsed(id uint) error {
	f.used = append(f.used, id)
	return nil
}

func (f *fakeTrendStore) isUsed(id uint) bool {
	for _, used := range f.used {
		if used == id {
			return true
		}
	}
	return false
}

func redditServer(t *testing.T, titles map[string]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var children []map[string]any
		for title, score := range titles {
			children = append(children, map[string]any{
				"data": map[string]any{
					"title": title,
					"score": score,
				},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"children": children},
		})
	}))
}

func TestDiscoverScoresAndSorts(t *testing.T) {
	server := redditServer(t, map[string]int{
		"Mildly interesting fact":            60,
		"Top 10 secret places? You never knew": 400,
		"Low effort post":                    10,
	})
	defer server.Close()

	client := NewRedditClient()
	client.SetBaseURL(server.URL)

	d := NewDiscovery(DiscoveryOptions{
		Reddit:     client,
		Subreddits: []string{"interestingasfuck"},
	})

	got := d.Discover(context.Background())
	if len(got) != 2 {
		t.Fatalf("posts below the upvote floor should be dropped, got %d candidates", len(got))
	}
	if got[0].Topic != "Top 10 secret places? You never knew" {
		t.Errorf("expected highest scored topic first, got %q", got[0].Topic)
	}
	if got[0].Score != maxTopicScore {
		t.Errorf("score should cap at %v, got %v", maxTopicScore, got[0].Score)
	}
}

func TestDiscoverPersistsTrends(t *testing.T) {
	server := redditServer(t, map[string]int{"A fine topic": 120})
	defer server.Close()

	client := NewRedditClient()
	client.SetBaseURL(server.URL)

	trends := &fakeTrendStore{}
	d := NewDiscovery(DiscoveryOptions{
		Reddit:     client,
		Trends:     trends,
		Subreddits: []string{"todayilearned"},
	})

	d.Discover(context.Background())
	if len(trends.added) != 1 || trends.added[0] != "A fine topic" {
		t.Errorf("candidates should be persisted, got %v", trends.added)
	}
}

func TestNextPrefersStoredUnusedTrend(t *testing.T) {
	trends := &fakeTrendStore{
		unused: []store.Trend{{ID: 7, Topic: "Stored trend", Source: sourceReddit, Score: 9}},
	}
	d := NewDiscovery(DiscoveryOptions{Trends: trends, MinScore: 7})

	got := d.Next(context.Background())
	if got.Topic != "Stored trend" {
		t.Fatalf("expected stored trend, got %q", got.Topic)
	}
	if len(trends.used) != 1 || trends.used[0] != 7 {
		t.Errorf("consumed trend should be marked used, got %v", trends.used)
	}
}

func TestNextConsumesDiscoveredTrend(t *testing.T) {
	server := redditServer(t, map[string]int{
		"Why the ocean glows at night?": 400,
		"A fine topic":                  120,
	})
	defer server.Close()

	client := NewRedditClient()
	client.SetBaseURL(server.URL)

	trends := &fakeTrendStore{}
	d := NewDiscovery(DiscoveryOptions{
		Reddit:     client,
		Trends:     trends,
		Subreddits: []string{"todayilearned"},
	})

	first := d.Next(context.Background())
	if first.Topic != "Why the ocean glows at night?" {
		t.Fatalf("expected best candidate first, got %q", first.Topic)
	}
	if len(trends.used) != 1 {
		t.Fatalf("returned candidate must be marked used, got %v", trends.used)
	}

	second := d.Next(context.Background())
	if second.Topic == first.Topic {
		t.Fatalf("consecutive runs repeated topic %q", first.Topic)
	}
	if second.Topic != "A fine topic" {
		t.Errorf("expected the remaining stored trend, got %q", second.Topic)
	}
}

func TestNextFallsBackToCuratedPool(t *testing.T) {
	d := NewDiscovery(DiscoveryOptions{})

	got := d.Next(context.Background())
	if got.Source != sourceCurated {
		t.Fatalf("expected curated source, got %q", got.Source)
	}
	if got.Topic == "" {
		t.Error("curated topic must not be empty")
	}
}

func TestBoostScore(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		base  float64
		want  float64
	}{
		{"plain", "ordinary topic", 5, 5},
		{"question", "why is the sky blue?", 5, 6},
		{"number", "7 ways to sleep better", 5, 5.5},
		{"engagement word", "the secret of the deep", 5, 5.5},
		{"stacked", "Top 10 secret facts? You never knew", 5, 8},
		{"capped", "Top 10 secret facts? You never knew", 9.5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := boostScore(tt.topic, tt.base); got != tt.want {
				t.Errorf("boostScore(%q, %v) = %v, want %v", tt.topic, tt.base, got, tt.want)
			}
		})
	}
}
