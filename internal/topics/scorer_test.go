package topics

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubLLM struct {
	response string
	err      error
	prompts  []string
}

func (s *stubLLM) GenerateJSON(_ context.Context, _, userPrompt string) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	return s.response, s.err
}

func TestScorerClampsScores(t *testing.T) {
	llm := &stubLLM{response: `{"scores": {"a": 14, "b": -2, "c": 7.5}}`}
	s := NewScorer(llm, 20)

	got, err := s.Score(context.Background(), []Candidate{
		{Topic: "a"}, {Topic: "b"}, {Topic: "c"},
	})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if got["a"] != maxTopicScore {
		t.Errorf("a = %v, want clamped to %v", got["a"], maxTopicScore)
	}
	if got["b"] != 0 {
		t.Errorf("b = %v, want clamped to 0", got["b"])
	}
	if got["c"] != 7.5 {
		t.Errorf("c = %v, want 7.5", got["c"])
	}
}

func TestScorerLimitsCandidates(t *testing.T) {
	llm := &stubLLM{response: `{"scores": {}}`}
	s := NewScorer(llm, 2)

	candidates := []Candidate{{Topic: "one"}, {Topic: "two"}, {Topic: "three"}}
	if _, err := s.Score(context.Background(), candidates); err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if len(llm.prompts) != 1 {
		t.Fatalf("expected one LLM call, got %d", len(llm.prompts))
	}
	prompt := llm.prompts[0]
	for _, want := range []string{"one", "two"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing topic %q", want)
		}
	}
	if strings.Contains(prompt, "three") {
		t.Error("prompt should not include topics beyond the analysis limit")
	}
}

func TestDiscoverKeepsHeuristicScoresWhenScoringFails(t *testing.T) {
	server := redditServer(t, map[string]int{"A fine topic": 120})
	defer server.Close()

	client := NewRedditClient()
	client.SetBaseURL(server.URL)

	d := NewDiscovery(DiscoveryOptions{
		Reddit:     client,
		Scorer:     NewScorer(&stubLLM{err: errors.New("model unavailable")}, 20),
		Subreddits: []string{"todayilearned"},
	})

	got := d.Discover(context.Background())
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Score != 2.4 {
		t.Errorf("score = %v, want heuristic 2.4 (120/50)", got[0].Score)
	}
}

func TestDiscoverAppliesModelScores(t *testing.T) {
	server := redditServer(t, map[string]int{"A fine topic": 120})
	defer server.Close()

	client := NewRedditClient()
	client.SetBaseURL(server.URL)

	llm := &stubLLM{response: `{"scores": {"A fine topic": 9.5}}`}
	d := NewDiscovery(DiscoveryOptions{
		Reddit:     client,
		Scorer:     NewScorer(llm, 20),
		Subreddits: []string{"todayilearned"},
	})

	got := d.Discover(context.Background())
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Score != 9.5 {
		t.Errorf("score = %v, want model score 9.5", got[0].Score)
	}
}
