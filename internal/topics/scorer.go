package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const scoringSystemPrompt = `You score topics for short-form vertical video.
Rate each topic 0-10 for viewer retention and broad appeal.
Respond with a JSON object: {"scores": {"<topic>": <number>, ...}}`

// LLM is the slice of the content layer's client that scoring needs.
type LLM interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Scorer re-scores candidates with an LLM. It is optional; a nil
// Scorer on Discovery keeps the heuristic scores.
type Scorer struct {
	llm         LLM
	maxAnalyzed int
}

func NewScorer(llm LLM, maxAnalyzed int) *Scorer {
	if maxAnalyzed <= 0 {
		maxAnalyzed = 20
	}
	return &Scorer{llm: llm, maxAnalyzed: maxAnalyzed}
}

// Score returns LLM scores keyed by topic for up to maxAnalyzed
// candidates. Topics the model skipped keep their heuristic score.
func (s *Scorer) Score(ctx context.Context, candidates []Candidate) (map[string]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) > s.maxAnalyzed {
		candidates = candidates[:s.maxAnalyzed]
	}

	var sb strings.Builder
	sb.WriteString("Topics:\n")
	for _, cand := range candidates {
		sb.WriteString("- ")
		sb.WriteString(cand.Topic)
		sb.WriteString("\n")
	}

	raw, err := s.llm.GenerateJSON(ctx, scoringSystemPrompt, sb.String())
	if err != nil {
		return nil, fmt.Errorf("score topics: %w", err)
	}

	var parsed struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse scores: %w", err)
	}

	for topic, score := range parsed.Scores {
		if score < 0 {
			parsed.Scores[topic] = 0
		}
		if score > maxTopicScore {
			parsed.Scores[topic] = maxTopicScore
		}
	}
	return parsed.Scores, nil
}
