package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 5000
	maxTags              = 10
)

// shortsTags are always appended so the platform files the video as a
// short regardless of what the model returned.
var shortsTags = []string{"shorts", "youtubeshorts"}

const systemPrompt = `You are a scriptwriter for short vertical videos. ` +
	`Respond with a single JSON object, no markdown.`

const userPromptTemplate = `Write content for a %d-second vertical video about: %s

Return a JSON object with exactly these keys:
  "script": narration of roughly %d words, hook in the first sentence, ending with a question or call to action
  "title": catchy title under 60 characters
  "description": under 200 characters, ending with 5 hashtags
  "tags": array of 10 short lowercase tags
  "keywords": array of 3 visual search terms for stock footage`

// Package is everything downstream stages need for one video.
type Package struct {
	Script      string   `json:"script"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Keywords    []string `json:"keywords"`
}

// Generator asks the LLM for a content package and falls back to a
// deterministic template when the model misbehaves.
type Generator struct {
	llm           LLM
	wordCount     int
	targetSeconds int
	logger        *slog.Logger
}

func NewGenerator(llm LLM, wordCount, targetSeconds int, logger *slog.Logger) *Generator {
	if wordCount == 0 {
		wordCount = 110
	}
	if targetSeconds == 0 {
		targetSeconds = 45
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		llm:           llm,
		wordCount:     wordCount,
		targetSeconds: targetSeconds,
		logger:        logger,
	}
}

// Generate never fails: a bad or missing LLM response degrades to the
// template package for the topic.
func (g *Generator) Generate(ctx context.Context, topic string) *Package {
	if g.llm == nil {
		return g.fallback(topic)
	}

	prompt := fmt.Sprintf(userPromptTemplate, g.targetSeconds, topic, g.wordCount)
	raw, err := g.llm.GenerateJSON(ctx, systemPrompt, prompt)
	if err != nil {
		g.logger.Warn("content generation failed, using template",
			"topic", topic,
			"error", err)
		return g.fallback(topic)
	}

	var pkg Package
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &pkg); err != nil {
		g.logger.Warn("content response was not valid JSON, using template",
			"topic", topic,
			"error", err)
		return g.fallback(topic)
	}

	if strings.TrimSpace(pkg.Script) == "" || strings.TrimSpace(pkg.Title) == "" {
		g.logger.Warn("content response incomplete, using template", "topic", topic)
		return g.fallback(topic)
	}

	normalize(&pkg, topic)
	return &pkg
}

func (g *Generator) fallback(topic string) *Package {
	pkg := &Package{
		Script: fmt.Sprintf("Today we're talking about %s. "+
			"This is something you probably didn't know. "+
			"Let me break it down for you. "+
			"It changes how you see the everyday version of it. "+
			"That's why this matters more than people think. "+
			"What do you think? Comment below!", topic),
		Title:       fmt.Sprintf("The Truth About %s", truncate(topic, 30)),
		Description: fmt.Sprintf("Learn about %s. #Shorts #Viral #Trending #Education #Facts", topic),
		Tags:        []string{"viral", "trending", "education", "facts", "interesting"},
		Keywords:    keywordsFromTopic(topic),
	}
	normalize(pkg, topic)
	return pkg
}

// normalize enforces platform limits and guarantees keywords exist.
func normalize(pkg *Package, topic string) {
	pkg.Title = truncate(strings.TrimSpace(pkg.Title), maxTitleLength)
	pkg.Description = truncate(strings.TrimSpace(pkg.Description), maxDescriptionLength)

	if len(pkg.Tags) > maxTags {
		pkg.Tags = pkg.Tags[:maxTags]
	}
	for _, tag := range shortsTags {
		if !containsFold(pkg.Tags, tag) {
			pkg.Tags = append(pkg.Tags, tag)
		}
	}

	if !strings.Contains(pkg.Description, "#") && len(pkg.Tags) > 0 {
		var hashtags []string
		for _, tag := range pkg.Tags[:min(5, len(pkg.Tags))] {
			hashtags = append(hashtags, "#"+strings.ReplaceAll(tag, " ", ""))
		}
		pkg.Description = truncate(pkg.Description+"\n\n"+strings.Join(hashtags, " "), maxDescriptionLength)
	}

	if len(pkg.Keywords) == 0 {
		pkg.Keywords = keywordsFromTopic(topic)
	}
}

// keywordsFromTopic uses the longest words of the topic as search terms,
// with the full topic as the first, highest-priority query.
func keywordsFromTopic(topic string) []string {
	keywords := []string{topic}
	for _, word := range strings.Fields(topic) {
		cleaned := strings.Trim(strings.ToLower(word), ".,!?\"'")
		if len(cleaned) > 4 {
			keywords = append(keywords, cleaned)
		}
		if len(keywords) == 4 {
			break
		}
	}
	return keywords
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	return strings.TrimSpace(s)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func containsFold(list []string, want string) bool {
	for _, item := range list {
		if strings.EqualFold(item, want) {
			return true
		}
	}
	return false
}
