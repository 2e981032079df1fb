package topics

import (
	"context"
	"log/slog"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"shortforge/internal/store"
)

const (
	sourceReddit  = "reddit"
	sourceCurated = "curated"

	minRedditScore = 50
	maxTopicScore  = 10.0
)

// curatedPool keeps the pipeline producing when every live source is
// down or empty.
var curatedPool = []string{
	"5 space facts that sound fake but are true",
	"Why do cats purr? The science explained",
	"The hidden history of everyday objects",
	"How deep is the ocean really?",
	"3 psychology tricks your brain plays on you",
	"What happens to your body in zero gravity?",
	"The secret life of honeybees",
	"Why airplane windows are round",
	"Ancient inventions we still use today",
	"How fast does the Earth actually spin?",
}

var engagementKeywords = []string{
	"secret", "hidden", "shocking", "amazing", "incredible",
	"you won't believe", "top 10", "vs", "comparison", "never knew",
}

var digitPattern = regexp.MustCompile(`\d+`)

// Candidate is a scored topic from one source. TrendID is set once the
// candidate has been persisted.
type Candidate struct {
	Topic    string
	Source   string
	Score    float64
	Metadata map[string]string
	TrendID  uint
}

// TrendStore is the slice of the persistence layer discovery needs.
type TrendStore interface {
	AddTrend(topic, source string, score float64, metadata map[string]string) (uint, error)
	UnusedTrends(limit int) ([]store.Trend, error)
	MarkTrendUsed(id uint) error
}

// Discovery finds the next topic worth a video.
type Discovery struct {
	reddit     *RedditClient
	trends     TrendStore
	scorer     *Scorer
	subreddits []string
	postLimit  int
	minScore   float64
	logger     *slog.Logger
}

type DiscoveryOptions struct {
	Reddit     *RedditClient
	Trends     TrendStore
	Scorer     *Scorer
	Subreddits []string
	PostLimit  int
	MinScore   float64
	Logger     *slog.Logger
}

func NewDiscovery(opts DiscoveryOptions) *Discovery {
	postLimit := opts.PostLimit
	if postLimit == 0 {
		postLimit = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		reddit:     opts.Reddit,
		trends:     opts.Trends,
		scorer:     opts.Scorer,
		subreddits: opts.Subreddits,
		postLimit:  postLimit,
		minScore:   opts.MinScore,
		logger:     logger,
	}
}

// Next returns the best available topic. Discovery never fails: when
// every source is empty the curated pool supplies a topic. The chosen
// trend is marked used so consecutive runs do not repeat themselves.
func (d *Discovery) Next(ctx context.Context) Candidate {
	if d.trends != nil {
		if cand, ok := d.fromStore(); ok {
			return cand
		}
	}

	candidates := d.Discover(ctx)
	if len(candidates) == 0 {
		return d.curated()
	}

	best := candidates[0]
	if best.Score < d.minScore {
		d.logger.Info("no candidate above threshold, taking the best anyway",
			"topic", best.Topic,
			"score", best.Score)
	}
	d.consume(best)
	return best
}

// consume marks a persisted candidate used so the next run does not
// pick it up again, even when this generation later fails.
func (d *Discovery) consume(cand Candidate) {
	if d.trends == nil || cand.TrendID == 0 {
		return
	}
	if err := d.trends.MarkTrendUsed(cand.TrendID); err != nil {
		d.logger.Warn("could not mark trend used", "id", cand.TrendID, "error", err)
	}
}

// Discover gathers, scores, sorts and persists candidates from all
// sources, best first.
func (d *Discovery) Discover(ctx context.Context) []Candidate {
	var candidates []Candidate

	if d.reddit != nil {
		candidates = append(candidates, d.redditCandidates(ctx)...)
	}

	for i := range candidates {
		candidates[i].Score = boostScore(candidates[i].Topic, candidates[i].Score)
	}

	if d.scorer != nil && len(candidates) > 0 {
		scores, err := d.scorer.Score(ctx, candidates)
		if err != nil {
			d.logger.Warn("model scoring failed, keeping heuristic scores", "error", err)
		} else {
			for i := range candidates {
				if score, ok := scores[candidates[i].Topic]; ok {
					candidates[i].Score = score
				}
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if d.trends != nil {
		for i, cand := range candidates {
			id, err := d.trends.AddTrend(cand.Topic, cand.Source, cand.Score, cand.Metadata)
			if err != nil {
				d.logger.Warn("could not persist trend", "topic", cand.Topic, "error", err)
				continue
			}
			candidates[i].TrendID = id
		}
	}

	return candidates
}

func (d *Discovery) fromStore() (Candidate, bool) {
	trends, err := d.trends.UnusedTrends(1)
	if err != nil || len(trends) == 0 {
		return Candidate{}, false
	}

	trend := trends[0]
	if trend.Score < d.minScore {
		return Candidate{}, false
	}
	if err := d.trends.MarkTrendUsed(trend.ID); err != nil {
		d.logger.Warn("could not mark trend used", "id", trend.ID, "error", err)
	}
	return Candidate{
		Topic:  trend.Topic,
		Source: trend.Source,
		Score:  trend.Score,
	}, true
}

func (d *Discovery) redditCandidates(ctx context.Context) []Candidate {
	var candidates []Candidate
	for _, subreddit := range d.subreddits {
		posts, err := d.reddit.HotPosts(ctx, subreddit, d.postLimit)
		if err != nil {
			d.logger.Warn("subreddit fetch failed", "subreddit", subreddit, "error", err)
			continue
		}
		for _, post := range posts {
			if post.Score <= minRedditScore {
				continue
			}
			candidates = append(candidates, Candidate{
				Topic:  post.Title,
				Source: sourceReddit,
				Score:  normalizeRedditScore(post.Score),
				Metadata: map[string]string{
					"subreddit": subreddit,
					"upvotes":   strconv.Itoa(post.Score),
					"comments":  strconv.Itoa(post.NumComments),
				},
			})
		}
	}
	return candidates
}

func (d *Discovery) curated() Candidate {
	topic := curatedPool[rand.Intn(len(curatedPool))]
	return Candidate{
		Topic:  topic,
		Source: sourceCurated,
		Score:  boostScore(topic, 5),
	}
}

func normalizeRedditScore(upvotes int) float64 {
	score := float64(upvotes) / float64(minRedditScore)
	if score > maxTopicScore {
		return maxTopicScore
	}
	return score
}

// boostScore rewards phrasing that performs well in short-form feeds:
// engagement words, questions and numbered lists.
func boostScore(topic string, base float64) float64 {
	lower := strings.ToLower(topic)

	var boost float64
	for _, keyword := range engagementKeywords {
		if strings.Contains(lower, keyword) {
			boost += 0.5
		}
	}
	if strings.Contains(topic, "?") {
		boost += 1
	}
	if digitPattern.MatchString(topic) {
		boost += 0.5
	}

	score := base + boost
	if score > maxTopicScore {
		return maxTopicScore
	}
	return score
}
