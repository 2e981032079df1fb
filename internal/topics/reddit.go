package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	redditBaseURL = "https://www.reddit.com"
	redditTimeout = 30 * time.Second
	userAgent     = "shortforge/1.0"
)

// RedditClient reads public subreddit listings, no OAuth needed.
type RedditClient struct {
	httpClient *http.Client
	baseURL    string
}

type RedditPost struct {
	Title       string
	Selftext    string
	Author      string
	Score       int
	URL         string
	Permalink   string
	Created     float64
	NumComments int
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPostData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPostData struct {
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Created     float64 `json:"created_utc"`
	NumComments int     `json:"num_comments"`
}

func NewRedditClient() *RedditClient {
	return &RedditClient{
		httpClient: &http.Client{
			Timeout: redditTimeout,
		},
		baseURL: redditBaseURL,
	}
}

// SetBaseURL overrides the endpoint for testing.
func (c *RedditClient) SetBaseURL(url string) {
	c.baseURL = url
}

func (c *RedditClient) HotPosts(ctx context.Context, subreddit string, limit int) ([]RedditPost, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	url := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", c.baseURL, subreddit, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit api error: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	posts := make([]RedditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, RedditPost(child.Data))
	}
	return posts, nil
}
