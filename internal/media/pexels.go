package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"shortforge/pkg/httputil"
)

const pexelsBaseURL = "https://api.pexels.com/v1"

// PexelsProvider searches Pexels for portrait-oriented stock media.
type PexelsProvider struct {
	apiKey  string
	client  *httputil.RetryClient
	baseURL string
}

func NewPexelsProvider(apiKey string, client *httputil.RetryClient) *PexelsProvider {
	if client == nil {
		client = httputil.NewRetryClient(nil, httputil.DefaultRetryConfig())
	}
	return &PexelsProvider{
		apiKey:  apiKey,
		client:  client,
		baseURL: pexelsBaseURL,
	}
}

func (p *PexelsProvider) Name() string {
	return "pexels"
}

type pexelsPhotoResponse struct {
	Photos []struct {
		ID     int64  `json:"id"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Src    struct {
			Original string `json:"original"`
			Large    string `json:"large"`
			Medium   string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

type pexelsVideoFile struct {
	Link    string `json:"link"`
	Quality string `json:"quality"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type pexelsVideoResponse struct {
	Videos []struct {
		ID         int64             `json:"id"`
		Duration   float64           `json:"duration"`
		VideoFiles []pexelsVideoFile `json:"video_files"`
	} `json:"videos"`
}

func (p *PexelsProvider) SearchImages(ctx context.Context, query string, perPage int) ([]Asset, error) {
	body, err := p.get(ctx, p.baseURL+"/search", query, perPage)
	if err != nil {
		return nil, err
	}

	var parsed pexelsPhotoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse pexels photos: %w", err)
	}

	assets := make([]Asset, 0, len(parsed.Photos))
	for _, photo := range parsed.Photos {
		src := photo.Src.Large
		if src == "" {
			src = photo.Src.Original
		}
		if src == "" {
			src = photo.Src.Medium
		}
		if src == "" {
			continue
		}
		assets = append(assets, Asset{
			Provider: p.Name(),
			ID:       strconv.FormatInt(photo.ID, 10),
			URL:      src,
			Kind:     KindImage,
			Width:    photo.Width,
			Height:   photo.Height,
		})
	}
	return assets, nil
}

func (p *PexelsProvider) SearchVideos(ctx context.Context, query string, perPage int) ([]Asset, error) {
	body, err := p.get(ctx, p.baseURL+"/videos/search", query, perPage)
	if err != nil {
		return nil, err
	}

	var parsed pexelsVideoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse pexels videos: %w", err)
	}

	assets := make([]Asset, 0, len(parsed.Videos))
	for _, video := range parsed.Videos {
		link, width, height := bestPexelsFile(video.VideoFiles)
		if link == "" {
			continue
		}
		assets = append(assets, Asset{
			Provider: p.Name(),
			ID:       strconv.FormatInt(video.ID, 10),
			URL:      link,
			Kind:     KindVideo,
			Width:    width,
			Height:   height,
			Duration: video.Duration,
		})
	}
	return assets, nil
}

// bestPexelsFile prefers HD 720p+, then SD 640+, then anything.
func bestPexelsFile(files []pexelsVideoFile) (string, int, int) {
	for _, f := range files {
		if f.Quality == "hd" && f.Width >= 720 {
			return f.Link, f.Width, f.Height
		}
	}
	for _, f := range files {
		if f.Quality == "sd" && f.Width >= 640 {
			return f.Link, f.Width, f.Height
		}
	}
	if len(files) > 0 {
		return files[0].Link, files[0].Width, files[0].Height
	}
	return "", 0, 0
}

func (p *PexelsProvider) get(ctx context.Context, endpoint, query string, perPage int) ([]byte, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", "portrait")
	params.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
