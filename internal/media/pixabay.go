package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"shortforge/pkg/httputil"
)

const pixabayBaseURL = "https://pixabay.com/api/"

// PixabayProvider searches Pixabay for vertical stock media.
type PixabayProvider struct {
	apiKey  string
	client  *httputil.RetryClient
	baseURL string
}

func NewPixabayProvider(apiKey string, client *httputil.RetryClient) *PixabayProvider {
	if client == nil {
		client = httputil.NewRetryClient(nil, httputil.DefaultRetryConfig())
	}
	return &PixabayProvider{
		apiKey:  apiKey,
		client:  client,
		baseURL: pixabayBaseURL,
	}
}

func (p *PixabayProvider) Name() string {
	return "pixabay"
}

type pixabayImageResponse struct {
	Hits []struct {
		ID            int64  `json:"id"`
		LargeImageURL string `json:"largeImageURL"`
		WebformatURL  string `json:"webformatURL"`
		ImageWidth    int    `json:"imageWidth"`
		ImageHeight   int    `json:"imageHeight"`
	} `json:"hits"`
}

type pixabayVideoVariant struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type pixabayVideoResponse struct {
	Hits []struct {
		ID       int64   `json:"id"`
		Duration float64 `json:"duration"`
		Videos   struct {
			Medium pixabayVideoVariant `json:"medium"`
			Small  pixabayVideoVariant `json:"small"`
			Tiny   pixabayVideoVariant `json:"tiny"`
		} `json:"videos"`
	} `json:"hits"`
}

func (p *PixabayProvider) SearchImages(ctx context.Context, query string, perPage int) ([]Asset, error) {
	body, err := p.get(ctx, p.baseURL, query, perPage)
	if err != nil {
		return nil, err
	}

	var parsed pixabayImageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse pixabay images: %w", err)
	}

	assets := make([]Asset, 0, len(parsed.Hits))
	for _, hit := range parsed.Hits {
		src := hit.LargeImageURL
		if src == "" {
			src = hit.WebformatURL
		}
		if src == "" {
			continue
		}
		assets = append(assets, Asset{
			Provider: p.Name(),
			ID:       strconv.FormatInt(hit.ID, 10),
			URL:      src,
			Kind:     KindImage,
			Width:    hit.ImageWidth,
			Height:   hit.ImageHeight,
		})
	}
	return assets, nil
}

func (p *PixabayProvider) SearchVideos(ctx context.Context, query string, perPage int) ([]Asset, error) {
	body, err := p.get(ctx, p.baseURL+"videos/", query, perPage)
	if err != nil {
		return nil, err
	}

	var parsed pixabayVideoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse pixabay videos: %w", err)
	}

	assets := make([]Asset, 0, len(parsed.Hits))
	for _, hit := range parsed.Hits {
		variant := hit.Videos.Medium
		if variant.URL == "" {
			variant = hit.Videos.Small
		}
		if variant.URL == "" {
			variant = hit.Videos.Tiny
		}
		if variant.URL == "" {
			continue
		}
		assets = append(assets, Asset{
			Provider: p.Name(),
			ID:       strconv.FormatInt(hit.ID, 10),
			URL:      variant.URL,
			Kind:     KindVideo,
			Width:    variant.Width,
			Height:   variant.Height,
			Duration: hit.Duration,
		})
	}
	return assets, nil
}

func (p *PixabayProvider) get(ctx context.Context, endpoint, query string, perPage int) ([]byte, error) {
	if perPage < 3 {
		perPage = 3
	}
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("q", query)
	params.Set("orientation", "vertical")
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("safesearch", "true")

	body, err := p.client.Get(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("pixabay request: %w", err)
	}
	return body, nil
}
