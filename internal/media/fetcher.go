package media

import (
	"context"
	"log/slog"
	"sync"
)

const maxPerRequest = 15

// Fetcher pools results from several stock media providers, removing
// duplicate URLs across providers and keywords.
type Fetcher struct {
	providers []Provider
	logger    *slog.Logger
}

func NewFetcher(providers []Provider, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		providers: providers,
		logger:    logger,
	}
}

// Fetch collects up to count unique assets for the given keywords.
// Keywords are tried in priority order and all providers are queried
// concurrently for each keyword. When a video preference comes up
// short, the remainder is topped up with image results before giving
// up on a keyword's worth of footage. A provider failure is logged and
// treated as zero results, so an empty slice is a valid outcome.
func (f *Fetcher) Fetch(ctx context.Context, keywords []string, count int, kind Kind) []Asset {
	if count <= 0 || len(keywords) == 0 || len(f.providers) == 0 {
		return nil
	}

	perRequest := min(2*count, maxPerRequest)

	seen := make(map[string]struct{})
	pool := f.collect(ctx, keywords, count, perRequest, kind, seen, nil)

	if kind == KindVideo && len(pool) < count {
		pool = f.collect(ctx, keywords, count, perRequest, KindImage, seen, pool)
	}

	if len(pool) > count {
		pool = pool[:count]
	}
	return pool
}

func (f *Fetcher) collect(ctx context.Context, keywords []string, count, perRequest int, kind Kind, seen map[string]struct{}, pool []Asset) []Asset {
	for _, keyword := range keywords {
		if len(pool) >= count {
			break
		}

		for _, batch := range f.search(ctx, keyword, perRequest, kind) {
			for _, asset := range batch {
				if _, dup := seen[asset.URL]; dup {
					continue
				}
				seen[asset.URL] = struct{}{}
				pool = append(pool, asset)
				if len(pool) >= count {
					break
				}
			}
			if len(pool) >= count {
				break
			}
		}
	}
	return pool
}

// search queries every provider concurrently for one keyword and
// returns the batches in provider order.
func (f *Fetcher) search(ctx context.Context, keyword string, perRequest int, kind Kind) [][]Asset {
	results := make([][]Asset, len(f.providers))

	var wg sync.WaitGroup
	for i, provider := range f.providers {
		wg.Add(1)
		go func(i int, provider Provider) {
			defer wg.Done()

			var assets []Asset
			var err error
			switch kind {
			case KindImage:
				assets, err = provider.SearchImages(ctx, keyword, perRequest)
			default:
				assets, err = provider.SearchVideos(ctx, keyword, perRequest)
			}
			if err != nil {
				f.logger.Warn("media search failed",
					"provider", provider.Name(),
					"keyword", keyword,
					"error", err)
				return
			}
			results[i] = assets
		}(i, provider)
	}
	wg.Wait()

	return results
}
