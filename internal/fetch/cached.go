package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a fetched page stays fresh.
const DefaultCacheTTL = 7 * 24 * time.Hour

// CachedFetcher wraps URL fetching with an in-memory TTL cache. Repeated
// generation runs against the same source article hit the network once.
type CachedFetcher struct {
	options   *Options
	cacheTTL  time.Duration
	skipCache bool // For testing or forcing fresh fetches

	mu    sync.Mutex
	pages map[string]cachedPage
}

type cachedPage struct {
	result    *Result
	fetchedAt time.Time
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  DefaultCacheTTL,
		SkipCache: false,
		Options:   DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher.
func NewCachedFetcher(config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	return &CachedFetcher{
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
		pages:     make(map[string]cachedPage),
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool
	FetchedAt time.Time
}

// Article fetches a URL's article text, serving from cache when fresh.
func (f *CachedFetcher) Article(ctx context.Context, urlStr string) (*CachedResult, error) {
	if !f.skipCache {
		if cached, ok := f.lookup(urlStr); ok {
			return cached, nil
		}
	}

	result, err := Article(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	f.mu.Lock()
	f.pages[urlStr] = cachedPage{result: result, fetchedAt: now}
	f.mu.Unlock()

	return &CachedResult{Result: result, FromCache: false, FetchedAt: now}, nil
}

func (f *CachedFetcher) lookup(urlStr string) (*CachedResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	page, ok := f.pages[urlStr]
	if !ok {
		return nil, false
	}
	if time.Since(page.fetchedAt) > f.cacheTTL {
		delete(f.pages, urlStr)
		return nil, false
	}
	return &CachedResult{Result: page.result, FromCache: true, FetchedAt: page.fetchedAt}, true
}

// Invalidate drops any cached entry for the URL.
func (f *CachedFetcher) Invalidate(urlStr string) {
	f.mu.Lock()
	delete(f.pages, urlStr)
	f.mu.Unlock()
}
