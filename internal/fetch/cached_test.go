package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(articleHTML))
	}))
}

func TestCachedFetcher_ServesFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := newCountingServer(t, &hits)
	defer srv.Close()

	f := NewCachedFetcher(nil)

	first, err := f.Article(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := f.Article(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedFetcher_SkipCache(t *testing.T) {
	var hits atomic.Int32
	srv := newCountingServer(t, &hits)
	defer srv.Close()

	f := NewCachedFetcher(&CachedFetcherConfig{SkipCache: true})

	for i := 0; i < 2; i++ {
		result, err := f.Article(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.False(t, result.FromCache)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedFetcher_ExpiredEntryRefetched(t *testing.T) {
	var hits atomic.Int32
	srv := newCountingServer(t, &hits)
	defer srv.Close()

	f := NewCachedFetcher(&CachedFetcherConfig{CacheTTL: time.Nanosecond})

	_, err := f.Article(context.Background(), srv.URL)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	result, err := f.Article(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedFetcher_Invalidate(t *testing.T) {
	var hits atomic.Int32
	srv := newCountingServer(t, &hits)
	defer srv.Close()

	f := NewCachedFetcher(nil)

	_, err := f.Article(context.Background(), srv.URL)
	require.NoError(t, err)

	f.Invalidate(srv.URL)

	result, err := f.Article(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, int32(2), hits.Load())
}
