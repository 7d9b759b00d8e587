// Package cache stores Data API responses in Redis and revalidates them with
// ETags.
//
// Every Data API resource carries an etag. When a cached entry exists the
// client sends If-None-Match and, on 304 Not Modified, serves the cached body.
// This keeps re-runs of a stage cheap on bandwidth and makes a failed stage
// retry return the same data it saw before.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient, 6*time.Hour)
//
//	key := cache.CacheKey{
//		Resource: "videos",
//		Params:   url.Values{"part": {"snippet"}, "id": {"a,b,c"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API
//	}
//
// # Keys
//
// Keys have the form yt:<resource>:<param>=<value>:... with parameters sorted.
// The "key" parameter (the API key) never becomes part of a cache key.
//
// # Expiry
//
// Google APIs usually send an Expires header in the past together with
// Cache-Control: private. Such headers are ignored and the manager's TTL is
// used instead; a future Expires value is honoured.
//
// # Metrics
//
//   - yt_cache_hits_total
//   - yt_cache_misses_total
//   - yt_cache_size_bytes
//   - yt_cache_conditional_requests_total
//   - yt_cache_not_modified_total
//   - yt_cache_errors_total{operation}
package cache
