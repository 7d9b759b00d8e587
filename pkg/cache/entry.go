package cache

import (
	"net/http"
	"time"
)

// CacheEntry is a cached Data API response.
type CacheEntry struct {
	Data       []byte      `json:"data"`
	ETag       string      `json:"etag"`
	Expires    time.Time   `json:"expires"`
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	CachedAt   time.Time   `json:"cached_at"`
}

// IsExpired returns true if the cache entry has expired.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration, or 0 if already expired.
func (e *CacheEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
