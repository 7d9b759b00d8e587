package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts entries found in Redis.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yt_cache_hits_total",
		Help: "Total number of Data API cache hits",
	})

	// CacheMisses counts lookups without a usable entry.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yt_cache_misses_total",
		Help: "Total number of Data API cache misses",
	})

	// CacheSize tracks bytes written to Redis by this process.
	CacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "yt_cache_size_bytes",
		Help: "Bytes of Data API responses written to the cache",
	})

	// ConditionalRequestsSent counts requests sent with If-None-Match.
	ConditionalRequestsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yt_cache_conditional_requests_total",
		Help: "Total number of conditional requests sent with If-None-Match",
	})

	// NotModifiedResponses counts 304 answers served from cache.
	NotModifiedResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yt_cache_not_modified_total",
		Help: "Total number of 304 Not Modified responses served from cache",
	})

	// CacheErrors counts Redis failures by operation.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yt_cache_errors_total",
		Help: "Total number of cache operation errors",
	}, []string{"operation"})
)
