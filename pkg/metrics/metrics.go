package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogRequests counts catalog client calls by operation (page|detail|name) and result.
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogcache_catalog_requests_total",
			Help: "Total number of calls to the upstream catalog service",
		},
		[]string{"operation", "result"},
	)

	// CacheFallbacks counts repository reads answered from the cache after a network failure.
	CacheFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogcache_cache_fallbacks_total",
			Help: "Total number of reads served from the local cache after a catalog failure",
		},
		[]string{"operation"},
	)

	// EnrichmentFailures counts listing items left without a derived type.
	EnrichmentFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalogcache_enrichment_failures_total",
			Help: "Total number of listing items whose detail lookup failed",
		},
	)

	// CacheWriteFailures counts swallowed upsert failures.
	CacheWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalogcache_cache_write_failures_total",
			Help: "Total number of cache writes that failed after a successful fetch",
		},
	)

	// EvictedRows counts rows removed by stale-cache maintenance.
	EvictedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalogcache_evicted_rows_total",
			Help: "Total number of cache rows removed by eviction",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalogcache_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
