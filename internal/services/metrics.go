package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	parseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hymnal_parse_duration_seconds",
		Help:    "Time spent parsing hymnal sources.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	})

	indexBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hymnal_index_builds_total",
		Help: "Search index builds by reason (put, missing, version, corrupt, stale).",
	}, []string{"reason"})

	queries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hymnal_queries_total",
		Help: "Queries served by kind (search, categories, selection).",
	}, []string{"kind"})

	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hymnal_cache_requests_total",
		Help: "Parse/index cache lookups by cache and result (hit, miss).",
	}, []string{"cache", "result"})
)

func observeCache(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheRequests.WithLabelValues(cache, result).Inc()
}
