package prometheus

import (
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "biolink"

// Analytics event kinds.
const (
	KindView  = "view"
	KindClick = "click"
)

var (
	// AnalyticsEvents counts ingestion outcomes by kind and outcome
	// ("tracked" or a skip reason).
	AnalyticsEvents = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Subsystem: "analytics",
		Name:      "events_total",
		Help:      "Analytics ingestion outcomes.",
	}, []string{"kind", "outcome"})

	// AnalyticsStoreErrors counts failed reads and writes of the analytics document.
	AnalyticsStoreErrors = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Subsystem: "analytics",
		Name:      "store_errors_total",
		Help:      "Analytics store read/write failures.",
	}, []string{"op"})

	// LiveProbeDuration observes live-status probe latency.
	LiveProbeDuration = promauto.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "probe_duration_seconds",
		Help:      "Latency of upstream live-status probes.",
		Buckets:   prom.DefBuckets,
	}, []string{"platform", "outcome"})

	// LiveCacheLookups counts live-status cache hits and misses.
	LiveCacheLookups = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "cache_lookups_total",
		Help:      "Live-status cache lookups.",
	}, []string{"platform", "result"})
)
