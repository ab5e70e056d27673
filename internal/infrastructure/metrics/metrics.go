package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal tracks lookups by directory and decision
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkgate_lookups_total",
		Help: "Total number of lookups processed",
	}, []string{"directory", "outcome"})

	// LookupDuration tracks end-to-end lookup time including storage reads
	LookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkgate_lookup_duration_seconds",
		Help:    "Histogram of lookup processing duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"directory"})

	// CredentialResolutions tracks how presented credentials resolved
	CredentialResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkgate_credential_resolutions_total",
		Help: "Total number of credential resolutions by result",
	}, []string{"result"})

	// CacheOperations tracks L1 cache hits and misses
	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkgate_cache_operations_total",
		Help: "Total number of cache hits and misses",
	}, []string{"namespace", "result"})

	// StoreOperations tracks backend reads by outcome
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkgate_store_operations_total",
		Help: "Total number of backend reads",
	}, []string{"backend", "result"})

	// HTTPRequests tracks API responses by route and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkgate_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"route", "status"})
)
