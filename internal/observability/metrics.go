package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locshare",
		Name:      "refresh_total",
		Help:      "Refresh cycles by outcome (ok or error kind)",
	}, []string{"result"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "locshare",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of location endpoint requests",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
	})

	PayloadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "locshare",
		Name:      "payload_bytes",
		Help:      "Size of raw location payloads",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
	})

	SharedPeople = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "locshare",
		Name:      "shared_people",
		Help:      "Number of accounts sharing location in the current snapshot",
	})

	SelfPresent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "locshare",
		Name:      "self_present",
		Help:      "1 if the current snapshot holds the authenticated account's position",
	})

	LastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "locshare",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful refresh",
	})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "locshare",
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0 closed, 1 open, 2 half-open)",
	}, []string{"name"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "locshare",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "locshare",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
