package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compass_http_requests_total",
		Help: "HTTP requests by method and status.",
	}, []string{"method", "status"})

	selectionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compass_selection_total",
		Help: "Completed selection runs by preference preset.",
	}, []string{"preset"})

	selectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "compass_selection_duration_seconds",
		Help:    "Wall time of one selection run.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)
