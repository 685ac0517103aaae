package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	procedureCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_procedure_calls_total",
		Help: "Procedure calls by procedure and result code",
	}, []string{"procedure", "code"})

	procedureDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_procedure_duration_seconds",
		Help:    "Latency of procedure calls",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms up to ~8s
	}, []string{"procedure"})

	feedEntries = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chirp_feed_entries",
		Help:    "Number of entries returned by posts.getAll",
		Buckets: []float64{0, 1, 10, 25, 50, 75, 100},
	})

	postsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chirp_posts_created_total",
		Help: "Posts created through posts.create or the compose form",
	})
)
