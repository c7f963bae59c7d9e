package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analyzeCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktracker_ai_analyze_total",
			Help: "AI analyze requests by outcome",
		},
		[]string{"outcome"},
	)

	analyzeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tasktracker_ai_analyze_duration_seconds",
			Help:    "Duration of the remote chat-completion call",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
)
