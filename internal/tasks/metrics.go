package tasks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"task-tracker-backend/internal/classify"
)

var (
	opCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktracker_task_operations_total",
			Help: "Task operations by op and status",
		},
		[]string{"op", "status"},
	)

	createdCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktracker_tasks_created_total",
			Help: "Tasks created, by category",
		},
		[]string{"category"},
	)

	contentLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tasktracker_task_content_length_chars",
			Help:    "Length distribution of task content",
			Buckets: []float64{10, 25, 50, 100, 200},
		},
	)
)

// customCategory buckets every client-supplied category in metrics.
const customCategory = "custom"

var knownCategories = func() map[string]bool {
	m := make(map[string]bool)
	for _, l := range classify.Default().Labels() {
		m[l] = true
	}
	return m
}()

func categoryLabel(c string) string {
	if knownCategories[c] {
		return c
	}
	return customCategory
}

func observe(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	opCount.WithLabelValues(op, status).Inc()
}
