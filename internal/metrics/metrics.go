package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker job metrics
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trends_jobs_processed_total",
			Help: "Total number of jobs finished by the worker pool",
		},
		[]string{"task", "state"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trends_job_duration_seconds",
			Help:    "Job handler duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"task"},
	)

	ActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trends_jobs_active",
			Help: "Number of jobs currently executing",
		},
	)

	MessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trends_messages_dropped_total",
			Help: "Broker messages discarded because they could not be decoded",
		},
	)

	// Fallback site metrics
	SiteRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trends_site_runs_total",
			Help: "Static site pipeline runs by outcome",
		},
		[]string{"status"},
	)
)

// RecordJob records a finished job.
func RecordJob(task, state string, took time.Duration) {
	JobsProcessed.WithLabelValues(task, state).Inc()
	JobDuration.WithLabelValues(task).Observe(took.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
