package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		jobsProcessedTotal,
		jobsSweptTotal,
		generationLatency,
		promptTokensTotal,
	)
}

var (
	jobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinerary_jobs_processed_total",
			Help: "Total number of generation jobs reaching a terminal state, labeled by status.",
		},
		[]string{"status"}, // 'completed', 'failed'
	)

	jobsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "itinerary_jobs_swept_total",
			Help: "Total number of expired jobs removed by the cleanup sweeper.",
		},
	)

	generationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itinerary_generation_seconds",
			Help:    "End-to-end generation latency per path.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 240, 360, 480},
		},
		[]string{"path", "success"}, // path: 'enrichment' | 'completion'
	)

	promptTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "itinerary_prompt_tokens_total",
			Help: "Sum of estimated prompt tokens submitted to the generation service.",
		},
	)
)

func IncJob(status string) {
	jobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func AddSweptJobs(n int) {
	jobsSweptTotal.Add(float64(n))
}

func ObserveGeneration(path string, success bool, d time.Duration) {
	s := "false"
	if success {
		s = "true"
	}
	generationLatency.WithLabelValues(norm(path), s).Observe(d.Seconds())
}

func AddPromptTokens(n int) {
	promptTokensTotal.Add(float64(n))
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
