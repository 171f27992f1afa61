// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miniapp_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "miniapp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LLMCalls counts language model calls by call site and outcome ("ok" or "fallback").
	LLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miniapp_llm_calls_total",
			Help: "Language model calls by outcome",
		},
		[]string{"call", "outcome"},
	)

	StreakUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "miniapp_streak_updates_total",
			Help: "Journal saves that changed a user's streak",
		},
	)

	LessonsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "miniapp_lessons_completed_total",
			Help: "Lessons newly marked as completed",
		},
	)

	ConcurrentUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miniapp_concurrent_update_conflicts_total",
			Help: "Optimistic concurrency conflicts by entity and result",
		},
		[]string{"entity", "result"},
	)

	Reminders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miniapp_journal_reminders_total",
			Help: "Daily journal reminders by result",
		},
		[]string{"result"},
	)
)

var once sync.Once

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequests,
			HTTPDuration,
			LLMCalls,
			StreakUpdates,
			LessonsCompleted,
			ConcurrentUpdates,
			Reminders,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
