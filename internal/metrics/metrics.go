package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Selection coordinator metrics
	PendingSelections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pitki_pending_selections",
			Help: "Number of captures waiting for a category choice in this process",
		},
	)

	SelectionOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitki_selection_outcomes_total",
			Help: "Resolved category selections by outcome and origin",
		},
		[]string{"outcome", "origin"},
	)

	// Bot metrics
	BotUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitki_bot_updates_total",
			Help: "Telegram updates received by kind",
		},
		[]string{"kind"},
	)

	TasksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitki_tasks_processed_total",
			Help: "Background tasks processed by type and status",
		},
		[]string{"type", "status"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitki_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pitki_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(PendingSelections)
	prometheus.MustRegister(SelectionOutcomes)
	prometheus.MustRegister(BotUpdatesTotal)
	prometheus.MustRegister(TasksProcessed)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
