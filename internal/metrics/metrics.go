// Package metrics holds the Prometheus collectors for tickerpulse.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Provider metrics
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickerpulse_provider_calls_total",
			Help: "Total number of external provider calls",
		},
		[]string{"provider", "status"}, // status: success|error|not_found
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tickerpulse_provider_latency_seconds",
			Help:    "External provider call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)

	// Analysis metrics
	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickerpulse_analyses_total",
			Help: "Total number of sentiment analyses",
		},
		[]string{"outcome"}, // outcome: ok|not_found|invalid|error
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tickerpulse_analysis_duration_seconds",
			Help:    "End-to-end analysis duration in seconds, cache misses only",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickerpulse_cache_lookups_total",
			Help: "Result cache lookups",
		},
		[]string{"result"}, // result: hit|miss
	)

	// Batch metrics
	BatchTickers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickerpulse_batch_tickers_total",
			Help: "Tickers processed by batch runs",
		},
		[]string{"status"}, // status: ok|failed
	)

	BatchLastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tickerpulse_batch_last_run_timestamp",
			Help: "Unix timestamp of the last completed batch run",
		},
	)

	// Storage metrics
	RowsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickerpulse_rows_written_total",
			Help: "Rows inserted into storage",
		},
		[]string{"table"},
	)
)

var once sync.Once

// Init registers all collectors with the default registry. Safe to call
// more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(ProviderCalls)
		prometheus.MustRegister(ProviderLatency)
		prometheus.MustRegister(Analyses)
		prometheus.MustRegister(AnalysisDuration)
		prometheus.MustRegister(CacheLookups)
		prometheus.MustRegister(BatchTickers)
		prometheus.MustRegister(BatchLastRun)
		prometheus.MustRegister(RowsWritten)
	})
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveProvider records one provider call. status is derived from err by
// the caller.
func ObserveProvider(provider, status string, start time.Time) {
	ProviderCalls.WithLabelValues(provider, status).Inc()
	ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
