// Package metrics exposes Prometheus collectors for the locator service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "school_locator_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "code"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "school_locator_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	RankingsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "school_locator_rankings_total",
		Help: "Total rankings computed against the dataset",
	})
	ValidationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "school_locator_validation_failures_total",
		Help: "Total requests rejected for missing or invalid parameters",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "school_locator_cache_hits_total",
		Help: "Total ranking cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "school_locator_cache_misses_total",
		Help: "Total ranking cache misses",
	})
	RunLogFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "school_locator_runlog_failures_total",
		Help: "Total invocations that failed while recording the run",
	})
	DatasetSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "school_locator_dataset_size",
		Help: "Number of schools in the loaded dataset",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RankingsTotal)
	prometheus.MustRegister(ValidationFailuresTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(RunLogFailuresTotal)
	prometheus.MustRegister(DatasetSize)
}

// Handler serves the registered metrics.
func Handler() http.Handler { return promhttp.Handler() }
