// Package metrics provides Prometheus metrics for the provider directory.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter
	Providers       prometheus.Gauge
	Reloads         *prometheus.CounterVec
	SourceChecks    *prometheus.CounterVec
	LoadedRows      prometheus.Gauge
	LoadDuration    prometheus.Histogram
}

// New creates and registers all metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "directory_requests_total",
			Help: "Directory requests by endpoint and outcome",
		}, []string{"endpoint", "result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "directory_request_duration_seconds",
			Help:    "Directory request duration",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"endpoint"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "directory_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
		Providers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "directory_providers",
			Help: "Providers in the live directory",
		}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "directory_reloads_total",
			Help: "Catalog reloads by result",
		}, []string{"result"}),
		SourceChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "source_checks_total",
			Help: "Upstream source availability checks by result",
		}, []string{"result"}),
		LoadedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_loaded_rows",
			Help: "Rows written by the last catalog load",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_load_duration_seconds",
			Help:    "Catalog load duration",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests,
		m.RequestDuration,
		m.RateLimited,
		m.Providers,
		m.Reloads,
		m.SourceChecks,
		m.LoadedRows,
		m.LoadDuration,
	)
	return m
}

// Observe records one endpoint call.
func (m *Metrics) Observe(endpoint string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Requests.WithLabelValues(endpoint, result).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Reloaded records a catalog reload and the resulting directory size.
func (m *Metrics) Reloaded(providers int, err error) {
	if err != nil {
		m.Reloads.WithLabelValues("error").Inc()
		return
	}
	m.Reloads.WithLabelValues("ok").Inc()
	m.Providers.Set(float64(providers))
}

// Checked records the outcome of a source check pass.
func (m *Metrics) Checked(ok, failed int) {
	m.SourceChecks.WithLabelValues("ok").Add(float64(ok))
	m.SourceChecks.WithLabelValues("failed").Add(float64(failed))
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
