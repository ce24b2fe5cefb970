// Package metrics holds the Prometheus instruments of a cpindex run. A run is
// a short-lived batch job, so instead of serving /metrics the registry is
// written once to a node-exporter textfile when --metrics-file is set.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "cpindex"

// Registry owns the run's collectors. All methods are safe on a nil
// *Registry, which records nothing.
type Registry struct {
	reg *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpRetries   *prometheus.CounterVec
	monthsFetched *prometheus.CounterVec
	pdfPages      prometheus.Counter
	fetchDuration *prometheus.HistogramVec
	heapAlloc     prometheus.Gauge
}

// New creates a Registry with every cpindex collector and the Go runtime
// collector registered.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Outbound HTTP requests by data source and status code.",
		}, []string{"source", "code"}),
		httpRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_retries_total",
			Help:      "Retried outbound HTTP requests by data source.",
		}, []string{"source"}),
		monthsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "months_fetched_total",
			Help:      "Monthly CPI values fetched by locale.",
		}, []string{"locale"}),
		pdfPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pdf_pages_scanned_total",
			Help:      "PDF pages scanned for the UCPI section.",
		}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a complete series fetch by locale.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"locale"}),
		heapAlloc: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heap_alloc_bytes",
			Help:      "Heap bytes in use at the end of the run.",
		}),
	}

	r.reg.MustRegister(
		r.httpRequests,
		r.httpRetries,
		r.monthsFetched,
		r.pdfPages,
		r.fetchDuration,
		r.heapAlloc,
		collectors.NewGoCollector(),
	)
	return r
}

// ObserveRequest counts one completed request. A zero code means the
// request failed before a response arrived.
func (r *Registry) ObserveRequest(source string, code int) {
	if r == nil {
		return
	}
	label := "error"
	if code != 0 {
		label = strconv.Itoa(code)
	}
	r.httpRequests.WithLabelValues(source, label).Inc()
}

// ObserveRetry counts one retry.
func (r *Registry) ObserveRetry(source string) {
	if r == nil {
		return
	}
	r.httpRetries.WithLabelValues(source).Inc()
}

// AddMonths counts fetched months for locale.
func (r *Registry) AddMonths(locale string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.monthsFetched.WithLabelValues(locale).Add(float64(n))
}

// AddPDFPages counts scanned PDF pages.
func (r *Registry) AddPDFPages(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.pdfPages.Add(float64(n))
}

// ObserveFetch records the duration of a complete fetch.
func (r *Registry) ObserveFetch(locale string, d time.Duration) {
	if r == nil {
		return
	}
	r.fetchDuration.WithLabelValues(locale).Observe(d.Seconds())
}

// RecordMemory stores the heap reading of snap.
func (r *Registry) RecordMemory(snap MemorySnapshot) {
	if r == nil {
		return
	}
	r.heapAlloc.Set(float64(snap.HeapAlloc))
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

// WriteTextfile writes the registry to path in the Prometheus text format.
// The file is written to a temporary name and renamed, so a collector never
// reads a partial file.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.Gatherer())
}
