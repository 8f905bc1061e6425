// Package metrics exposes the Prometheus instruments published by the
// serve command.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/its-dedsec/urlsentry/internal/scan"
)

// Metrics bundles the scan instruments behind one registry. A nil
// *Metrics is a no-op so callers can run without observability wired.
type Metrics struct {
	registry *prometheus.Registry

	scansTotal     *prometheus.CounterVec
	scanDuration   prometheus.Histogram
	providerChecks *prometheus.CounterVec
}

// New builds a registry carrying process and Go runtime collectors plus
// the scan instruments.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: reg,
		scansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "urlsentry_scans_total",
			Help: "Completed scans by overall risk.",
		}, []string{"risk"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "urlsentry_scan_duration_seconds",
			Help:    "Wall time of complete scan fan-outs.",
			Buckets: prometheus.DefBuckets,
		}),
		providerChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "urlsentry_provider_checks_total",
			Help: "Individual checks by name and status.",
		}, []string{"check", "status"}),
	}
	reg.MustRegister(m.scansTotal, m.scanDuration, m.providerChecks)

	return m
}

// ObserveScan records one completed scan fan-out.
func (m *Metrics) ObserveScan(result scan.Result, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.scansTotal.WithLabelValues(string(result.Risk)).Inc()
	m.scanDuration.Observe(elapsed.Seconds())
	for _, c := range result.Checks {
		m.providerChecks.WithLabelValues(c.Name, string(c.Status)).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
