package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio"

// Metrics tracks upstream calls, sync outcomes and contact intake. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	upstreamCalls   prometheus.Counter
	upstreamErrors  prometheus.Counter
	upstreamLatency prometheus.Histogram

	syncs *prometheus.CounterVec

	contacts             prometheus.Counter
	notificationFailures prometheus.Counter
}

// New registers all collectors on a private registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "requests_total",
			Help:      "Requests made to the GitHub API.",
		}),
		upstreamErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "errors_total",
			Help:      "GitHub API requests that failed or returned a non-2xx status.",
		}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "request_duration_seconds",
			Help:      "Latency of GitHub API requests.",
			Buckets:   prometheus.DefBuckets,
		}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projects",
			Name:      "syncs_total",
			Help:      "Project sync cycles by the tier that produced the result.",
		}, []string{"source"}),
		contacts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contacts",
			Name:      "submissions_total",
			Help:      "Accepted contact submissions.",
		}),
		notificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contacts",
			Name:      "notification_failures_total",
			Help:      "Contact notifications that could not be delivered.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.upstreamCalls,
		m.upstreamErrors,
		m.upstreamLatency,
		m.syncs,
		m.contacts,
		m.notificationFailures,
	)
	return m
}

// RecordUpstreamCall records one GitHub API call.
func (m *Metrics) RecordUpstreamCall(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.upstreamCalls.Inc()
	m.upstreamLatency.Observe(duration.Seconds())
	if err != nil {
		m.upstreamErrors.Inc()
	}
}

// RecordSync records a finished sync cycle and where its result came from.
func (m *Metrics) RecordSync(source string) {
	if m == nil {
		return
	}
	m.syncs.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordContact() {
	if m == nil {
		return
	}
	m.contacts.Inc()
}

func (m *Metrics) RecordNotificationFailure() {
	if m == nil {
		return
	}
	m.notificationFailures.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
