// Package metrics holds the Prometheus collectors and OpenTelemetry spans
// recorded by builds and the dev server.
//
// Metrics collected:
//   - ssg_pages_rendered_total: pages rendered by adapter kind and status
//   - ssg_page_render_duration_seconds: page render duration
//   - ssg_critical_duration_seconds: critical CSS processing duration
//   - ssg_loader_requests_total: loader sub-requests by status code
//   - ssg_dev_requests_total: dev server page requests by status code
//   - ssg_dev_request_duration_seconds: dev server page request duration
//   - ssg_build_duration_seconds: last build wall time
//   - ssg_build_pages: pages written by the last build
//
// A nil *Metrics records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "ssg").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives the collectors. Default: a fresh registry.
	Registry *prometheus.Registry
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "ssg",
		Buckets:   prometheus.DefBuckets,
	}
}

// Metrics records build and dev server activity.
type Metrics struct {
	registry *prometheus.Registry

	pagesRendered  *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	criticalTime   prometheus.Histogram
	loaderRequests *prometheus.CounterVec
	devRequests    *prometheus.CounterVec
	devDuration    prometheus.Histogram
	buildDuration  prometheus.Gauge
	buildPages     prometheus.Gauge
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		registry: config.Registry,

		pagesRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "pages_rendered_total",
			Help:        "Total number of pages rendered",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "page_render_duration_seconds",
			Help:        "Page render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		criticalTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "critical_duration_seconds",
			Help:        "Critical CSS processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		loaderRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "loader_requests_total",
			Help:        "Total number of loader data requests",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		devRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "dev_requests_total",
			Help:        "Total number of dev server page requests",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		devDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "dev_request_duration_seconds",
			Help:        "Dev server page request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		buildDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "build_duration_seconds",
			Help:        "Wall time of the last build in seconds",
			ConstLabels: config.ConstLabels,
		}),

		buildPages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "build_pages",
			Help:        "Number of pages written by the last build",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordPage records one page render.
func (m *Metrics) RecordPage(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.pagesRendered.WithLabelValues(kind, status).Inc()
	m.renderDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordCritical records one critical CSS pass.
func (m *Metrics) RecordCritical(d time.Duration) {
	if m == nil {
		return
	}
	m.criticalTime.Observe(d.Seconds())
}

// RecordLoader records a loader sub-request.
func (m *Metrics) RecordLoader(code int) {
	if m == nil {
		return
	}
	m.loaderRequests.WithLabelValues(strconv.Itoa(code)).Inc()
}

// RecordDevRequest records a dev server page request.
func (m *Metrics) RecordDevRequest(code int, d time.Duration) {
	if m == nil {
		return
	}
	m.devRequests.WithLabelValues(strconv.Itoa(code)).Inc()
	m.devDuration.Observe(d.Seconds())
}

// RecordBuild records a finished build.
func (m *Metrics) RecordBuild(pages int, d time.Duration) {
	if m == nil {
		return
	}
	m.buildPages.Set(float64(pages))
	m.buildDuration.Set(d.Seconds())
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the collectors to path for the node exporter
// textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
