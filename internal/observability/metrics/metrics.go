package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics covers the two operations that matter on this box: knowledge base
// builds and retrieval-augmented queries.
type Metrics struct {
	registry *prometheus.Registry

	buildTotal    *prometheus.CounterVec
	buildDuration prometheus.Histogram
	buildChunks   prometheus.Gauge

	queryTotal    *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	querySources  prometheus.Histogram
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	buildTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "mantis",
			Subsystem:   "build",
			Name:        "total",
			Help:        "Total knowledge base builds by status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	buildDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "mantis",
			Subsystem:   "build",
			Name:        "duration_seconds",
			Help:        "Knowledge base build duration in seconds.",
			Buckets:     []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			ConstLabels: constLabels,
		},
	)
	buildChunks := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "mantis",
			Subsystem:   "build",
			Name:        "chunks",
			Help:        "Chunk count of the most recent successful build.",
			ConstLabels: constLabels,
		},
	)
	queryTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "mantis",
			Subsystem:   "query",
			Name:        "total",
			Help:        "Total queries by status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "mantis",
			Subsystem:   "query",
			Name:        "duration_seconds",
			Help:        "End-to-end query duration in seconds by status.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	querySources := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "mantis",
			Subsystem:   "query",
			Name:        "sources",
			Help:        "Number of chunks retrieved per query.",
			Buckets:     []float64{0, 1, 2, 3, 4, 5, 8, 10},
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(buildTotal, buildDuration, buildChunks, queryTotal, queryDuration, querySources)

	return &Metrics{
		registry:      registry,
		buildTotal:    buildTotal,
		buildDuration: buildDuration,
		buildChunks:   buildChunks,
		queryTotal:    queryTotal,
		queryDuration: queryDuration,
		querySources:  querySources,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveBuild(duration time.Duration, chunks int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.buildTotal.WithLabelValues(status).Inc()
	m.buildDuration.Observe(duration.Seconds())
	if err == nil {
		m.buildChunks.Set(float64(chunks))
	}
}

func (m *Metrics) ObserveQuery(duration time.Duration, sources int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.queryTotal.WithLabelValues(status).Inc()
	m.queryDuration.WithLabelValues(status).Observe(duration.Seconds())
	if err == nil {
		m.querySources.Observe(float64(sources))
	}
}
