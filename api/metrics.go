package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the analysis API
type Metrics struct {
	registry *prometheus.Registry

	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	precisionScores  prometheus.Histogram
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
}

// NewMetrics creates the API metric collectors and registers them on
// the given registry. A nil registry gets a private one, which keeps
// parallel test servers from colliding.
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harmonia_analyses_total",
			Help: "Total number of analysis requests by outcome",
		}, []string{"status"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "harmonia_analysis_duration_seconds",
			Help:    "Time taken for one full score analysis",
			Buckets: prometheus.DefBuckets,
		}),
		precisionScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "harmonia_precision_score",
			Help:    "Distribution of cross-validation precision scores",
			Buckets: prometheus.LinearBuckets(0, 0.05, 21),
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harmonia_cache_hits_total",
			Help: "Analysis results served from the upload cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harmonia_cache_misses_total",
			Help: "Analysis uploads that were not cached",
		}),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.analysesTotal,
		m.analysisDuration,
		m.precisionScores,
		m.cacheHits,
		m.cacheMisses,
	}
}

// Describe implements prometheus.Collector
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// RecordAnalysis counts one analysis request and its duration
func (m *Metrics) RecordAnalysis(status string, seconds float64) {
	m.analysesTotal.WithLabelValues(status).Inc()
	m.analysisDuration.Observe(seconds)
}

// RecordPrecision tracks a measured overall precision score
func (m *Metrics) RecordPrecision(score float64) {
	m.precisionScores.Observe(score)
}

// RecordCacheHit counts an upload served from the result cache
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Inc()
}

// RecordCacheMiss counts an upload that had to be analyzed
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Inc()
}

// Handler exposes the registry in Prometheus text format
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
