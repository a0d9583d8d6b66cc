// Package telemetry provides OpenTelemetry tracing and Prometheus metrics
// for veracity.
package telemetry

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "veracity"

// Metrics holds all veracity Prometheus metrics
type Metrics struct {
	// Analysis metrics
	AnalysesTotal     *prometheus.CounterVec
	AnalysisFailures  *prometheus.CounterVec
	AnalysisDuration  *prometheus.HistogramVec
	ScoreDistribution *prometheus.HistogramVec
	BatchSize         *prometheus.HistogramVec

	// Feature metrics
	LexiconMatchDuration prometheus.Histogram
	FacesDetected        prometheus.Histogram

	// Dependency metrics
	ModelFallbacks *prometheus.CounterVec
	ModelLatency   *prometheus.HistogramVec
	CacheResults   *prometheus.CounterVec
}

// Provider wraps telemetry providers. A nil *Provider records nothing.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// metrics are registered on the default registry once per process
var sharedMetrics = sync.OnceValue(initMetrics)

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: sharedMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initAnalysisMetrics(m)
	initFeatureMetrics(m)
	initDependencyMetrics(m)
	return m
}

func initAnalysisMetrics(m *Metrics) {
	m.AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veracity_analyses_total",
		Help: "Total analyses by kind (text, image, comprehensive) and verdict",
	}, []string{"kind", "verdict"})

	m.AnalysisFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veracity_analysis_failures_total",
		Help: "Total analyses that failed, by kind and error code",
	}, []string{"kind", "error_code"})

	m.AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "veracity_analysis_duration_seconds",
		Help:    "Time to analyse a single item",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	}, []string{"kind"})

	m.ScoreDistribution = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "veracity_score",
		Help:    "Distribution of raw scores",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
	}, []string{"kind"})

	m.BatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "veracity_batch_size",
		Help:    "Number of items per batch request",
		Buckets: []float64{1, 5, 10, 25, 50, 100},
	}, []string{"kind"})
}

func initFeatureMetrics(m *Metrics) {
	m.LexiconMatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "veracity_lexicon_match_duration_seconds",
		Help:    "Time spent extracting text features (Aho-Corasick)",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	m.FacesDetected = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "veracity_faces_detected",
		Help:    "Faces analysed per image",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})
}

func initDependencyMetrics(m *Metrics) {
	m.ModelFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veracity_model_fallbacks_total",
		Help: "Requests that fell back to rules because a model was unavailable",
	}, []string{"model"})

	m.ModelLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "veracity_model_request_duration_seconds",
		Help:    "Latency of model sidecar and LLM calls",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"endpoint"})

	m.CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veracity_score_cache_total",
		Help: "Score cache lookups by result (hit, miss, error)",
	}, []string{"result"})
}

// RecordAnalysis records a completed analysis
func (p *Provider) RecordAnalysis(_ context.Context, kind, verdict string, score float64, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.AnalysesTotal.WithLabelValues(kind, verdict).Inc()
	p.Metrics.AnalysisDuration.WithLabelValues(kind).Observe(duration.Seconds())
	p.Metrics.ScoreDistribution.WithLabelValues(kind).Observe(score)
}

// RecordFailure records a failed analysis with error code
func (p *Provider) RecordFailure(_ context.Context, kind, errorCode string) {
	if p == nil {
		return
	}
	p.Metrics.AnalysisFailures.WithLabelValues(kind, errorCode).Inc()
}

// RecordBatchSize records the size of a batch request
func (p *Provider) RecordBatchSize(kind string, size int) {
	if p == nil {
		return
	}
	p.Metrics.BatchSize.WithLabelValues(kind).Observe(float64(size))
}

// RecordLexiconMatch records text feature extraction time
func (p *Provider) RecordLexiconMatch(duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.LexiconMatchDuration.Observe(duration.Seconds())
}

// RecordFaces records the number of faces analysed in one image
func (p *Provider) RecordFaces(count int) {
	if p == nil {
		return
	}
	p.Metrics.FacesDetected.Observe(float64(count))
}

// RecordModelFallback counts a fallback from model to rules
func (p *Provider) RecordModelFallback(model string) {
	if p == nil {
		return
	}
	p.Metrics.ModelFallbacks.WithLabelValues(model).Inc()
}

// RecordModelLatency records one model call
func (p *Provider) RecordModelLatency(endpoint string, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.ModelLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCache records a score cache lookup result
func (p *Provider) RecordCache(result string) {
	if p == nil {
		return
	}
	p.Metrics.CacheResults.WithLabelValues(result).Inc()
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if p == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
