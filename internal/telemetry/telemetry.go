// Package telemetry exports Prometheus metrics for card scanning.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "b2breeze"

// Pipeline stages used as label values.
const (
	StageIngest = "ingest"
	StageOCR    = "ocr"
	StageParse  = "parse"
	StageRefine = "refine"
)

// Metrics holds all scan Prometheus metrics
type Metrics struct {
	// Processing metrics
	StageTotal    *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	OCRConfidence prometheus.Histogram

	// Extraction metrics
	FieldsFound *prometheus.CounterVec
	NeedsReview prometheus.Counter

	// Intake metrics
	FilesIngested *prometheus.CounterVec

	// Backpressure metrics
	QueueDepth    prometheus.Gauge
	ActiveWorkers prometheus.Gauge
}

// Provider owns a private registry so several providers (tests, embedded
// servers) can coexist. A nil *Provider records nothing.
type Provider struct {
	Metrics  *Metrics
	registry *prometheus.Registry
}

func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Provider{Metrics: initMetrics(promauto.With(reg)), registry: reg}
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *Provider) Registry() *prometheus.Registry { return p.registry }

func initMetrics(f promauto.Factory) *Metrics {
	m := &Metrics{}
	m.StageTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_total",
		Help:      "Pipeline stage runs by outcome",
	}, []string{"stage", "outcome"})

	m.StageDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Time spent in a pipeline stage",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"stage"})

	m.OCRConfidence = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ocr_confidence",
		Help:      "Blended OCR confidence per scan",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
	})

	m.FieldsFound = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fields_found_total",
		Help:      "Contact fields recovered from card text",
	}, []string{"field"})

	m.NeedsReview = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_needs_review_total",
		Help:      "Scans flagged for manual review",
	})

	m.FilesIngested = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_ingested_total",
		Help:      "Card files seen by intake by result (new, duplicate, skipped, error)",
	}, []string{"result"})

	m.QueueDepth = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Scan jobs waiting for a worker",
	})

	m.ActiveWorkers = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_workers",
		Help:      "Workers currently processing a scan",
	})
	return m
}

// RecordStage counts one stage run and observes its duration.
func (p *Provider) RecordStage(stage string, err error, d time.Duration) {
	if p == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.Metrics.StageTotal.WithLabelValues(stage, outcome).Inc()
	p.Metrics.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordExtraction records what one parse produced.
func (p *Provider) RecordExtraction(found []string, confidence float32, needsReview bool) {
	if p == nil {
		return
	}
	for _, f := range found {
		p.Metrics.FieldsFound.WithLabelValues(f).Inc()
	}
	p.Metrics.OCRConfidence.Observe(float64(confidence))
	if needsReview {
		p.Metrics.NeedsReview.Inc()
	}
}

func (p *Provider) RecordIngest(result string) {
	if p == nil {
		return
	}
	p.Metrics.FilesIngested.WithLabelValues(result).Inc()
}

func (p *Provider) SetQueueDepth(n int) {
	if p == nil {
		return
	}
	p.Metrics.QueueDepth.Set(float64(n))
}

// WorkerStarted bumps the active worker gauge; call the returned func when done.
func (p *Provider) WorkerStarted() func() {
	if p == nil {
		return func() {}
	}
	p.Metrics.ActiveWorkers.Inc()
	return p.Metrics.ActiveWorkers.Dec
}
