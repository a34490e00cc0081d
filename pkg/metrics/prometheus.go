package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	verdicts       *prometheus.CounterVec
	feedFetches    *prometheus.CounterVec
	feedArticles   *prometheus.GaugeVec
	snapshotAge    prometheus.Gauge
	predictions    *prometheus.CounterVec
	modelAvailable *prometheus.GaugeVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder on reg; tests pass a fresh prometheus.NewRegistry().
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crediscan_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crediscan_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		verdicts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crediscan_verdicts_total",
				Help: "Analyses by verdict level and model availability",
			},
			[]string{"level", "model"},
		),
		feedFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crediscan_feed_fetches_total",
				Help: "Feed fetch attempts by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		feedArticles: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crediscan_feed_articles",
				Help: "Articles returned by the last successful fetch of a source",
			},
			[]string{"source"},
		),
		snapshotAge: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "crediscan_news_snapshot_age_seconds",
				Help: "Age of the news snapshot used by the last relevance check",
			},
		),
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crediscan_model_predictions_total",
				Help: "Model prediction attempts by backend and outcome",
			},
			[]string{"backend", "outcome"},
		),
		modelAvailable: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crediscan_model_available",
				Help: "1 when the model backend loaded successfully",
			},
			[]string{"backend"},
		),
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordVerdict(level string, modelAvailable bool) {
	model := "absent"
	if modelAvailable {
		model = "present"
	}
	r.verdicts.WithLabelValues(level, model).Inc()
}

func (r *Recorder) RecordFeedFetch(source string, ok bool, articles int) {
	if !ok {
		r.feedFetches.WithLabelValues(source, "error").Inc()
		return
	}
	r.feedFetches.WithLabelValues(source, "ok").Inc()
	r.feedArticles.WithLabelValues(source).Set(float64(articles))
}

func (r *Recorder) RecordSnapshotAge(seconds float64) {
	r.snapshotAge.Set(seconds)
}

func (r *Recorder) RecordPrediction(backend, outcome string) {
	r.predictions.WithLabelValues(backend, outcome).Inc()
}

func (r *Recorder) SetModelAvailable(backend string, ok bool) {
	v := 0.0
	if ok {
		v = 1
	}
	r.modelAvailable.WithLabelValues(backend).Set(v)
}
