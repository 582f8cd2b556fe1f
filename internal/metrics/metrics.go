package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "disbursement"

// Record outcomes of a certificate generation run
const (
	OutcomeIncluded      = "included"
	OutcomeBlocked       = "blocked"
	OutcomeEncodingError = "encoding_error"
)

// Line outcomes of a feedback file
const (
	OutcomeMatched       = "matched"
	OutcomeUnmatched     = "unmatched"
	OutcomeDecodingError = "decoding_error"
)

// Recorder owns the engine collectors. Methods are safe on a nil Recorder so
// services can run without metrics in tests.
type Recorder struct {
	registry *prometheus.Registry

	ecertRecords        *prometheus.CounterVec
	feedbackLines       *prometheus.CounterVec
	sequenceAllocations *prometheus.CounterVec
	batchDuration       *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ecertRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ecert_records_total",
				Help:      "Disbursements considered for e-Cert files by outcome.",
			},
			[]string{"intensity", "outcome"},
		),
		feedbackLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feedback_lines_total",
				Help:      "Response file detail lines by outcome.",
			},
			[]string{"outcome"},
		),
		sequenceAllocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sequence_allocations_total",
				Help:      "Values handed out per named sequence.",
			},
			[]string{"sequence"},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Duration of batch jobs.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
			},
			[]string{"job"},
		),
	}

	r.registry.MustRegister(
		r.ecertRecords,
		r.feedbackLines,
		r.sequenceAllocations,
		r.batchDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return r
}

// Handler exposes the registry for scraping
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) RecordECertRecords(intensity, outcome string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.ecertRecords.WithLabelValues(intensity, outcome).Add(float64(n))
}

func (r *Recorder) RecordFeedbackLines(outcome string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.feedbackLines.WithLabelValues(outcome).Add(float64(n))
}

func (r *Recorder) RecordSequenceAllocation(sequence string) {
	if r == nil {
		return
	}
	r.sequenceAllocations.WithLabelValues(sequence).Inc()
}

// ObserveBatch records the time elapsed since start
func (r *Recorder) ObserveBatch(job string, start time.Time) {
	if r == nil {
		return
	}
	r.batchDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}
