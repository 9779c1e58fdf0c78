// Package metrics provides Prometheus metrics for the interview agent.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "interview_agent"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter

	// Question metrics
	QuestionsGenerated prometheus.Counter
	AnswersSubmitted   prometheus.Counter
	AnswersEvaluated   prometheus.Counter

	// Audio metrics
	AudioPregenerated prometheus.Counter
	SynthesisFailures prometheus.Counter

	// Background pass metrics
	TranscriptionFailures prometheus.Counter
	EvaluationFailures    prometheus.Counter

	// Port latencies
	SynthesisLatency     prometheus.Histogram
	TranscriptionLatency prometheus.Histogram
	EvaluationLatency    prometheus.Histogram

	// HTTP metrics
	RequestsTotal *prometheus.CounterVec
}

// Default is the global metrics instance.
var Default = New()

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of interview sessions started",
		}),
		SessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Total number of interview sessions explicitly ended",
		}),
		QuestionsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_generated_total",
			Help:      "Total number of interview questions generated",
		}),
		AnswersSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_submitted_total",
			Help:      "Total number of spoken answers submitted",
		}),
		AnswersEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_evaluated_total",
			Help:      "Total number of answers successfully evaluated",
		}),
		AudioPregenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_pregenerated_total",
			Help:      "Total number of question audio files synthesized",
		}),
		SynthesisFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_failures_total",
			Help:      "Total number of failed audio synthesis calls",
		}),
		TranscriptionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_failures_total",
			Help:      "Total number of failed transcription calls",
		}),
		EvaluationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluation_failures_total",
			Help:      "Total number of failed answer evaluations",
		}),
		SynthesisLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_latency_seconds",
			Help:      "Latency of text-to-speech synthesis calls",
			Buckets:   prometheus.DefBuckets,
		}),
		TranscriptionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_latency_seconds",
			Help:      "Latency of speech-to-text transcription calls",
			Buckets:   []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		EvaluationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_latency_seconds",
			Help:      "Latency of answer evaluation calls",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method and status",
		}, []string{"method", "status"}),
	}
}
