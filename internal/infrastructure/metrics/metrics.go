package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesProcessed counts pipeline runs by outcome (ok, error, duplicate).
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genbot_messages_processed_total",
		Help: "Inbound messages processed by the pipeline, labeled by outcome.",
	}, []string{"outcome"})

	// GenerationFallbacks counts degraded generation results by kind.
	GenerationFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genbot_generation_fallbacks_total",
		Help: "Generation calls that degraded to the fixed fallback, labeled by kind.",
	}, []string{"kind"})

	// QueueDrops counts webhook tasks dropped because the queue was full.
	QueueDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genbot_queue_drops_total",
		Help: "Webhook tasks dropped because the processing queue was full.",
	})

	// QueueDepth tracks the number of tasks waiting in the processing queue.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "genbot_queue_depth",
		Help: "Tasks currently waiting in the processing queue.",
	})

	// PipelineDuration observes per-message pipeline latency.
	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "genbot_pipeline_duration_seconds",
		Help:    "Time spent processing one inbound message end to end.",
		Buckets: prometheus.DefBuckets,
	})
)

// Pipeline outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeDuplicate = "duplicate"
)
