package streams

import (
	"access-insights/internal/shared/metrics"
)

var (
	streamBatchEvents = "batch_events"

	metricBatchEventProducedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "batch_event_published_total",
		},
		[]string{"stream_id", "aggregation_kind"},
	)

	metricBatchEventConsumedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "batch_event_consumed_total",
		},
		[]string{"stream_id", "aggregation_kind", metrics.FieldErrorCode},
	)
)
