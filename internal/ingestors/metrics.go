package ingestors

import (
	"access-insights/internal/shared/metrics"
)

var (
	metricBatchIngestedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIntake,
			Name:      "batch_ingested_total",
		},
		[]string{metrics.FieldErrorCode},
	)
)
