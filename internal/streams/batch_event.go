package streams

import (
	"access-insights/internal/models"
)

// BatchEvent is one unit of pipeline work: run a single aggregation kind
// over a single raw batch. The producer emits one event per kind for each
// accepted batch.
type BatchEvent struct {
	Kind  models.AggregationKind
	Batch *models.RawBatch
}
