package streams

import (
	"context"

	"access-insights/internal/models"
)

// BatchProducer fans one accepted batch out into per-kind BatchEvents.
//
// Partition strategy: the partition key is the aggregation kind, so every
// batch for a given kind lands in the same partition and is processed by a
// single consumer worker, in arrival order. That worker is the only writer
// touching that kind's counter keyspace, which is what lets the counter
// store run read-modify-write without locks. Different kinds hash to
// different partitions and proceed in parallel.
//
//go:generate mockgen -source=batch_producer.go -destination=./mocks/batch_producer_mock.go -package=mocks
type BatchProducer interface {
	Produce(ctx context.Context, batch *models.RawBatch) error
}

type batchProducer struct {
	queue *PartitionedQueue[BatchEvent]
}

func NewBatchProducer(queue *PartitionedQueue[BatchEvent]) BatchProducer {
	return &batchProducer{queue: queue}
}

func (producer *batchProducer) Produce(ctx context.Context, batch *models.RawBatch) error {
	for _, kind := range models.Kinds() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		producer.queue.Publish(string(kind), BatchEvent{Kind: kind, Batch: batch})
		metricBatchEventProducedTotal.WithLabelValues(streamBatchEvents, string(kind)).Inc()
	}
	return nil
}
