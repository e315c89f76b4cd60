package streams

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"access-insights/internal/models"
	"access-insights/internal/pipelines"
	"access-insights/internal/shared/loggers"
	"access-insights/internal/shared/metrics"
	"access-insights/internal/shared/svcerrors"
	"access-insights/internal/shared/ulid"
)

//go:generate mockgen -source=batch_consumer.go -destination=./mocks/batch_consumer_mock.go -package=mocks
type BatchConsumer interface {
	Start(ctx context.Context)
	Stop()
}

type batchConsumer struct {
	queue     *PartitionedQueue[BatchEvent]
	pipelines map[models.AggregationKind]pipelines.BatchPipeline

	wg sync.WaitGroup

	stopOnce sync.Once
	stopCh   chan struct{}

	logger loggers.Logger
}

func NewBatchConsumer(queue *PartitionedQueue[BatchEvent], batchPipelines []pipelines.BatchPipeline, logger loggers.Logger) BatchConsumer {
	byKind := make(map[models.AggregationKind]pipelines.BatchPipeline, len(batchPipelines))
	for _, pipeline := range batchPipelines {
		byKind[pipeline.Kind()] = pipeline
	}
	return &batchConsumer{
		queue:     queue,
		pipelines: byKind,
		stopCh:    make(chan struct{}),
		logger:    logger,
	}
}

// Start spawns one worker goroutine per partition. Each partition is a
// single-writer lane for the aggregation kinds routed to it by the producer.
func (consumer *batchConsumer) Start(ctx context.Context) {
	for partitionIndex := 0; partitionIndex < consumer.queue.PartitionCount(); partitionIndex++ {
		ch := consumer.queue.partitions[partitionIndex]
		consumer.wg.Add(1)
		go func() {
			defer consumer.wg.Done()

			consumer.runPartitionWorker(ctx, partitionIndex, ch)
		}()
	}
}

// Stop waits for workers to stop (best called during app shutdown).
func (consumer *batchConsumer) Stop() {
	consumer.stopOnce.Do(func() { close(consumer.stopCh) })
	consumer.wg.Wait()
}

func (consumer *batchConsumer) runPartitionWorker(ctx context.Context, partitionIndex int, ch <-chan BatchEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-consumer.stopCh:
			return
		case event := <-ch:
			consumer.handleEvent(ctx, partitionIndex, event)
		}
	}
}

func (consumer *batchConsumer) handleEvent(ctx context.Context, partitionIndex int, event BatchEvent) {
	defer func() {
		if r := recover(); r != nil {
			loggers.Ctx(ctx).Error().
				Bytes(loggers.FieldErrorStack, debug.Stack()).
				Msg("consumer panic recovered")

			var panicErr error
			if err, ok := r.(error); ok {
				panicErr = err
			} else {
				panicErr = fmt.Errorf("%v", r)
			}

			svcErr := svcerrors.NewInternalErrorPanic(panicErr)
			metricBatchEventConsumedTotal.WithLabelValues(streamBatchEvents, string(event.Kind), svcErr.Code).Inc()
		}
	}()

	ctx = consumer.logger.With().
		Str(loggers.FieldPartitionId, fmt.Sprintf("%d", partitionIndex)).
		Str(loggers.FieldRequestID, ulid.NewULID()).
		Str(loggers.FieldBatchID, event.Batch.BatchID).
		Str(loggers.FieldKind, string(event.Kind)).
		Logger().WithContext(ctx)

	pipeline := consumer.pipelines[event.Kind]
	if pipeline == nil {
		loggers.Ctx(ctx).Error().Msg("no pipeline registered for aggregation kind")
		svcErr := svcerrors.NewInternalErrorUndefined(fmt.Errorf("no pipeline for kind %s", event.Kind))
		metricBatchEventConsumedTotal.WithLabelValues(streamBatchEvents, string(event.Kind), svcErr.Code).Inc()
		return
	}

	if svcErr := pipeline.Process(ctx, event.Batch); svcErr != nil {
		loggers.Ctx(ctx).Error().
			Err(svcErr).
			Str(loggers.FieldErrorCode, svcErr.Code).
			Msg("batch pipeline failed")
		metricBatchEventConsumedTotal.WithLabelValues(streamBatchEvents, string(event.Kind), svcErr.Code).Inc()
		return
	}
	metricBatchEventConsumedTotal.WithLabelValues(streamBatchEvents, string(event.Kind), metrics.ValueNoError).Inc()
}
