package ingestors

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"access-insights/internal/archivers"
	"access-insights/internal/models"
	"access-insights/internal/shared/loggers"
	"access-insights/internal/shared/metrics"
	"access-insights/internal/shared/svcerrors"
	"access-insights/internal/shared/ulid"
	"access-insights/internal/stores"
	"access-insights/internal/streams"
)

const maxBatchBytes = 4 * 1024 * 1024

// IngestResult represents the result of a batch intake operation.
type IngestResult struct {
	BatchID   string
	BatchTime time.Time
	LineCount int
}

// IntakeService accepts a raw access-log blob, makes it durable, and hands
// it off to the batch stream. Malformed lines are not rejected here: intake
// stores whatever arrived and lets the pipelines drop what does not parse.
//
//go:generate mockgen -source=intake_service.go -destination=./mocks/intake_service_mock.go -package=mocks
type IntakeService interface {
	// IngestBatch reads one batch of raw log lines from r. A non-empty
	// idempotencyKey becomes the batch ID; duplicates are rejected with a
	// conflict error.
	IngestBatch(ctx context.Context, idempotencyKey string, r io.Reader) (*IngestResult, error)
}

type intakeService struct {
	rawBatchStore stores.RawBatchStore
	producer      streams.BatchProducer
	archiver      archivers.Archiver

	now func() time.Time
}

// NewIntakeService wires the intake path. archiver may be nil when off-site
// archival is disabled.
func NewIntakeService(rawBatchStore stores.RawBatchStore, producer streams.BatchProducer, archiver archivers.Archiver) IntakeService {
	return &intakeService{
		rawBatchStore: rawBatchStore,
		producer:      producer,
		archiver:      archiver,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *intakeService) IngestBatch(ctx context.Context, idempotencyKey string, r io.Reader) (*IngestResult, error) {
	logger := loggers.Ctx(ctx)
	logger.Debug().Msgf("started ingesting batch with idempotency key: %s", idempotencyKey)

	lines, lineCount, err := s.validateBatch(r)
	if err != nil {
		if svcErr, ok := svcerrors.AsServiceError(err); ok {
			metricBatchIngestedTotal.WithLabelValues(svcErr.Code).Inc()
		}
		return nil, err
	}

	batchID := strings.TrimSpace(idempotencyKey)
	if batchID == "" {
		batchID = ulid.NewULID()
	}

	batch := &models.RawBatch{
		BatchID:   batchID,
		BatchTime: s.now(),
		Lines:     lines,
	}

	if err := s.rawBatchStore.Put(ctx, batch); err != nil {
		if errors.Is(err, stores.ErrRawBatchAlreadyExists) {
			svcError := errBatchAlreadyProcessed(err)
			metricBatchIngestedTotal.WithLabelValues(svcError.Code).Inc()
			return nil, svcError
		}
		svcError := errInternalRawBatchStoreFailed(err)
		metricBatchIngestedTotal.WithLabelValues(svcError.Code).Inc()
		return nil, svcError
	}

	if s.archiver != nil {
		// The batch is already durable locally; a failed off-site copy is
		// logged and does not fail intake.
		if err := s.archiver.Archive(ctx, batch); err != nil {
			logger.Warn().Err(err).Str(loggers.FieldBatchID, batch.BatchID).Msg("batch archive failed")
		}
	}

	if err := s.producer.Produce(ctx, batch); err != nil {
		svcError := errInternalBatchPublisherFailed(err)
		metricBatchIngestedTotal.WithLabelValues(svcError.Code).Inc()
		return nil, svcError
	}

	metricBatchIngestedTotal.WithLabelValues(metrics.ValueNoError).Inc()
	return &IngestResult{BatchID: batch.BatchID, BatchTime: batch.BatchTime, LineCount: lineCount}, nil
}

func (s *intakeService) validateBatch(r io.Reader) (string, int, error) {
	if r == nil {
		return "", 0, errValidationFailed("empty request body", nil)
	}

	buf, err := readWithLimit(r, maxBatchBytes)
	if err != nil {
		return "", 0, err
	}

	blob := string(buf)
	if strings.TrimSpace(blob) == "" {
		return "", 0, errValidationFailed("batch cannot be empty", nil)
	}

	return blob, countLines(blob), nil
}

// readWithLimit reads up to max+1 bytes from r and checks if it exceeds max.
func readWithLimit(r io.Reader, max int) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r, int64(max+1)))
	if err != nil {
		return nil, errValidationFailed("failed to read request body", err)
	}
	if len(buf) > max {
		return nil, errValidationFailed("batch too large: must be <= 4MB", nil)
	}
	return buf, nil
}

func countLines(blob string) int {
	blob = strings.TrimSuffix(blob, "\n")
	if blob == "" {
		return 0
	}
	return strings.Count(blob, "\n") + 1
}
