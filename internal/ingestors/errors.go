package ingestors

import (
	"fmt"

	"access-insights/internal/shared/svcerrors"
)

// IntakeService errors
const (
	codeValidationFailed      = "ING_1000"
	codeBatchAlreadyProcessed = "ING_1001"

	codeInternalRawBatchStoreFailed  = "ING_9000"
	codeInternalBatchPublisherFailed = "ING_9001"
)

// errValidationFailed returns an error for validation failures.
func errValidationFailed(msg string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeValidationFailed, msg, cause)
}

// errBatchAlreadyProcessed returns an error when a batch with the same idempotency key was already accepted.
func errBatchAlreadyProcessed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewResourceConflictError(codeBatchAlreadyProcessed, "batch already processed", cause)
}

// errInternalRawBatchStoreFailed returns an error when storing the raw batch fails.
func errInternalRawBatchStoreFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalRawBatchStoreFailed, fmt.Errorf("rawBatchStoreFailed: %w", cause))
}

// errInternalBatchPublisherFailed returns an error when publishing batch events fails.
func errInternalBatchPublisherFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalBatchPublisherFailed, fmt.Errorf("batchPublisherFailed: %w", cause))
}
