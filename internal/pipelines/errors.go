package pipelines

import (
	"access-insights/internal/shared/svcerrors"
)

const (
	errorCodeAggregationFailed = "PIPE_9000"
	errorCodeMergeFailed       = "PIPE_9001"
)

func errInternalAggregationFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(errorCodeAggregationFailed, cause)
}

func errInternalMergeFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(errorCodeMergeFailed, cause)
}
