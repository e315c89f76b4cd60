package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"access-insights/internal/ingestors"
	ingestormocks "access-insights/internal/ingestors/mocks"
	"access-insights/internal/shared/svcerrors"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const sampleBatch = `1.2.3.4 - - [10/Oct/2020:13:55:36 -0700] "GET /index HTTP/1.1" 200 1024 "-" "curl/7.0"`

func TestIngestBatchHandler_Handle_Success(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIntakeService := ingestormocks.NewMockIntakeService(ctrl)
	handler := NewIngestBatchHandler(mockIntakeService)

	req := httptest.NewRequest(http.MethodPost, "/batches", bytes.NewReader([]byte(sampleBatch)))
	req.Header.Set(headerIdempotencyKey, "key123")
	rr := httptest.NewRecorder()

	batchTime := time.Date(2020, 10, 10, 20, 55, 40, 0, time.UTC)
	mockIntakeService.EXPECT().
		IngestBatch(gomock.Any(), "key123", gomock.Any()).
		Return(&ingestors.IngestResult{BatchID: "key123", BatchTime: batchTime, LineCount: 1}, nil)

	err := handler.Handle(rr, req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, rr.Code)

	var response IngestBatchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "key123", response.BatchID)
	assert.True(t, batchTime.Equal(response.BatchTime))
	assert.Equal(t, 1, response.LineCount)
}

func TestIngestBatchHandler_Handle_Error(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIntakeService := ingestormocks.NewMockIntakeService(ctrl)
	handler := NewIngestBatchHandler(mockIntakeService)

	req := httptest.NewRequest(http.MethodPost, "/batches", bytes.NewReader([]byte(sampleBatch)))
	rr := httptest.NewRecorder()

	expectedErr := svcerrors.NewInvalidArgumentError("TEST_1000", "validation failed", nil)
	mockIntakeService.EXPECT().
		IngestBatch(gomock.Any(), "", gomock.Any()).
		Return(nil, expectedErr)

	err := handler.Handle(rr, req)

	require.Error(t, err)
	svcErr, ok := svcerrors.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "TEST_1000", svcErr.Code)
}

func TestRouter_PostBatches_ErrorResponseBody(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIntakeService := ingestormocks.NewMockIntakeService(ctrl)
	mockIntakeService.EXPECT().
		IngestBatch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, svcerrors.NewInvalidArgumentError("ING_1000", "batch cannot be empty", nil))

	router := NewRouter(mockIntakeService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/batches", bytes.NewReader(nil))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "ING_1000", response.ErrorCode)
	assert.Equal(t, "invalid_argument", response.ErrorCategory)
	assert.NotEmpty(t, response.RequestID)
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(ingestormocks.NewMockIntakeService(ctrl), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
