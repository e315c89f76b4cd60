package http

import (
	"encoding/json"
	"net/http"
	"time"

	"access-insights/internal/ingestors"
)

type AppHttpHandler interface {
	Handle(w http.ResponseWriter, r *http.Request) error
}

// IngestBatchResponse is the body of a successful POST /batches.
type IngestBatchResponse struct {
	BatchID   string    `json:"batchId"`
	BatchTime time.Time `json:"batchTime"`
	LineCount int       `json:"lineCount"`
}

type ingestBatchHandler struct {
	intakeService ingestors.IntakeService
}

func NewIngestBatchHandler(intakeService ingestors.IntakeService) AppHttpHandler {
	return &ingestBatchHandler{
		intakeService: intakeService,
	}
}

// Handle processes POST /batches requests. The body is the raw line blob.
func (h *ingestBatchHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	result, err := h.intakeService.IngestBatch(r.Context(), idempotencyKey(r), r.Body)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(IngestBatchResponse{
		BatchID:   result.BatchID,
		BatchTime: result.BatchTime,
		LineCount: result.LineCount,
	})
}
