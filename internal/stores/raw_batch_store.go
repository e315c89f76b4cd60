package stores

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/compress/gzip"

	"access-insights/internal/models"
	"access-insights/internal/shared/filestorages"
)

var ErrRawBatchAlreadyExists = errors.New("raw batch already exists")

// RawBatchStore archives the raw line blob of every accepted batch, gzipped,
// keyed by batch ID. Duplicate batch IDs are rejected, which is what gives
// intake its idempotency.
//
//go:generate mockgen -source=raw_batch_store.go -destination=./mocks/raw_batch_store_mock.go -package=mocks
type RawBatchStore interface {
	Put(ctx context.Context, batch *models.RawBatch) error
}

type rawBatchStore struct {
	fileStorage filestorages.FileStorage
}

func NewRawBatchStore(fileStorage filestorages.FileStorage) RawBatchStore {
	return &rawBatchStore{fileStorage: fileStorage}
}

func (s *rawBatchStore) Put(ctx context.Context, batch *models.RawBatch) error {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := zw.Write([]byte(batch.Lines)); err != nil {
		return fmt.Errorf("compressing batch %s: %w", batch.BatchID, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing batch %s: %w", batch.BatchID, err)
	}

	key := rawBatchKey(batch.BatchID)
	_, err = s.fileStorage.Put(ctx, key, &buf, filestorages.PutOptions{AllowOverwrite: false})
	if err != nil {
		if errors.Is(err, filestorages.ErrFileAlreadyExists) {
			return ErrRawBatchAlreadyExists
		}
		return fmt.Errorf("storing batch %s: %w", batch.BatchID, err)
	}
	return nil
}

func rawBatchKey(batchID string) string {
	return "raw-batches/" + strings.TrimSpace(batchID) + ".log.gz"
}
