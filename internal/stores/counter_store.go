package stores

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"access-insights/internal/models"
	"access-insights/internal/shared/filestorages"
)

// counterDocument is the on-disk shape of one running counter.
type counterDocument struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// CounterStore persists running totals for one aggregation keyspace, one
// document per counter key. IncrementBy is a read-modify-write with no
// locking: callers must guarantee a single concurrent writer per keyspace,
// which the batch stream provides by routing each aggregation kind to one
// consumer partition.
//
//go:generate mockgen -source=counter_store.go -destination=./mocks/counter_store_mock.go -package=mocks
type CounterStore interface {
	Install(ctx context.Context) error
	IncrementBy(ctx context.Context, key string, delta int64) (int64, error)
}

type counterStore struct {
	fileStorage filestorages.FileStorage
	dir         string
}

func NewCounterStore(fileStorage filestorages.FileStorage, kind models.AggregationKind) CounterStore {
	return &counterStore{
		fileStorage: fileStorage,
		dir:         "counters/" + string(kind),
	}
}

// Install creates the keyspace directory eagerly so a misconfigured storage
// root fails at startup rather than on the first merged batch.
func (s *counterStore) Install(ctx context.Context) error {
	_, err := s.fileStorage.Put(ctx, s.dir+"/.keyspace", strings.NewReader(""), filestorages.PutOptions{AllowOverwrite: true})
	if err != nil {
		return fmt.Errorf("installing counter keyspace %s: %w", s.dir, err)
	}
	return nil
}

func (s *counterStore) IncrementBy(ctx context.Context, key string, delta int64) (int64, error) {
	fileKey := s.fileKey(key)

	current, err := s.read(ctx, fileKey)
	if err != nil {
		return 0, err
	}

	doc := counterDocument{Key: key, Count: current + delta}
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encoding counter %q: %w", key, err)
	}

	_, err = s.fileStorage.Put(ctx, fileKey, bytes.NewReader(data), filestorages.PutOptions{AllowOverwrite: true})
	if err != nil {
		return 0, fmt.Errorf("writing counter %q: %w", key, err)
	}

	return doc.Count, nil
}

// read returns the stored total for fileKey, or zero when the counter does
// not exist yet.
func (s *counterStore) read(ctx context.Context, fileKey string) (int64, error) {
	rc, err := s.fileStorage.Get(ctx, fileKey)
	if err != nil {
		if errors.Is(err, filestorages.ErrFileNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading counter %s: %w", fileKey, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return 0, fmt.Errorf("reading counter %s: %w", fileKey, err)
	}

	var doc counterDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("decoding counter %s: %w", fileKey, err)
	}
	return doc.Count, nil
}

func (s *counterStore) fileKey(key string) string {
	return s.dir + "/" + key + ".json"
}
