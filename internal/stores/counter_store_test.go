package stores

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"access-insights/internal/models"
	"access-insights/internal/shared/filestorages"
	"access-insights/internal/shared/filestorages/mocks"
)

func storedCounter(t *testing.T, key string, count int64) io.ReadCloser {
	t.Helper()
	data, err := json.Marshal(counterDocument{Key: key, Count: count})
	require.NoError(t, err)
	return io.NopCloser(bytes.NewReader(data))
}

func TestCounterStore_Install(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFileStorage := mocks.NewMockFileStorage(ctrl)
	mockFileStorage.EXPECT().
		Put(gomock.Any(), "counters/status/.keyspace", gomock.Any(), filestorages.PutOptions{AllowOverwrite: true}).
		Return(&filestorages.PutResult{FileKey: "counters/status/.keyspace"}, nil)

	store := NewCounterStore(mockFileStorage, models.KindStatus)
	require.NoError(t, store.Install(context.Background()))
}

func TestCounterStore_IncrementBy_NewKey(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFileStorage := mocks.NewMockFileStorage(ctrl)
	mockFileStorage.EXPECT().
		Get(gomock.Any(), "counters/status/200.json").
		Return(nil, filestorages.ErrFileNotFound)

	var written []byte
	mockFileStorage.EXPECT().
		Put(gomock.Any(), "counters/status/200.json", gomock.Any(), filestorages.PutOptions{AllowOverwrite: true}).
		DoAndReturn(func(_ context.Context, key string, r io.Reader, _ filestorages.PutOptions) (*filestorages.PutResult, error) {
			var err error
			written, err = io.ReadAll(r)
			require.NoError(t, err)
			return &filestorages.PutResult{FileKey: key}, nil
		})

	store := NewCounterStore(mockFileStorage, models.KindStatus)

	total, err := store.IncrementBy(context.Background(), "200", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	var doc counterDocument
	require.NoError(t, json.Unmarshal(written, &doc))
	assert.Equal(t, counterDocument{Key: "200", Count: 3}, doc)
}

func TestCounterStore_IncrementBy_ExistingKey(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFileStorage := mocks.NewMockFileStorage(ctrl)
	mockFileStorage.EXPECT().
		Get(gomock.Any(), "counters/volume/26709235.json").
		Return(storedCounter(t, "26709235", 7), nil)
	mockFileStorage.EXPECT().
		Put(gomock.Any(), "counters/volume/26709235.json", gomock.Any(), gomock.Any()).
		Return(&filestorages.PutResult{FileKey: "counters/volume/26709235.json"}, nil)

	store := NewCounterStore(mockFileStorage, models.KindVolume)

	total, err := store.IncrementBy(context.Background(), "26709235", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
}

func TestCounterStore_IncrementBy_ReadFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storageErr := errors.New("permission denied")
	mockFileStorage := mocks.NewMockFileStorage(ctrl)
	mockFileStorage.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(nil, storageErr)

	store := NewCounterStore(mockFileStorage, models.KindLocation)

	_, err := store.IncrementBy(context.Background(), "US/Mountain View", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
}

func TestCounterStore_IncrementBy_WriteFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storageErr := errors.New("disk full")
	mockFileStorage := mocks.NewMockFileStorage(ctrl)
	mockFileStorage.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(nil, filestorages.ErrFileNotFound)
	mockFileStorage.EXPECT().
		Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, storageErr)

	store := NewCounterStore(mockFileStorage, models.KindStatus)

	_, err := store.IncrementBy(context.Background(), "200", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
}
