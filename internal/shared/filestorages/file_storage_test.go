package filestorages

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) FileStorage {
	t.Helper()
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return storage
}

func readAll(t *testing.T, storage FileStorage, key string) string {
	t.Helper()
	rc, err := storage.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestFileStorage_PutThenGet(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)

	result, err := storage.Put(context.Background(), "batches/abc.log", strings.NewReader("hello"), PutOptions{})
	require.NoError(t, err)
	assert.Equal(t, "batches/abc.log", result.FileKey)
	assert.Equal(t, "hello", readAll(t, storage, "batches/abc.log"))
}

func TestFileStorage_PutWithoutOverwriteRejectsDuplicate(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)

	_, err := storage.Put(context.Background(), "k", strings.NewReader("first"), PutOptions{})
	require.NoError(t, err)

	_, err = storage.Put(context.Background(), "k", strings.NewReader("second"), PutOptions{})
	assert.ErrorIs(t, err, ErrFileAlreadyExists)
	assert.Equal(t, "first", readAll(t, storage, "k"))
}

func TestFileStorage_PutWithOverwriteReplaces(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)

	_, err := storage.Put(context.Background(), "k", strings.NewReader("first"), PutOptions{AllowOverwrite: true})
	require.NoError(t, err)
	_, err = storage.Put(context.Background(), "k", strings.NewReader("second"), PutOptions{AllowOverwrite: true})
	require.NoError(t, err)

	assert.Equal(t, "second", readAll(t, storage, "k"))
}

func TestFileStorage_GetMissingKey(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)

	_, err := storage.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileStorage_RejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)

	for _, key := range []string{"", ".", "..", "../escape", "/absolute", "a/../../b"} {
		_, err := storage.Put(context.Background(), key, strings.NewReader("x"), PutOptions{})
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)

		_, err = storage.Get(context.Background(), key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestNewFileStorage_EmptyRoot(t *testing.T) {
	t.Parallel()

	_, err := NewFileStorage("")
	assert.ErrorIs(t, err, ErrInvalidRootDir)
}
