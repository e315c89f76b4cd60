package archivers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"access-insights/internal/models"
)

type fakeS3Client struct {
	failures int
	calls    int
	lastKey  string
	lastBody []byte
}

func (c *fakeS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, errors.New("service unavailable")
	}
	c.lastKey = *params.Key
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	c.lastBody = body
	return &s3.PutObjectOutput{}, nil
}

func archiveBatch() *models.RawBatch {
	return &models.RawBatch{
		BatchID:   "01J8ZC2V9N4Q5R6S7T8U9VWXYZ",
		BatchTime: time.Date(2020, 10, 10, 20, 55, 36, 0, time.UTC),
		Lines:     `1.2.3.4 - - [10/Oct/2020:13:55:36 -0700] "GET /index HTTP/1.1" 200 1024 "-" "curl/7.0"`,
	}
}

func TestS3Archiver_Archive_UploadsGzippedBatch(t *testing.T) {
	t.Parallel()

	client := &fakeS3Client{}
	archiver := NewS3Archiver(client, "archive-bucket", "access-logs/", 3, time.Second)

	batch := archiveBatch()
	require.NoError(t, archiver.Archive(context.Background(), batch))

	assert.Equal(t, "access-logs/2020/10/10/"+batch.BatchID+".log.gz", client.lastKey)

	zr, err := gzip.NewReader(bytes.NewReader(client.lastBody))
	require.NoError(t, err)
	defer zr.Close()
	lines, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, batch.Lines, string(lines))
}

func TestS3Archiver_Archive_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	client := &fakeS3Client{failures: 2}
	archiver := NewS3Archiver(client, "archive-bucket", "", 3, time.Second)

	require.NoError(t, archiver.Archive(context.Background(), archiveBatch()))
	assert.Equal(t, 3, client.calls)
}

func TestS3Archiver_Archive_ExhaustedRetries(t *testing.T) {
	t.Parallel()

	client := &fakeS3Client{failures: 10}
	archiver := NewS3Archiver(client, "archive-bucket", "", 2, time.Second)

	err := archiver.Archive(context.Background(), archiveBatch())
	require.Error(t, err)
	assert.Equal(t, 2, client.calls)
	assert.Contains(t, err.Error(), "archiving batch")
}

func TestS3Archiver_Archive_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeS3Client{}
	archiver := NewS3Archiver(client, "archive-bucket", "", 3, time.Second)

	err := archiver.Archive(ctx, archiveBatch())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, client.calls)
}
