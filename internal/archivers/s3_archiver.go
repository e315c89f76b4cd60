package archivers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"

	"access-insights/internal/models"
	"access-insights/internal/shared/loggers"
)

// Archiver copies an accepted raw batch to off-site storage. Archival is
// best-effort from intake's point of view: the local raw batch store is the
// durability guarantee, the archive is the long-term copy.
//
//go:generate mockgen -source=s3_archiver.go -destination=./mocks/archiver_mock.go -package=mocks
type Archiver interface {
	Archive(ctx context.Context, batch *models.RawBatch) error
}

type s3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Archiver struct {
	client  s3Client
	bucket  string
	prefix  string
	retries int
	timeout time.Duration
}

// NewS3Archiver builds an archiver on top of an SDK client. SDK-level
// retries should be disabled on the client (RetryMaxAttempts = 0); this
// archiver owns the retry loop so attempts, backoff, and per-attempt
// timeouts stay in one place.
func NewS3Archiver(client s3Client, bucket, prefix string, retries int, timeout time.Duration) *S3Archiver {
	if retries < 1 {
		retries = 1
	}
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix, retries: retries, timeout: timeout}
}

func (a *S3Archiver) Archive(ctx context.Context, batch *models.RawBatch) error {
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

	key := a.objectKey(batch)
	body := buf.Bytes()

	var lastErr error
	backoff := 200 * time.Millisecond
	for attempt := 1; attempt <= a.retries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := a.putObject(ctx, key, body); err != nil {
			lastErr = err
			loggers.Ctx(ctx).Debug().Err(err).Int("attempt", attempt).Msg("s3 archive attempt failed")
		} else {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > 2*time.Second {
				backoff = 2 * time.Second
			}
		}
	}

	return fmt.Errorf("archiving batch %s to s3://%s/%s: %w", batch.BatchID, a.bucket, key, lastErr)
}

func (a *S3Archiver) putObject(ctx context.Context, key string, body []byte) error {
	attemptCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	_, err := a.client.PutObject(attemptCtx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/gzip"),
	})
	return err
}

// objectKey shards archives by UTC day so bucket listings stay usable.
func (a *S3Archiver) objectKey(batch *models.RawBatch) string {
	return a.prefix + batch.BatchTime.UTC().Format("2006/01/02") + "/" + batch.BatchID + ".log.gz"
}
