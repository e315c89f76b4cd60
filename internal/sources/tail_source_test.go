package sources

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"access-insights/internal/ingestors"
)

type fakeIntake struct {
	err     error
	batches []string
}

func (f *fakeIntake) IngestBatch(_ context.Context, _ string, r io.Reader) (*ingestors.IngestResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.batches = append(f.batches, string(blob))
	return &ingestors.IngestResult{BatchID: "batch-1", BatchTime: time.Now(), LineCount: 1}, nil
}

func TestTailSource_FlushJoinsPendingLines(t *testing.T) {
	t.Parallel()

	intake := &fakeIntake{}
	source := NewTailSource("/var/log/access.log", time.Second, intake, zerolog.Nop())

	pending := []string{"line one", "line two"}
	source.flush(context.Background(), &pending)

	require.Len(t, intake.batches, 1)
	assert.Equal(t, "line one\nline two", intake.batches[0])
	assert.Empty(t, pending, "flushed lines are not resubmitted")
}

func TestTailSource_FlushSkipsEmptyBuffer(t *testing.T) {
	t.Parallel()

	intake := &fakeIntake{}
	source := NewTailSource("/var/log/access.log", time.Second, intake, zerolog.Nop())

	var pending []string
	source.flush(context.Background(), &pending)

	assert.Empty(t, intake.batches)
}

func TestTailSource_FlushToleratesIntakeFailure(t *testing.T) {
	t.Parallel()

	intake := &fakeIntake{err: errors.New("store down")}
	source := NewTailSource("/var/log/access.log", time.Second, intake, zerolog.Nop())

	pending := []string{"line one"}
	source.flush(context.Background(), &pending)

	assert.Empty(t, pending, "rejected lines are dropped, not retried")
}
