package streams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionedQueue_SameKeySamePartition(t *testing.T) {
	t.Parallel()

	queue := NewPartitionedQueueSized[int](4, 16)
	defer queue.Close()

	queue.Publish("status", 1)
	queue.Publish("status", 2)
	queue.Publish("status", 3)

	idx := partitionIndex("status", queue.PartitionCount())
	ch := queue.partitions[idx]
	require.Len(t, ch, 3)
	assert.Equal(t, 1, <-ch)
	assert.Equal(t, 2, <-ch)
	assert.Equal(t, 3, <-ch)
}

func TestPartitionedQueue_PartitionIndexIsStable(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"status", "volume", "location"} {
		first := partitionIndex(key, 8)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, partitionIndex(key, 8), "key %q", key)
		}
		assert.GreaterOrEqual(t, first, 0)
		assert.Less(t, first, 8)
	}
}

func TestPartitionedQueue_Defaults(t *testing.T) {
	t.Parallel()

	queue := NewPartitionedQueue[string]()
	defer queue.Close()

	assert.Equal(t, defaultNumPartitions, queue.PartitionCount())
}
