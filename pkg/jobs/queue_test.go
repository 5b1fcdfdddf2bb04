package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedQueueProcessesInEnqueueOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	failedOnce := false
	q := NewQueue("save", func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		if job.ID == "1" && !failedOnce {
			failedOnce = true
			return errors.New("transient")
		}
		seen = append(seen, job.ID)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond, Ordered: true})

	q.Start(context.Background())
	defer q.Stop()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, q.Enqueue(Job{ID: id, Type: "snapshot"}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Flush(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1", "2", "3"}, seen)
	assert.Equal(t, 0, q.Pending())
}

func TestQueueReportsDroppedJobs(t *testing.T) {
	dropped := make(chan Job, 1)
	q := NewQueue("save", func(context.Context, Job) error {
		return errors.New("offline")
	}, QueueConfig{Workers: 1, MaxRetries: 1, RetryDelay: time.Millisecond, Ordered: true, OnDrop: func(j Job, _ error) {
		dropped <- j
	}})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "only"}))

	select {
	case j := <-dropped:
		assert.Equal(t, "only", j.ID)
		assert.Equal(t, 2, j.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("job was never dropped")
	}
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue("save", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "x"}))
	assert.Equal(t, 0, q.Pending())
}
