package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDrainsBufferedJobsOnStop(t *testing.T) {
	var processed int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&processed, 1)
		return nil
	}, QueueConfig{Workers: 2, BufferSize: 32})
	q.Start(context.Background())

	for i := 0; i < 20; i++ {
		require.NoError(t, q.Enqueue(Job{Type: "noop"}))
	}
	q.Stop()

	assert.Equal(t, int32(20), atomic.LoadInt32(&processed))
	assert.ErrorIs(t, q.Enqueue(Job{Type: "noop"}), ErrQueueClosed)
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	attempts := map[int]bool{}
	done := make(chan struct{})

	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[job.Attempt] = true
		if job.Attempt < 2 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "flaky"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried to success")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, attempts[0] && attempts[1] && attempts[2])
}

func TestQueueRecoversHandlerPanic(t *testing.T) {
	var calls int32
	q := NewQueue("panic", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		panic("boom")
	}, QueueConfig{MaxRetries: 0})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{Type: "explode"}))
	q.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{}))
	q.Stop()
}

func TestRouterDispatchesByType(t *testing.T) {
	router := NewRouter()
	var got string
	router.Register("appointment.booked", func(ctx context.Context, job Job) error {
		got = job.Payload.(string)
		return nil
	})

	require.NoError(t, router.Handle(context.Background(), Job{Type: "appointment.booked", Payload: "a1"}))
	assert.Equal(t, "a1", got)
	assert.Error(t, router.Handle(context.Background(), Job{Type: "unknown"}))
}

func TestQueueBackoffDoublesUpToCap(t *testing.T) {
	q := NewQueue("backoff", nil, QueueConfig{RetryDelay: 100 * time.Millisecond, MaxRetryDelay: time.Second})

	assert.Equal(t, 100*time.Millisecond, q.backoff(1))
	assert.Equal(t, 200*time.Millisecond, q.backoff(2))
	assert.Equal(t, 800*time.Millisecond, q.backoff(4))
	assert.Equal(t, time.Second, q.backoff(5))
	assert.Equal(t, time.Second, q.backoff(30))
}

func TestQueueEnqueueTimesOutWhenFull(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue("full", func(ctx context.Context, job Job) error {
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1, EnqueueTimeout: 20 * time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{Type: "slow"}))
	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, 5*time.Millisecond, "worker picks up the first job")
	require.NoError(t, q.Enqueue(Job{Type: "slow"}))

	start := time.Now()
	err := q.Enqueue(Job{Type: "slow"})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	close(release)
	q.Stop()
}

func TestQueueReportsDroppedJobs(t *testing.T) {
	var mu sync.Mutex
	var dropped []Job
	boom := errors.New("broker down")
	q := NewQueue("drop", func(ctx context.Context, job Job) error {
		return boom
	}, QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond, OnDrop: func(job Job, err error) {
		mu.Lock()
		defer mu.Unlock()
		dropped = append(dropped, job)
		assert.ErrorIs(t, err, boom)
	}})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "appointment.booked"}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(dropped) == 1
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "j1", dropped[0].ID)
	assert.Equal(t, 2, dropped[0].Attempt)
}
