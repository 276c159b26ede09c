package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memQueue is a JobQueue over a slice, for driving dispatch directly.
type memQueue struct {
	mu   sync.Mutex
	jobs []*Job
}

func (q *memQueue) Dequeue(ctx context.Context, _ time.Duration) (*Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *memQueue) Requeue(_ context.Context, job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func newTestWorker(q JobQueue) *Worker {
	w := NewWorker(q)
	w.backoffBase = time.Millisecond
	return w
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, Backoff(2*time.Second, 1))
	assert.Equal(t, 4*time.Second, Backoff(2*time.Second, 2))
	assert.Equal(t, 8*time.Second, Backoff(2*time.Second, 3))
}

func TestDispatchRunsHandler(t *testing.T) {
	queue := &memQueue{}
	worker := newTestWorker(queue)

	var got string
	worker.Handle("email:test", func(_ context.Context, payload json.RawMessage) error {
		got = string(payload)
		return nil
	})

	worker.dispatch(context.Background(), &Job{
		ID:      "job-1",
		Type:    "email:test",
		Payload: json.RawMessage(`{"hello":"world"}`),
	})

	assert.JSONEq(t, `{"hello":"world"}`, got)
	assert.Zero(t, queue.len())
}

func TestDispatchRetriesUntilBudgetSpent(t *testing.T) {
	queue := &memQueue{}
	worker := newTestWorker(queue)

	calls := 0
	worker.Handle("flaky", func(context.Context, json.RawMessage) error {
		calls++
		return errors.New("boom")
	})

	job := &Job{ID: "job-1", Type: "flaky"}
	worker.dispatch(context.Background(), job)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, job.Attempts)

	// The retry lands on the queue after the backoff fires.
	require.Eventually(t, func() bool { return queue.len() == 1 }, time.Second, 5*time.Millisecond)

	retry, err := queue.Dequeue(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, retry.Attempts)
	worker.dispatch(context.Background(), retry)
	require.Equal(t, 2, calls)
	require.Eventually(t, func() bool { return queue.len() == 1 }, time.Second, 5*time.Millisecond)

	// Third failure exhausts the budget: dropped, not requeued.
	retry, err = queue.Dequeue(context.Background(), 0)
	require.NoError(t, err)
	worker.dispatch(context.Background(), retry)
	require.Equal(t, 3, calls)
	assert.Equal(t, 3, retry.Attempts)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, queue.len())
}

func TestDispatchSucceedsOnRetry(t *testing.T) {
	queue := &memQueue{}
	worker := newTestWorker(queue)

	calls := 0
	worker.Handle("flaky", func(context.Context, json.RawMessage) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})

	worker.dispatch(context.Background(), &Job{ID: "job-1", Type: "flaky"})
	require.Eventually(t, func() bool { return queue.len() == 1 }, time.Second, 5*time.Millisecond)

	retry, err := queue.Dequeue(context.Background(), 0)
	require.NoError(t, err)
	worker.dispatch(context.Background(), retry)
	assert.Equal(t, 2, calls)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, queue.len())
}

func TestDispatchDropsUnknownJobType(t *testing.T) {
	queue := &memQueue{}
	worker := newTestWorker(queue)

	worker.dispatch(context.Background(), &Job{ID: "job-1", Type: "nobody:home"})

	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, queue.len())
}

func TestRunDrainsQueueUntilCancelled(t *testing.T) {
	queue := &memQueue{}
	for i := 0; i < 3; i++ {
		queue.jobs = append(queue.jobs, &Job{ID: "job", Type: "count"})
	}

	worker := newTestWorker(queue)
	var mu sync.Mutex
	handled := 0
	worker.Handle("count", func(context.Context, json.RawMessage) error {
		mu.Lock()
		handled++
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return handled == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
