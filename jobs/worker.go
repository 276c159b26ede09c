package jobs

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// HandlerFunc processes one job payload. A returned error triggers a
// retry until the attempt budget is spent.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// JobQueue is what the worker needs from a queue: drain it, and put a
// failed job back for another attempt.
type JobQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Job, error)
	Requeue(ctx context.Context, job *Job) error
}

// Requeue puts a job back on the queue for a retry.
func (q *Queue) Requeue(ctx context.Context, job *Job) error {
	return q.push(ctx, job)
}

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 2 * time.Second
	dequeueTimeout     = 5 * time.Second
)

// Worker drains the queue and dispatches jobs to registered handlers.
type Worker struct {
	queue       JobQueue
	handlers    map[string]HandlerFunc
	maxAttempts int
	backoffBase time.Duration
}

func NewWorker(queue JobQueue) *Worker {
	return &Worker{
		queue:       queue,
		handlers:    make(map[string]HandlerFunc),
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
	}
}

// Handle registers the handler for a job type.
func (w *Worker) Handle(jobType string, h HandlerFunc) {
	w.handlers[jobType] = h
}

// Backoff returns the delay before the given retry: base doubled per
// completed attempt (2s, 4s with the defaults).
func Backoff(base time.Duration, attempt int) time.Duration {
	return base << (attempt - 1)
}

// Run drains the queue until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		job, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("job worker shutting down")
				return
			}
			log.Printf("job dequeue error: %v", err)
			continue
		}
		if job == nil {
			continue
		}
		w.dispatch(ctx, job)
	}
}

func (w *Worker) dispatch(ctx context.Context, job *Job) {
	handler, ok := w.handlers[job.Type]
	if !ok {
		log.Printf("no handler for job type %s, dropping job %s", job.Type, job.ID)
		return
	}

	err := handler(ctx, job.Payload)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= w.maxAttempts {
		log.Printf("job %s (%s) failed after %d attempts: %v", job.ID, job.Type, job.Attempts, err)
		return
	}

	delay := Backoff(w.backoffBase, job.Attempts)
	log.Printf("job %s (%s) failed (attempt %d), retrying in %s: %v", job.ID, job.Type, job.Attempts, delay, err)

	retry := *job
	time.AfterFunc(delay, func() {
		if err := w.queue.Requeue(context.Background(), &retry); err != nil {
			log.Printf("failed to requeue job %s: %v", retry.ID, err)
		}
	})
}
