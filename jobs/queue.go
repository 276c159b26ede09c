// Package jobs is the background side of the system: a Redis-backed job
// queue, the worker loop that drains it, email delivery handlers and the
// inventory/order sweeps. Jobs get three attempts with exponential
// backoff; terminal failures are logged and never reach a request path.
package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Job is the envelope stored on the queue.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// Queue is a Redis-list job queue: LPUSH to enqueue, BRPOP to drain.
type Queue struct {
	client *redis.Client
	key    string
}

func NewQueue(client *redis.Client, key string) *Queue {
	if key == "" {
		key = "northmart:jobs"
	}
	return &Queue{client: client, key: key}
}

// Enqueue marshals the payload and pushes a fresh job envelope.
func (q *Queue) Enqueue(ctx context.Context, jobType string, payload interface{}) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = data
	}

	return q.push(ctx, &Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    raw,
		EnqueuedAt: time.Now(),
	})
}

func (q *Queue) push(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, data).Err()
}

// Dequeue blocks up to timeout for the next job. Returns (nil, nil) when
// the queue stayed empty.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// BRPOP returns [key, value].
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}
