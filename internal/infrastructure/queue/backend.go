package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"TrendsLibrary/internal/domain"
	"TrendsLibrary/internal/ports"
)

const metaKeyPrefix = "celery-task-meta-"

// Backend stores job state under celery-task-meta-{id}.
type Backend struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.ResultBackend = (*Backend)(nil)

// NewBackend wraps a Redis client; ttl <= 0 keeps results forever.
func NewBackend(client *redis.Client, ttl time.Duration) *Backend {
	return &Backend{client: client, ttl: ttl}
}

func metaKey(id string) string {
	return metaKeyPrefix + id
}

// Get returns the stored state; unknown ids are reported as PENDING.
func (b *Backend) Get(ctx context.Context, id string) (domain.Job, error) {
	raw, err := b.client.Get(ctx, metaKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Job{ID: id, State: domain.JobPending}, nil
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("load job %s: %w", id, err)
	}

	var job domain.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return domain.Job{}, fmt.Errorf("decode job %s: %w", id, err)
	}
	if job.ID == "" {
		job.ID = id
	}
	return job, nil
}

// SetState overwrites the stored state of a job.
func (b *Backend) SetState(ctx context.Context, job domain.Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	if err := b.client.Set(ctx, metaKey(job.ID), body, b.ttl).Err(); err != nil {
		return fmt.Errorf("store job %s: %w", job.ID, err)
	}
	return nil
}
