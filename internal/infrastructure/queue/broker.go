package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"TrendsLibrary/internal/ports"
	"TrendsLibrary/internal/tasks"
)

// DefaultQueue is the list name workers consume when none is configured.
const DefaultQueue = "celery"

// Broker pushes job messages onto a Redis list.
type Broker struct {
	client *redis.Client
	queue  string
}

var _ ports.TaskQueue = (*Broker)(nil)

// NewBroker wraps a Redis client; queue defaults to "celery".
func NewBroker(client *redis.Client, queue string) *Broker {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Broker{client: client, queue: queue}
}

// Enqueue serialises the positional args and returns the new job id.
func (b *Broker) Enqueue(ctx context.Context, task string, args ...any) (string, error) {
	msg := tasks.Message{
		ID:     uuid.NewString(),
		Task:   task,
		Args:   make([]json.RawMessage, 0, len(args)),
		Kwargs: map[string]json.RawMessage{},
	}
	for i, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("marshal argument %d: %w", i, err)
		}
		msg.Args = append(msg.Args, raw)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	if err := b.client.LPush(ctx, b.queue, body).Err(); err != nil {
		return "", fmt.Errorf("enqueue %s: %w", task, err)
	}
	return msg.ID, nil
}
