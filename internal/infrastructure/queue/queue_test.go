package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendsLibrary/internal/domain"
	"TrendsLibrary/internal/logging"
	"TrendsLibrary/internal/tasks"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedis("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestBrokerEnqueue(t *testing.T) {
	mr, client := newTestRedis(t)
	broker := NewBroker(client, "")

	req := domain.GenerationRequest{Country: "US", Category: "8", Title: "Eclipse 2024"}
	id, err := broker.Enqueue(context.Background(), domain.TaskGenerateContent, req)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	items, err := mr.List(DefaultQueue)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var msg tasks.Message
	require.NoError(t, json.Unmarshal([]byte(items[0]), &msg))
	assert.Equal(t, id, msg.ID)
	assert.Equal(t, domain.TaskGenerateContent, msg.Task)
	require.Len(t, msg.Args, 1)
	assert.JSONEq(t, `{"country":"US","category":"8","title":"Eclipse 2024"}`, string(msg.Args[0]))
	assert.NotNil(t, msg.Kwargs)
}

func TestBrokerEnqueueGeneratesDistinctIDs(t *testing.T) {
	_, client := newTestRedis(t)
	broker := NewBroker(client, "content")

	first, err := broker.Enqueue(context.Background(), domain.TaskCollectTrends, "US", "8")
	require.NoError(t, err)
	second, err := broker.Enqueue(context.Background(), domain.TaskCollectTrends, "US", "8")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestBrokerUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	_, err := NewBroker(client, "").Enqueue(context.Background(), domain.TaskCollectTrends, "US")
	assert.Error(t, err)
}

func TestBackendUnknownIsPending(t *testing.T) {
	_, client := newTestRedis(t)
	backend := NewBackend(client, time.Hour)

	job, err := backend.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, job.State)
	assert.Equal(t, "nope", job.ID)
}

func TestBackendSetStateWithTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	backend := NewBackend(client, time.Hour)

	done := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	err := backend.SetState(context.Background(), domain.Job{
		ID:     "abc",
		State:  domain.JobSuccess,
		Result: json.RawMessage(`{"id":1}`),
		DoneAt: &done,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Hour, mr.TTL("celery-task-meta-abc"))

	job, err := backend.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, domain.JobSuccess, job.State)
	assert.JSONEq(t, `{"id":1}`, string(job.Result))
	require.NotNil(t, job.DoneAt)
	assert.True(t, done.Equal(*job.DoneAt))

	mr.FastForward(2 * time.Hour)
	job, err = backend.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, job.State)
}

func newTestPool(client *redis.Client, reg *tasks.Registry) (*Pool, *Backend) {
	backend := NewBackend(client, time.Hour)
	pool := NewPool(client, backend, reg, PoolConfig{Concurrency: 2, PollTimeout: time.Second}, logging.Discard())
	return pool, backend
}

func TestPoolProcessSuccess(t *testing.T) {
	_, client := newTestRedis(t)

	reg := tasks.NewRegistry()
	reg.Register("tasks.add", func(ctx context.Context, msg tasks.Message) (any, error) {
		var a, b int
		if err := msg.Arg(0, &a); err != nil {
			return nil, err
		}
		if err := msg.Arg(1, &b); err != nil {
			return nil, err
		}
		return map[string]int{"sum": a + b}, nil
	})
	pool, backend := newTestPool(client, reg)

	pool.Process(context.Background(), "worker-1", []byte(`{"id":"j1","task":"tasks.add","args":[2,3],"kwargs":{}}`))

	job, err := backend.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobSuccess, job.State)
	assert.JSONEq(t, `{"sum":5}`, string(job.Result))
	assert.NotNil(t, job.DoneAt)
}

func TestPoolProcessHandlerFailure(t *testing.T) {
	_, client := newTestRedis(t)

	reg := tasks.NewRegistry()
	reg.Register(domain.TaskGenerateContent, func(ctx context.Context, msg tasks.Message) (any, error) {
		return nil, &domain.PublishError{StatusCode: 502, Body: "bad gateway"}
	})
	pool, backend := newTestPool(client, reg)

	pool.Process(context.Background(), "worker-1", []byte(`{"id":"j2","task":"tasks.generate_content_task","args":[{}]}`))

	job, err := backend.Get(context.Background(), "j2")
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailure, job.State)
	assert.Contains(t, job.Error, "502")
}

func TestPoolProcessUnknownTask(t *testing.T) {
	_, client := newTestRedis(t)
	pool, backend := newTestPool(client, tasks.NewRegistry())

	pool.Process(context.Background(), "worker-1", []byte(`{"id":"j3","task":"tasks.missing","args":[]}`))

	job, err := backend.Get(context.Background(), "j3")
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailure, job.State)
	assert.Contains(t, job.Error, "not registered")
}

func TestPoolProcessDropsMalformed(t *testing.T) {
	mr, client := newTestRedis(t)
	pool, _ := newTestPool(client, tasks.NewRegistry())

	pool.Process(context.Background(), "worker-1", []byte(`not json`))
	pool.Process(context.Background(), "worker-1", []byte(`{"task":"tasks.add"}`))

	assert.Empty(t, mr.Keys())
}

func TestPoolRunConsumesQueue(t *testing.T) {
	_, client := newTestRedis(t)

	started := make(chan string, 1)
	reg := tasks.NewRegistry()
	reg.Register(domain.TaskCollectTrends, func(ctx context.Context, msg tasks.Message) (any, error) {
		var country string
		if err := msg.Arg(0, &country); err != nil {
			return nil, err
		}
		started <- country
		return []string{"Eclipse 2024"}, nil
	})
	pool, backend := newTestPool(client, reg)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(stopped)
	}()

	id, err := NewBroker(client, "").Enqueue(context.Background(), domain.TaskCollectTrends, "US", "8")
	require.NoError(t, err)

	select {
	case country := <-started:
		assert.Equal(t, "US", country)
	case <-time.After(5 * time.Second):
		t.Fatal("job was not picked up")
	}

	require.Eventually(t, func() bool {
		job, err := backend.Get(context.Background(), id)
		return err == nil && job.State == domain.JobSuccess
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not stop")
	}
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedis("http://not-redis")
	assert.Error(t, err)
}
