package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"TrendsLibrary/internal/domain"
	"TrendsLibrary/internal/logging"
	"TrendsLibrary/internal/metrics"
	"TrendsLibrary/internal/tasks"
)

// PoolConfig tunes the worker pool.
type PoolConfig struct {
	Queue       string
	Concurrency int
	PollTimeout time.Duration
}

// Pool runs registered task handlers for messages popped from the broker list.
type Pool struct {
	client   *redis.Client
	backend  *Backend
	registry *tasks.Registry
	cfg      PoolConfig
	logger   *slog.Logger
	hostname string
	now      func() time.Time
}

// NewPool wires the broker connection, result backend and task registry.
func NewPool(client *redis.Client, backend *Backend, registry *tasks.Registry, cfg PoolConfig, logger *slog.Logger) *Pool {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Discard()
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return &Pool{
		client:   client,
		backend:  backend,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		hostname: host,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run blocks until ctx is cancelled and all in-flight jobs have finished.
func (p *Pool) Run(ctx context.Context) {
	p.logger.Info("worker pool started",
		"queue", p.cfg.Queue,
		"concurrency", p.cfg.Concurrency,
		"tasks", p.registry.Names())

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Concurrency; i++ {
		name := fmt.Sprintf("worker-%d@%s", i+1, p.hostname)
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.loop(ctx, name)
		}()
	}
	wg.Wait()

	p.logger.Info("worker pool stopped")
}

func (p *Pool) loop(ctx context.Context, name string) {
	log := p.logger.With("worker", name)
	for {
		if ctx.Err() != nil {
			return
		}

		res, err := p.client.BRPop(ctx, p.cfg.PollTimeout, p.cfg.Queue).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("pop message", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if len(res) != 2 {
			continue
		}

		// A popped job runs to completion even if shutdown starts meanwhile.
		p.Process(context.WithoutCancel(ctx), name, []byte(res[1]))
	}
}

// Process executes one raw broker message and records its outcome.
func (p *Pool) Process(ctx context.Context, worker string, raw []byte) {
	var msg tasks.Message
	if err := json.Unmarshal(raw, &msg); err != nil || msg.ID == "" || msg.Task == "" {
		metrics.MessagesDropped.Inc()
		p.logger.Warn("dropping malformed message", "error", err, "size", len(raw))
		return
	}

	log := p.logger.With("task", msg.Task, "task_id", msg.ID, "worker", worker)

	if err := p.backend.SetState(ctx, domain.Job{ID: msg.ID, State: domain.JobStarted, Info: worker}); err != nil {
		log.Error("mark started", "error", err)
	}

	handler, err := p.registry.Resolve(msg.Task)
	if err != nil {
		p.finish(ctx, log, msg, nil, err, 0)
		return
	}

	metrics.ActiveJobs.Inc()
	start := time.Now()
	result, err := handler(ctx, msg)
	took := time.Since(start)
	metrics.ActiveJobs.Dec()

	p.finish(ctx, log, msg, result, err, took)
}

func (p *Pool) finish(ctx context.Context, log *slog.Logger, msg tasks.Message, result any, runErr error, took time.Duration) {
	done := p.now()
	job := domain.Job{ID: msg.ID, DoneAt: &done}

	if runErr == nil {
		body, err := json.Marshal(result)
		if err != nil {
			runErr = fmt.Errorf("encode result: %w", err)
		} else {
			job.State = domain.JobSuccess
			job.Result = body
		}
	}
	if runErr != nil {
		job.State = domain.JobFailure
		job.Error = runErr.Error()
	}

	metrics.RecordJob(msg.Task, string(job.State), took)

	if err := p.backend.SetState(ctx, job); err != nil {
		log.Error("store result", "error", err, "state", job.State)
		return
	}

	if job.State == domain.JobFailure {
		log.Warn("job failed", "error", job.Error, "duration", took)
		return
	}
	log.Info("job succeeded", "duration", took)
}
