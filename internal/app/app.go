package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"TrendsLibrary/internal/config"
	"TrendsLibrary/internal/gateway"
	"TrendsLibrary/internal/infrastructure/cms"
	"TrendsLibrary/internal/infrastructure/imagegen"
	"TrendsLibrary/internal/infrastructure/llm"
	"TrendsLibrary/internal/infrastructure/queue"
	"TrendsLibrary/internal/infrastructure/scheduler"
	"TrendsLibrary/internal/infrastructure/storage"
	"TrendsLibrary/internal/infrastructure/trends"
	"TrendsLibrary/internal/logging"
	"TrendsLibrary/internal/ports"
	"TrendsLibrary/internal/site"
	"TrendsLibrary/internal/tasks"
	"TrendsLibrary/internal/usecase"
)

// Application wires configs to use cases and owns the connections it opens.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	closers []func() error
}

// New builds an application; nothing is connected until a component is requested.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Close releases every connection opened by the application.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Gateway returns the HTTP handler serving /health, /generate and /tasks/{id}.
func (a *Application) Gateway() (http.Handler, error) {
	if err := a.cfg.ValidateGateway(); err != nil {
		return nil, err
	}

	broker, backend, err := a.redisClients()
	if err != nil {
		return nil, err
	}

	server := gateway.NewServer(
		queue.NewBroker(broker, a.cfg.Queue.Name),
		queue.NewBackend(backend, a.cfg.Queue.ResultTTL),
		a.logger.With("component", "gateway"),
	)
	return server.Routes(), nil
}

// Worker builds the pool executing content jobs.
func (a *Application) Worker(ctx context.Context) (*queue.Pool, error) {
	if err := a.cfg.ValidateWorker(); err != nil {
		return nil, err
	}

	broker, backendClient, err := a.redisClients()
	if err != nil {
		return nil, err
	}
	if err := queue.Ping(ctx, broker); err != nil {
		return nil, err
	}

	var repo ports.PublicationRepository
	if a.cfg.Database.DSN != "" {
		repo, err = a.publicationLog(ctx)
		if err != nil {
			return nil, err
		}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Trends:     trends.NewGoogleTrendsProvider(a.cfg.Trends, nil),
		Articles:   a.articleService(),
		Images:     imagegen.NewClient(a.cfg.OpenAI, nil),
		Publisher:  cms.NewPublisher(a.cfg.CMS, nil),
		Repository: repo,
		ImageSize:  a.cfg.OpenAI.ImageSize,
		Logger:     a.logger.With("component", "pipeline"),
	})

	registry := tasks.NewRegistry()
	pipeline.Register(registry)

	backend := queue.NewBackend(backendClient, a.cfg.Queue.ResultTTL)
	return queue.NewPool(broker, backend, registry, queue.PoolConfig{
		Queue:       a.cfg.Queue.Name,
		Concurrency: a.cfg.Queue.Concurrency,
		PollTimeout: a.cfg.Queue.PollTimeout,
	}, a.logger.With("component", "worker")), nil
}

// Site builds the static-site pipeline. Generation is disabled without an OpenAI key.
func (a *Application) Site() *site.Pipeline {
	opts := site.Options{
		OutputDir: a.cfg.Site.OutputDir,
		Country:   a.cfg.Site.Country,
		Trends:    trends.NewGoogleTrendsProvider(a.cfg.Trends, nil),
		Logger:    a.logger.With("component", "site"),
	}
	if a.cfg.GenerationEnabled() {
		opts.Writer = a.articleService()
	}
	return site.NewPipeline(opts)
}

// SiteScheduler runs the site pipeline on the configured cron schedule.
// It returns nil when no schedule is configured.
func (a *Application) SiteScheduler(pipeline *site.Pipeline) *usecase.Scheduler {
	if a.cfg.Site.Schedule == "" {
		return nil
	}

	logger := a.logger.With("component", "scheduler")
	driver := scheduler.NewCronScheduler(a.cfg.Site.Schedule, a.cfg.Site.Location(), logger)
	run := func(ctx context.Context, trigger time.Time) error {
		_, err := pipeline.RunAt(ctx, trigger)
		return err
	}
	return usecase.NewScheduler(driver, run, logger)
}

func (a *Application) articleService() *usecase.ArticleService {
	chat := llm.NewChatGPTClient(a.cfg.OpenAI, nil)
	return usecase.NewArticleService(chat, a.cfg.OpenAI.ArticleModel, a.cfg.OpenAI.NewsModel)
}

func (a *Application) publicationLog(ctx context.Context) (*storage.PostgresRepository, error) {
	db, err := storage.Open(ctx, a.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (a *Application) redisClients() (*redis.Client, *redis.Client, error) {
	broker, err := queue.NewRedis(a.cfg.Queue.BrokerURL)
	if err != nil {
		return nil, nil, fmt.Errorf("broker: %w", err)
	}
	a.closers = append(a.closers, broker.Close)

	if a.cfg.Queue.BackendURL == a.cfg.Queue.BrokerURL {
		return broker, broker, nil
	}

	backend, err := queue.NewRedis(a.cfg.Queue.BackendURL)
	if err != nil {
		return nil, nil, fmt.Errorf("result backend: %w", err)
	}
	a.closers = append(a.closers, backend.Close)
	return broker, backend, nil
}
