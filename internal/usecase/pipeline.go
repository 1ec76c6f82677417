package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"TrendsLibrary/internal/domain"
	"TrendsLibrary/internal/logging"
	"TrendsLibrary/internal/ports"
	"TrendsLibrary/internal/tasks"
)

// PipelineDeps wires all driven adapters into the content jobs.
type PipelineDeps struct {
	Trends     ports.TrendProvider
	Articles   ports.ArticleGenerator
	Images     ports.ImageGenerator
	Publisher  ports.Publisher
	Repository ports.PublicationRepository
	ImageSize  string
	Logger     *slog.Logger
}

// Pipeline implements the queue-backed trend collection and content generation jobs.
type Pipeline struct {
	trends     ports.TrendProvider
	articles   ports.ArticleGenerator
	images     ports.ImageGenerator
	publisher  ports.Publisher
	repository ports.PublicationRepository
	imageSize  string
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline constructs the orchestration component. Repository may be nil.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		trends:     deps.Trends,
		articles:   deps.Articles,
		images:     deps.Images,
		publisher:  deps.Publisher,
		repository: deps.Repository,
		imageSize:  deps.ImageSize,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CollectTrends returns the current trending searches for a country.
func (p *Pipeline) CollectTrends(ctx context.Context, country, category, period string) ([]domain.TrendRecord, error) {
	if p.trends == nil {
		return nil, errors.New("trend provider is not configured")
	}

	records, err := p.trends.FetchTrends(ctx, country, category, period)
	if err != nil {
		p.logger.Warn("trend collection failed", "country", country, "error", err)
		return nil, err
	}
	p.logger.Debug("trends collected", "country", country, "category", category, "count", len(records))
	return records, nil
}

// GenerateContent writes, illustrates and publishes an article about req.Title.
// Any failing step aborts the job; nothing already produced is rolled back.
func (p *Pipeline) GenerateContent(ctx context.Context, req domain.GenerationRequest) (json.RawMessage, error) {
	if p.articles == nil || p.images == nil || p.publisher == nil {
		return nil, errors.New("content pipeline is not fully configured")
	}

	draft, err := p.articles.GenerateForTrend(ctx, req.Title, req.Country, req.Category)
	if err != nil {
		return nil, p.fail("generate article", req, err)
	}

	image, err := p.images.Generate(ctx, req.Title, p.imageSize)
	if err != nil {
		return nil, p.fail("generate image", req, err)
	}

	payload := domain.NewPublishPayload(draft, image, req.Country, req.Category)
	resp, err := p.publisher.Publish(ctx, payload)
	if err != nil {
		return nil, p.fail("publish article", req, err)
	}

	p.record(ctx, req, image, resp)
	return resp, nil
}

// fail logs the failing step and hands the adapter error back unchanged so the
// job result carries its message as-is.
func (p *Pipeline) fail(step string, req domain.GenerationRequest, err error) error {
	p.logger.Warn("content job step failed", "step", step, "title", req.Title, "error", err)
	return err
}

func (p *Pipeline) record(ctx context.Context, req domain.GenerationRequest, image domain.ImageAsset, resp json.RawMessage) {
	if p.repository == nil {
		return
	}

	err := p.repository.SavePublication(ctx, domain.Publication{
		Title:       req.Title,
		Country:     req.Country,
		Category:    req.Category,
		ImageURL:    image.ImageURL,
		Response:    resp,
		PublishedAt: p.now(),
	})
	if err != nil {
		p.logger.Warn("publication log write failed", "title", req.Title, "error", err)
	}
}

// Register binds the jobs to their wire names.
func (p *Pipeline) Register(reg *tasks.Registry) {
	reg.Register(domain.TaskCollectTrends, p.handleCollectTrends)
	reg.Register(domain.TaskGenerateContent, p.handleGenerateContent)
}

func (p *Pipeline) handleCollectTrends(ctx context.Context, msg tasks.Message) (any, error) {
	var country, category, period string
	found, err := msg.Lookup(0, "country", &country)
	if err != nil {
		return nil, err
	}
	if !found || country == "" {
		return nil, errors.New("missing argument: country")
	}
	if _, err := msg.Lookup(1, "category", &category); err != nil {
		return nil, err
	}
	if _, err := msg.Lookup(2, "period", &period); err != nil {
		return nil, err
	}

	return p.CollectTrends(ctx, country, category, period)
}

func (p *Pipeline) handleGenerateContent(ctx context.Context, msg tasks.Message) (any, error) {
	var req domain.GenerationRequest
	found, err := msg.Lookup(0, "params", &req)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("missing argument: params")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return p.GenerateContent(ctx, req)
}
