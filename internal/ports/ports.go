package ports

import (
	"context"
	"encoding/json"
	"time"

	"TrendsLibrary/internal/domain"
)

// TrendProvider pulls ranked search topics from an upstream trend service.
type TrendProvider interface {
	FetchTrends(ctx context.Context, country, category, period string) ([]domain.TrendRecord, error)
}

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes a single completion call.
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
}

// ChatCompleter sends prompts to a text-generation provider (e.g., ChatGPT).
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// ArticleGenerator produces drafts for the queue-backed jobs.
type ArticleGenerator interface {
	Generate(ctx context.Context, topic, language string) (domain.ArticleDraft, error)
	GenerateForTrend(ctx context.Context, title, country, category string) (domain.ArticleDraft, error)
}

// NewsWriter produces short news articles for the static site.
type NewsWriter interface {
	WriteNews(ctx context.Context, topic string) (string, error)
}

// ImageGenerator illustrates a prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, size string) (domain.ImageAsset, error)
}

// Publisher sends composed articles to the CMS.
type Publisher interface {
	Publish(ctx context.Context, payload domain.PublishPayload) (json.RawMessage, error)
}

// PublicationRepository keeps an audit log of published articles.
type PublicationRepository interface {
	SavePublication(ctx context.Context, pub domain.Publication) error
}

// TaskQueue hands work over to the worker pool.
type TaskQueue interface {
	Enqueue(ctx context.Context, task string, args ...any) (string, error)
}

// ResultBackend reports job state.
type ResultBackend interface {
	Get(ctx context.Context, id string) (domain.Job, error)
}

// Scheduler controls when recurring runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
