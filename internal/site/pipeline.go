package site

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"TrendsLibrary/internal/logging"
	"TrendsLibrary/internal/metrics"
	"TrendsLibrary/internal/ports"
)

// FallbackTopic is used whenever the trend source fails or returns nothing.
const FallbackTopic = "World news"

// Options configures a Pipeline. Writer is nil when no language-model
// credential is configured.
type Options struct {
	OutputDir string
	Country   string
	Writer    ports.NewsWriter
	Trends    ports.TrendProvider
	Logger    *slog.Logger
	Now       func() time.Time
}

// Pipeline writes one article per run into a static site and links it from the index.
type Pipeline struct {
	outputDir string
	country   string
	writer    ports.NewsWriter
	trends    ports.TrendProvider
	logger    *slog.Logger
	now       func() time.Time
}

// Result describes what a run produced.
type Result struct {
	Trend        string
	Title        string
	Slug         string
	Filename     string
	ArticlePath  string
	IndexPath    string
	Generated    bool
	IndexChanged bool
	IndexEntries int
}

// NewPipeline applies defaults: output "docs", country "US", real UTC clock.
func NewPipeline(opts Options) *Pipeline {
	p := &Pipeline{
		outputDir: opts.OutputDir,
		country:   opts.Country,
		writer:    opts.Writer,
		trends:    opts.Trends,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if p.outputDir == "" {
		p.outputDir = "docs"
	}
	if p.country == "" {
		p.country = "US"
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	if p.now == nil {
		p.now = func() time.Time { return time.Now().UTC() }
	}
	return p
}

// Run executes the pipeline once using the configured clock.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	return p.RunAt(ctx, p.now())
}

// RunAt executes the pipeline for the calendar date of at.
// Only filesystem errors are returned; trend and generation failures degrade the content instead.
func (p *Pipeline) RunAt(ctx context.Context, at time.Time) (Result, error) {
	res, err := p.run(ctx, at)
	if err != nil {
		metrics.SiteRuns.WithLabelValues("error").Inc()
		return res, err
	}
	metrics.SiteRuns.WithLabelValues("ok").Inc()
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, at time.Time) (Result, error) {
	trend := p.FetchTrendingSearch(ctx)
	text, generated := p.ArticleText(ctx, trend)

	title := ExtractTitle(text, trend)
	slug := Slugify(title)
	date := DateString(at)
	filename := Filename(at, slug)

	res := Result{
		Trend:       trend,
		Title:       title,
		Slug:        slug,
		Filename:    filename,
		ArticlePath: filepath.Join(p.outputDir, "articles", filename),
		IndexPath:   filepath.Join(p.outputDir, "index.html"),
		Generated:   generated,
	}

	if err := writeFile(res.ArticlePath, RenderArticle(title, text, date)); err != nil {
		return res, fmt.Errorf("write article: %w", err)
	}

	index, changed, err := UpdateIndex(res.IndexPath, title, filename, date)
	if err != nil {
		return res, err
	}
	res.IndexChanged = changed

	entries, err := IndexEntries(strings.NewReader(index))
	if err != nil {
		return res, err
	}
	res.IndexEntries = len(entries)

	p.logger.Info("article written",
		"trend", trend,
		"title", title,
		"file", res.ArticlePath,
		"generated", generated,
		"index_changed", changed,
		"index_entries", res.IndexEntries)
	return res, nil
}

// FetchTrendingSearch returns the top trending title, or FallbackTopic on any failure.
func (p *Pipeline) FetchTrendingSearch(ctx context.Context) string {
	if p.trends == nil {
		return FallbackTopic
	}

	records, err := p.trends.FetchTrends(ctx, p.country, "", "")
	if err != nil {
		p.logger.Warn("trend lookup failed, using fallback topic", "error", err)
		return FallbackTopic
	}
	for _, rec := range records {
		if title := strings.TrimSpace(rec.Title); title != "" {
			return title
		}
	}
	p.logger.Warn("trend source returned no titles, using fallback topic")
	return FallbackTopic
}

// ArticleText produces the article body; the bool reports whether the model wrote it.
func (p *Pipeline) ArticleText(ctx context.Context, trend string) (string, bool) {
	if p.writer == nil {
		return DisabledNotice(trend), false
	}

	text, err := p.writer.WriteNews(ctx, trend)
	if err != nil {
		p.logger.Warn("article generation failed", "trend", trend, "error", err)
		return ErrorNotice(trend, err), false
	}
	return text, true
}

// DisabledNotice is the body used when no language-model credential is configured.
func DisabledNotice(trend string) string {
	return "News update for " + trend + "\n\n" +
		"Automatic article generation is disabled because the " +
		"OPENAI_API_KEY environment variable is not set. " +
		"Please add this secret in your repository settings to enable " +
		"AI-generated news."
}

// ErrorNotice is the body used when generation fails.
func ErrorNotice(trend string, err error) string {
	return "News update for " + trend + "\n\n" +
		"An error occurred while generating the article: " + err.Error() + ".\n" +
		"Please check your API configuration and try again."
}
