package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendsLibrary/internal/domain"
	"TrendsLibrary/internal/ports"
	"TrendsLibrary/internal/tasks"
)

type fakeChat struct {
	reply string
	err   error
	calls []ports.ChatRequest
}

func (f *fakeChat) Complete(_ context.Context, req ports.ChatRequest) (string, error) {
	f.calls = append(f.calls, req)
	return f.reply, f.err
}

type fakeTrends struct {
	records []domain.TrendRecord
	err     error
	args    []string
}

func (f *fakeTrends) FetchTrends(_ context.Context, country, category, period string) ([]domain.TrendRecord, error) {
	f.args = []string{country, category, period}
	return f.records, f.err
}

type fakeImages struct {
	err     error
	prompts []string
}

func (f *fakeImages) Generate(_ context.Context, prompt, _ string) (domain.ImageAsset, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return domain.ImageAsset{}, f.err
	}
	return domain.ImageAsset{Prompt: prompt, ImageURL: "https://img.example/1.png", AltText: domain.AltText(prompt)}, nil
}

type fakePublisher struct {
	resp     json.RawMessage
	err      error
	payloads []domain.PublishPayload
}

func (f *fakePublisher) Publish(_ context.Context, payload domain.PublishPayload) (json.RawMessage, error) {
	f.payloads = append(f.payloads, payload)
	return f.resp, f.err
}

type fakeRepo struct {
	err   error
	saved []domain.Publication
}

func (f *fakeRepo) SavePublication(_ context.Context, pub domain.Publication) error {
	f.saved = append(f.saved, pub)
	return f.err
}

func TestGenerateBuildsLongFormPrompt(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{reply: "Introduction..."}
	svc := NewArticleService(chat, "", "")

	draft, err := svc.Generate(context.Background(), "Eclipse 2024", "")
	require.NoError(t, err)

	assert.Equal(t, "en", draft.Language)
	assert.Equal(t, "Eclipse 2024", draft.Topic)
	assert.Equal(t, "Introduction...", draft.Content)
	assert.Nil(t, draft.SEO)

	require.Len(t, chat.calls, 1)
	call := chat.calls[0]
	assert.Equal(t, "gpt-4o", call.Model)
	assert.InDelta(t, 0.7, call.Temperature, 1e-9)
	require.Len(t, call.Messages, 2)
	assert.Equal(t, articleSystemPrompt, call.Messages[0].Content)
	for _, section := range []string{"'Eclipse 2024'", "Introduction", "History", "Situation", "Impact", "FAQ", "keywords", "written in en"} {
		assert.Contains(t, call.Messages[1].Content, section)
	}
}

func TestGenerateForTrendEchoesContext(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{reply: "text"}
	svc := NewArticleService(chat, "gpt-4o-mini", "")

	draft, err := svc.GenerateForTrend(context.Background(), "Eclipse 2024", "US", "8")
	require.NoError(t, err)

	assert.Equal(t, "US", draft.Country)
	assert.Equal(t, "8", draft.Category)
	assert.Equal(t, "gpt-4o-mini", chat.calls[0].Model)
	assert.Contains(t, chat.calls[0].Messages[1].Content, "trending in US (category 8)")
}

func TestWriteNewsTrimsAndUsesNewsModel(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{reply: "\n  Scientists Announce Quantum Leap\nBody  \n"}
	svc := NewArticleService(chat, "", "")

	text, err := svc.WriteNews(context.Background(), "quantum computing")
	require.NoError(t, err)

	assert.Equal(t, "Scientists Announce Quantum Leap\nBody", text)
	assert.Equal(t, "gpt-3.5-turbo", chat.calls[0].Model)
	assert.Equal(t, newsSystemPrompt, chat.calls[0].Messages[0].Content)
	assert.Contains(t, chat.calls[0].Messages[1].Content, "4-5-paragraph news article about 'quantum computing'")
}

func TestArticleServicePropagatesGenerationError(t *testing.T) {
	t.Parallel()

	cause := &domain.GenerationError{Provider: "openai-chat", StatusCode: 500, Err: errors.New("boom")}
	svc := NewArticleService(&fakeChat{err: cause}, "", "")

	_, err := svc.Generate(context.Background(), "x", "fr")
	var genErr *domain.GenerationError
	assert.True(t, errors.As(err, &genErr))

	_, err = svc.WriteNews(context.Background(), "x")
	assert.True(t, errors.As(err, &genErr))
}

func newTestPipeline(chat *fakeChat, images *fakeImages, pub *fakePublisher, repo ports.PublicationRepository) *Pipeline {
	return NewPipeline(PipelineDeps{
		Trends:     &fakeTrends{},
		Articles:   NewArticleService(chat, "", ""),
		Images:     images,
		Publisher:  pub,
		Repository: repo,
	})
}

func TestGenerateContentPublishesMergedPayload(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{resp: json.RawMessage(`{"id":7}`)}
	images := &fakeImages{}
	repo := &fakeRepo{}
	p := newTestPipeline(&fakeChat{reply: "Long article"}, images, pub, repo)

	resp, err := p.GenerateContent(context.Background(), domain.GenerationRequest{Country: "US", Category: "8", Title: "Eclipse 2024"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, string(resp))

	require.Len(t, pub.payloads, 1)
	payload := pub.payloads[0]
	assert.Equal(t, "Eclipse 2024", payload.Topic)
	assert.Equal(t, "Long article", payload.Content)
	assert.Equal(t, "https://img.example/1.png", payload.ImageURL)
	assert.Equal(t, "Eclipse 2024", payload.AltText)
	assert.Equal(t, "US", payload.Country)
	assert.Equal(t, "8", payload.Category)
	assert.Equal(t, []string{"Eclipse 2024"}, images.prompts)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, "Eclipse 2024", repo.saved[0].Title)
	assert.JSONEq(t, `{"id":7}`, string(repo.saved[0].Response))
}

func TestGenerateContentStopsOnImageFailure(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	images := &fakeImages{err: &domain.GenerationError{Provider: "openai-images", Err: errors.New("policy")}}
	p := newTestPipeline(&fakeChat{reply: "text"}, images, pub, nil)

	_, err := p.GenerateContent(context.Background(), domain.GenerationRequest{Country: "US", Category: "8", Title: "Eclipse 2024"})

	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, images.err, err)
	assert.Empty(t, pub.payloads)
}

func TestGenerateContentPublishFailure(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{err: &domain.PublishError{StatusCode: 502, Body: "bad gateway"}}
	repo := &fakeRepo{}
	p := newTestPipeline(&fakeChat{reply: "text"}, &fakeImages{}, pub, repo)

	_, err := p.GenerateContent(context.Background(), domain.GenerationRequest{Country: "US", Category: "8", Title: "Eclipse 2024"})

	var pubErr *domain.PublishError
	require.True(t, errors.As(err, &pubErr))
	assert.Equal(t, 502, pubErr.StatusCode)
	assert.Equal(t, "cms returned 502: bad gateway", err.Error())
	assert.Empty(t, repo.saved)
}

func TestGenerateContentIgnoresLogFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{err: errors.New("db down")}
	p := newTestPipeline(&fakeChat{reply: "text"}, &fakeImages{}, &fakePublisher{resp: json.RawMessage(`{}`)}, repo)

	_, err := p.GenerateContent(context.Background(), domain.GenerationRequest{Country: "US", Category: "8", Title: "Eclipse 2024"})
	assert.NoError(t, err)
	assert.Len(t, repo.saved, 1)
}

func TestRegisteredHandlers(t *testing.T) {
	t.Parallel()

	trendsSrc := &fakeTrends{records: []domain.TrendRecord{{Country: "US", Title: "Eclipse 2024"}}}
	pub := &fakePublisher{resp: json.RawMessage(`{"ok":true}`)}
	p := NewPipeline(PipelineDeps{
		Trends:    trendsSrc,
		Articles:  NewArticleService(&fakeChat{reply: "text"}, "", ""),
		Images:    &fakeImages{},
		Publisher: pub,
	})

	reg := tasks.NewRegistry()
	p.Register(reg)
	assert.Equal(t, []string{domain.TaskCollectTrends, domain.TaskGenerateContent}, reg.Names())

	collect, err := reg.Resolve(domain.TaskCollectTrends)
	require.NoError(t, err)
	out, err := collect(context.Background(), tasks.Message{
		Task: domain.TaskCollectTrends,
		Args: []json.RawMessage{json.RawMessage(`"US"`), json.RawMessage(`"8"`)},
	})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, []string{"US", "8", ""}, trendsSrc.args)

	generate, err := reg.Resolve(domain.TaskGenerateContent)
	require.NoError(t, err)
	out, err = generate(context.Background(), tasks.Message{
		Task: domain.TaskGenerateContent,
		Args: []json.RawMessage{json.RawMessage(`{"country":"US","category":"8","title":"Eclipse 2024"}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`{"ok":true}`), out)

	_, err = generate(context.Background(), tasks.Message{
		Task: domain.TaskGenerateContent,
		Args: []json.RawMessage{json.RawMessage(`{"country":"US"}`)},
	})
	assert.ErrorContains(t, err, "missing required fields")
	assert.Len(t, pub.payloads, 1)

	_, err = collect(context.Background(), tasks.Message{Task: domain.TaskCollectTrends})
	assert.ErrorContains(t, err, "country")
}

func TestCollectTrendsReturnsProviderError(t *testing.T) {
	t.Parallel()

	provErr := &domain.ProviderError{Op: "request feed", Err: errors.New("timeout")}
	p := NewPipeline(PipelineDeps{Trends: &fakeTrends{err: provErr}})

	_, err := p.CollectTrends(context.Background(), "US", "8", "")
	assert.Equal(t, provErr, err)
	assert.Equal(t, provErr.Error(), err.Error())
}
