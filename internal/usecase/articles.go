package usecase

import (
	"context"
	"fmt"
	"strings"

	"TrendsLibrary/internal/domain"
	"TrendsLibrary/internal/ports"
)

const (
	articleSystemPrompt = "You are a helpful assistant that writes comprehensive articles based on given topics."
	newsSystemPrompt    = "You are a journalist who writes concise news articles."
	temperature         = 0.7
)

// ArticleService turns topics into prompts for the chat model.
type ArticleService struct {
	chat         ports.ChatCompleter
	articleModel string
	newsModel    string
}

var (
	_ ports.ArticleGenerator = (*ArticleService)(nil)
	_ ports.NewsWriter       = (*ArticleService)(nil)
)

// NewArticleService picks gpt-4o and gpt-3.5-turbo when models are left empty.
func NewArticleService(chat ports.ChatCompleter, articleModel, newsModel string) *ArticleService {
	if articleModel == "" {
		articleModel = "gpt-4o"
	}
	if newsModel == "" {
		newsModel = "gpt-3.5-turbo"
	}
	return &ArticleService{chat: chat, articleModel: articleModel, newsModel: newsModel}
}

// Generate writes a long-form article about topic in the given language.
func (s *ArticleService) Generate(ctx context.Context, topic, language string) (domain.ArticleDraft, error) {
	if language == "" {
		language = domain.DefaultLanguage
	}

	content, err := s.complete(ctx, s.articleModel, articleSystemPrompt, longFormPrompt(topic, language, ""))
	if err != nil {
		return domain.ArticleDraft{}, err
	}

	return domain.ArticleDraft{Topic: topic, Language: language, Content: content}, nil
}

// GenerateForTrend is Generate with the trend's country and category in the prompt.
func (s *ArticleService) GenerateForTrend(ctx context.Context, title, country, category string) (domain.ArticleDraft, error) {
	prompt := longFormPrompt(title, domain.DefaultLanguage, trendContext(country, category))
	content, err := s.complete(ctx, s.articleModel, articleSystemPrompt, prompt)
	if err != nil {
		return domain.ArticleDraft{}, err
	}

	return domain.ArticleDraft{
		Topic:    title,
		Language: domain.DefaultLanguage,
		Content:  content,
		Country:  country,
		Category: category,
	}, nil
}

// WriteNews writes a short neutral news piece with a headline on its first line.
func (s *ArticleService) WriteNews(ctx context.Context, topic string) (string, error) {
	prompt := fmt.Sprintf("Write a 4-5-paragraph news article about '%s'. "+
		"Include a headline and subheadings. Keep it factual and neutral.", topic)

	content, err := s.complete(ctx, s.newsModel, newsSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (s *ArticleService) complete(ctx context.Context, model, system, prompt string) (string, error) {
	return s.chat.Complete(ctx, ports.ChatRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []ports.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	})
}

func longFormPrompt(topic, language, about string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a detailed long-form article (2000-4000 words) about '%s'", topic)
	if about != "" {
		b.WriteString(", ")
		b.WriteString(about)
	}
	b.WriteString(". ")
	fmt.Fprintf(&b, "The article should be written in %s and include the following sections: ", language)
	b.WriteString("Introduction, History, Situation, Impact, FAQ. ")
	b.WriteString("Provide SEO metadata including a title, a short description, and relevant keywords.")
	return b.String()
}

func trendContext(country, category string) string {
	switch {
	case country != "" && category != "":
		return fmt.Sprintf("a topic currently trending in %s (category %s)", country, category)
	case country != "":
		return fmt.Sprintf("a topic currently trending in %s", country)
	case category != "":
		return fmt.Sprintf("a topic currently trending in category %s", category)
	default:
		return ""
	}
}
