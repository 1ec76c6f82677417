package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TrendsLibrary/internal/config"
	"TrendsLibrary/internal/domain"
	"TrendsLibrary/internal/ports"
)

const providerName = "openai-chat"

// ChatGPTClient implements ports.ChatCompleter backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ChatCompleter = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.OpenAIConfig, client *http.Client) *ChatGPTClient {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &ChatGPTClient{
		endpoint:   strings.TrimSuffix(cfg.BaseURL, "/") + "/chat/completions",
		apiKey:     cfg.APIKey,
		httpClient: client,
	}
}

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []ports.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete posts the conversation and returns the first choice's content.
func (c *ChatGPTClient) Complete(ctx context.Context, req ports.ChatRequest) (string, error) {
	if c == nil {
		return "", genErr(0, errors.New("chatgpt client is nil"))
	}
	if c.apiKey == "" || c.endpoint == "" || req.Model == "" {
		return "", genErr(0, errors.New("chatgpt client misconfigured"))
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", genErr(0, fmt.Errorf("marshal chatgpt payload: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", genErr(0, fmt.Errorf("new request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", genErr(0, fmt.Errorf("send completion: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", genErr(resp.StatusCode, fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload))))
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", genErr(resp.StatusCode, fmt.Errorf("decode completion: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", genErr(resp.StatusCode, errors.New("unexpected response shape: no choices"))
	}

	return parsed.Choices[0].Message.Content, nil
}

func genErr(status int, err error) error {
	return &domain.GenerationError{Provider: providerName, StatusCode: status, Err: err}
}
