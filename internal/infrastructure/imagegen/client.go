package imagegen

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

const (
	providerName = "openai-images"
	// DefaultSize is the resolution requested when the caller passes none.
	DefaultSize = "1024x1024"
)

// Client talks to an OpenAI-compatible image generation endpoint.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

var _ ports.ImageGenerator = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.OpenAIConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + "/images/generations",
		apiKey:   cfg.APIKey,
		model:    cfg.ImageModel,
		http:     httpClient,
	}
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Generate requests exactly one image for the prompt.
func (c *Client) Generate(ctx context.Context, prompt, size string) (domain.ImageAsset, error) {
	if size == "" {
		size = DefaultSize
	}

	payload := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"n":      1,
		"size":   size,
	}

	var resp imageResponse
	if err := c.post(ctx, payload, &resp); err != nil {
		return domain.ImageAsset{}, err
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return domain.ImageAsset{}, &domain.GenerationError{
			Provider:   providerName,
			StatusCode: http.StatusOK,
			Err:        errors.New("unexpected response shape: missing image url"),
		}
	}

	return domain.ImageAsset{
		Prompt:   prompt,
		ImageURL: resp.Data[0].URL,
		AltText:  domain.AltText(prompt),
	}, nil
}

func (c *Client) post(ctx context.Context, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return c.fail(0, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return c.fail(0, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(0, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return c.fail(resp.StatusCode, fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg))))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return c.fail(resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}

	return nil
}

func (c *Client) fail(status int, err error) error {
	return &domain.GenerationError{Provider: providerName, StatusCode: status, Err: err}
}
