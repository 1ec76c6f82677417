package cms

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

// Publisher posts finished articles to the CMS articles collection.
type Publisher struct {
	endpoint string
	token    string
	client   *http.Client
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher registers the CMS base URL and bearer token.
func NewPublisher(cfg config.CMSConfig, client *http.Client) *Publisher {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Publisher{
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + "/articles",
		token:    cfg.Token,
		client:   client,
	}
}

// Publish sends the payload and returns the CMS response body untouched.
func (p *Publisher) Publish(ctx context.Context, payload domain.PublishPayload) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.PublishError{Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &domain.PublishError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.PublishError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.PublishError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if !json.Valid(raw) {
		return nil, &domain.PublishError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Err:        errors.New("response is not json"),
		}
	}

	return json.RawMessage(raw), nil
}
