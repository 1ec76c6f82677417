package trends

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"TrendsLibrary/internal/config"
	"TrendsLibrary/internal/domain"
	"TrendsLibrary/internal/ports"
)

// GoogleTrendsProvider reads the public daily trending-searches RSS feed.
type GoogleTrendsProvider struct {
	feedURL string
	topN    int
	client  *http.Client
	now     func() time.Time
}

var _ ports.TrendProvider = (*GoogleTrendsProvider)(nil)

// NewGoogleTrendsProvider wires an HTTP client; topN defaults to 20.
func NewGoogleTrendsProvider(cfg config.TrendsConfig, client *http.Client) *GoogleTrendsProvider {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = 20
	}
	return &GoogleTrendsProvider{
		feedURL: cfg.FeedURL,
		topN:    topN,
		client:  client,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FetchTrends returns the top items of the feed for a country.
// Category is echoed onto every record; the feed itself is not filtered by it.
func (p *GoogleTrendsProvider) FetchTrends(ctx context.Context, country, category, period string) ([]domain.TrendRecord, error) {
	feedURL, err := buildFeedURL(p.feedURL, country, period)
	if err != nil {
		return nil, &domain.ProviderError{Op: "build url", Err: err}
	}

	feed, err := p.fetchFeed(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	collectedAt := p.now()
	records := make([]domain.TrendRecord, 0, min(len(feed.Items), p.topN))
	for _, item := range feed.Items {
		if len(records) == p.topN {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		records = append(records, domain.TrendRecord{
			Country:      country,
			Category:     category,
			Title:        title,
			TrafficValue: approxTraffic(item),
			CollectedAt:  collectedAt,
		})
	}

	return records, nil
}

func (p *GoogleTrendsProvider) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &domain.ProviderError{Op: "build request", Err: err}
	}
	req.Header.Set("User-Agent", "TrendsLibrary/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Op: "request feed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ProviderError{Op: "request feed", Err: fmt.Errorf("trends returned %s", resp.Status)}
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &domain.ProviderError{Op: "parse feed", Err: err}
	}

	return feed, nil
}

func buildFeedURL(base, country, period string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %s: %w", base, err)
	}

	query := parsed.Query()
	if country != "" {
		query.Set("geo", strings.ToUpper(country))
	}
	if period != "" {
		query.Set("hours", period)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// approxTraffic reads <ht:approx_traffic> values such as "200,000+".
func approxTraffic(item *gofeed.Item) *int64 {
	if item == nil || item.Extensions == nil {
		return nil
	}
	values := item.Extensions["ht"]["approx_traffic"]
	if len(values) == 0 {
		return nil
	}
	return parseTraffic(values[0].Value)
}

func parseTraffic(raw string) *int64 {
	cleaned := strings.NewReplacer(",", "", "+", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
