package domain

import (
	"fmt"
	"strings"
	"time"
)

// TrendRecord is one ranked search topic with its collection context.
type TrendRecord struct {
	Country      string    `json:"country"`
	Category     string    `json:"category,omitempty"`
	Title        string    `json:"title"`
	TrafficValue *int64    `json:"traffic_value"`
	CollectedAt  time.Time `json:"ts_collected"`
}

// GenerationRequest is the client-supplied input of a content generation job.
type GenerationRequest struct {
	Country  string `json:"country"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Period   string `json:"period,omitempty"`
}

// Validate checks only the shape: required fields must be non-empty.
func (r GenerationRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Country) == "" {
		missing = append(missing, "country")
	}
	if strings.TrimSpace(r.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
