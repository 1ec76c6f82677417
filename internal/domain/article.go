package domain

import (
	"encoding/json"
	"time"
)

// DefaultLanguage is used when a caller does not ask for a specific article language.
const DefaultLanguage = "en"

// SEOMetadata is optional search metadata attached to a draft.
type SEOMetadata struct {
	SEOTitle    string   `json:"seo_title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// ArticleDraft is unstructured generated text plus the parameters it was generated for.
// The content is never checked for section structure.
type ArticleDraft struct {
	Topic    string       `json:"topic"`
	Language string       `json:"language"`
	Content  string       `json:"content"`
	Country  string       `json:"country,omitempty"`
	Category string       `json:"category,omitempty"`
	SEO      *SEOMetadata `json:"seo,omitempty"`
}

// ImageAsset is an illustration produced by the image provider.
type ImageAsset struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text"`
}

const altTextLimit = 125

// AltText derives accessible text from a prompt: the prompt itself, or its
// first 125 characters followed by "..." when it is longer.
func AltText(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= altTextLimit {
		return prompt
	}
	return string(runes[:altTextLimit]) + "..."
}

// PublishPayload is the exact body the CMS expects for a new article.
type PublishPayload struct {
	Topic    string       `json:"topic"`
	Language string       `json:"language"`
	Content  string       `json:"content"`
	SEO      *SEOMetadata `json:"seo,omitempty"`
	Prompt   string       `json:"prompt"`
	ImageURL string       `json:"image_url"`
	AltText  string       `json:"alt_text"`
	Country  string       `json:"country"`
	Category string       `json:"category"`
}

// NewPublishPayload merges a draft, its image and the request context.
// Request country and category win over whatever the draft echoed.
func NewPublishPayload(draft ArticleDraft, image ImageAsset, country, category string) PublishPayload {
	return PublishPayload{
		Topic:    draft.Topic,
		Language: draft.Language,
		Content:  draft.Content,
		SEO:      draft.SEO,
		Prompt:   image.Prompt,
		ImageURL: image.ImageURL,
		AltText:  image.AltText,
		Country:  country,
		Category: category,
	}
}

// Publication is a log entry for an article accepted by the CMS.
type Publication struct {
	Title       string
	Country     string
	Category    string
	ImageURL    string
	Response    json.RawMessage
	PublishedAt time.Time
}
