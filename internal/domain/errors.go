package domain

import "fmt"

// ProviderError reports an unreachable or malformed trend source.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("trend provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// GenerationError reports a text or image provider failure.
// StatusCode is zero when the provider was never reached.
type GenerationError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s generation failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PublishError carries the CMS status code and body of a rejected publish.
type PublishError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *PublishError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("cms unreachable: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("cms returned %d: %v: %s", e.StatusCode, e.Err, e.Body)
	}
	return fmt.Sprintf("cms returned %d: %s", e.StatusCode, e.Body)
}

func (e *PublishError) Unwrap() error { return e.Err }

// ConfigError reports a required setting that is absent.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
