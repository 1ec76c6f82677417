package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAltText(t *testing.T) {
	t.Parallel()

	short := "A solar eclipse over Texas"
	assert.Equal(t, short, AltText(short))

	exact := strings.Repeat("a", 125)
	assert.Equal(t, exact, AltText(exact))

	long := strings.Repeat("b", 200)
	alt := AltText(long)
	assert.Len(t, alt, 128)
	assert.True(t, strings.HasSuffix(alt, "..."))
	assert.Equal(t, long[:125], strings.TrimSuffix(alt, "..."))
}

func TestAltTextCountsCharacters(t *testing.T) {
	t.Parallel()

	prompt := strings.Repeat("é", 130)
	alt := AltText(prompt)
	assert.Equal(t, 128, len([]rune(alt)))
}

func TestGenerationRequestValidate(t *testing.T) {
	t.Parallel()

	ok := GenerationRequest{Country: "US", Category: "8", Title: "Eclipse 2024"}
	require.NoError(t, ok.Validate())

	err := GenerationRequest{Country: "US", Title: " "}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category")
	assert.Contains(t, err.Error(), "title")
	assert.NotContains(t, err.Error(), "country")
}

func TestNewPublishPayloadPrefersRequestContext(t *testing.T) {
	t.Parallel()

	draft := ArticleDraft{Topic: "Eclipse", Language: "en", Content: "body", Country: "FR", Category: "1"}
	image := ImageAsset{Prompt: "Eclipse", ImageURL: "https://img/1.png", AltText: "Eclipse"}

	payload := NewPublishPayload(draft, image, "US", "8")
	assert.Equal(t, "US", payload.Country)
	assert.Equal(t, "8", payload.Category)
	assert.Equal(t, "https://img/1.png", payload.ImageURL)
	assert.Equal(t, "body", payload.Content)
}

func TestErrorsUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	var perr *PublishError
	err := error(&PublishError{StatusCode: 502, Body: "bad gateway"})
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "cms returned 502: bad gateway", err.Error())

	gen := &GenerationError{Provider: "openai-chat", Err: cause}
	assert.ErrorIs(t, gen, cause)

	prov := &ProviderError{Op: "fetch feed", Err: cause}
	assert.ErrorIs(t, prov, cause)
	assert.Equal(t, "trend provider: fetch feed: boom", prov.Error())
}
