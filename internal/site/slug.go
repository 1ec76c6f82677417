package site

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxSlugLen = 50

var separators = strings.NewReplacer(
	" ", "-",
	",", "-",
	".", "-",
	":", "-",
	"?", "-",
	"!", "-",
	";", "-",
	"\n", "-",
)

// Slugify derives a filename-safe identifier from a title.
// The result only contains [a-z0-9-], has no edge hyphens and is at most 50 bytes long.
func Slugify(title string) string {
	raw := separators.Replace(strings.ToLower(title))

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

// ExtractTitle returns the first non-blank line of text, or the title-cased fallback.
func ExtractTitle(text, fallback string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return cases.Title(language.English).String(fallback)
}

// Filename combines the UTC calendar date and the slug.
func Filename(at time.Time, slug string) string {
	return DateString(at) + "-" + slug + ".html"
}

// DateString is the ISO calendar date of at in UTC.
func DateString(at time.Time) string {
	return at.UTC().Format("2006-01-02")
}
