package site

import (
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultIndex = "<!DOCTYPE html>\n" +
	"<html lang=\"en\">\n" +
	"<head><meta charset=\"UTF-8\"><title>Latest News</title></head>\n" +
	"<body>\n" +
	"<h1>Latest News</h1>\n" +
	"<ul>\n</ul>\n" +
	"</body>\n" +
	"</html>\n"

var listOpenTag = regexp.MustCompile(`(?i)<ul(\s[^>]*)?>`)

// RenderArticle returns a standalone HTML page for one article.
func RenderArticle(title, body, date string) string {
	t := html.EscapeString(title)
	bodyHTML := strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n")
	b.WriteString("<head>\n")
	b.WriteString("  <meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&b, "  <title>%s</title>\n", t)
	fmt.Fprintf(&b, "  <meta name=\"description\" content=\"%s\">\n", t)
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	fmt.Fprintf(&b, "  <h1>%s</h1>\n", t)
	fmt.Fprintf(&b, "  <p><em>%s</em></p>\n", date)
	fmt.Fprintf(&b, "  %s\n", bodyHTML)
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")
	return b.String()
}

// IndexLink is the list entry pointing at an article file.
func IndexLink(title, filename, date string) string {
	return fmt.Sprintf("<li><a href=\"articles/%s\">%s (%s)</a></li>\n", filename, html.EscapeString(title), date)
}

// InsertLink puts link at the top of the first list in page unless the exact
// link is already present. A list is synthesized when the page has none.
func InsertLink(page, link string) string {
	if strings.Contains(page, link) {
		return page
	}

	if loc := listOpenTag.FindStringIndex(page); loc != nil {
		pos := loc[1]
		if pos < len(page) && page[pos] == '\n' {
			pos++
		}
		return page[:pos] + link + page[pos:]
	}

	list := "<ul>\n" + link + "</ul>"
	if i := strings.Index(page, "</body>"); i >= 0 {
		return page[:i] + list + page[i:]
	}
	return page + list
}

// UpdateIndex adds the article link to the index page at path, creating the page if needed.
// It returns the resulting page content and whether the file was rewritten.
// It reports whether the page changed.
func UpdateIndex(path, title, filename, date string) (string, bool, error) {
	page := defaultIndex
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		page = string(raw)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return "", false, fmt.Errorf("read index: %w", err)
	}

	updated := InsertLink(page, IndexLink(title, filename, date))
	if updated == page && err == nil {
		return page, false, nil
	}

	if err := writeFile(path, updated); err != nil {
		return "", false, fmt.Errorf("write index: %w", err)
	}
	return updated, true, nil
}

// IndexEntry is one link listed on the index page.
type IndexEntry struct {
	Href string
	Text string
}

// IndexEntries lists the article links of an index page in document order.
func IndexEntries(r io.Reader) ([]IndexEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	var entries []IndexEntry
	doc.Find("ul > li > a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		entries = append(entries, IndexEntry{Href: href, Text: strings.TrimSpace(a.Text())})
	})
	return entries, nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
