package boe

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/coolbeans/boelex/pkg/extract"
	"github.com/coolbeans/boelex/pkg/textnorm"
)

// Document is one downloaded gazette page.
type Document struct {
	LawID       string    `json:"law_id,omitempty"`
	URL         string    `json:"url"`
	HTML        string    `json:"html"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	FetchedAt   time.Time `json:"fetched_at"`
	Cached      bool      `json:"cached"`
}

var (
	reDocumentTitle = regexp.MustCompile(`(?is)<h3\b[^>]*class="[^"]*\bdocumento-tit\b[^"]*"[^>]*>(.*?)</h3\s*>`)
	rePageTitle     = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title\s*>`)
	reAnyTag        = regexp.MustCompile(`<[^>]*>`)
)

// Articles runs the article extractor over the page.
func (d *Document) Articles() []extract.ArticleRecord {
	return extract.ExtractArticles(d.HTML)
}

// Title returns the law title shown on the page, falling back to the HTML
// <title>. It is empty when neither is present.
func (d *Document) Title() string {
	for _, pattern := range []*regexp.Regexp{reDocumentTitle, rePageTitle} {
		if match := pattern.FindStringSubmatch(d.HTML); match != nil {
			title := reAnyTag.ReplaceAllString(match[1], " ")
			title = textnorm.CollapseSpaces(html.UnescapeString(title))
			if title != "" {
				return strings.TrimSuffix(title, " - BOE.es")
			}
		}
	}
	return ""
}
