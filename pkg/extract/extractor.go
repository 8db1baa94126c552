package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/coolbeans/boelex/pkg/identifier"
	"github.com/coolbeans/boelex/pkg/textnorm"
)

// Extractor segments gazette pages into article records. It holds only
// compiled patterns and is safe for concurrent use.
type Extractor struct {
	// Container boundaries: <div class="bloque" id="a4bis">.
	divOpenPattern    *regexp.Regexp
	blockClassPattern *regexp.Regexp
	blockIDPattern    *regexp.Regexp

	// The heading element that must open a container, optionally preceded
	// by block-index markers.
	leadingHeadingPattern *regexp.Regexp

	headings *headingParser
}

// NewExtractor creates an Extractor with the BOE consolidated-text patterns.
func NewExtractor() *Extractor {
	return &Extractor{
		divOpenPattern:    regexp.MustCompile(`(?i)<div\b[^>]*>`),
		blockClassPattern: regexp.MustCompile(`(?i)\bclass\s*=\s*"[^"]*\bbloque\b[^"]*"`),
		blockIDPattern:    regexp.MustCompile(`(?i)\bid\s*=\s*"([^"]+)"`),

		leadingHeadingPattern: regexp.MustCompile(
			`(?is)^\s*(?:<p\b[^>]*class="[^"]*\bbloque\b[^"]*"[^>]*>.*?</p\s*>\s*)*<(h[1-6]|p)\b[^>]*>(.*?)</(?:h[1-6]|p)\s*>`,
		),

		headings: newHeadingParser(),
	}
}

var defaultExtractor = NewExtractor()

// ExtractArticles returns the articles of a gazette page in identifier order.
// Containers without a recognizable article heading are skipped; the result is
// empty, never nil, when nothing is found.
func ExtractArticles(document string) []ArticleRecord {
	return defaultExtractor.Extract(document)
}

// FindArticle extracts the single article whose identifier equals
// articleNumber ("4 bis", "4BIS" and "cuarto bis" are the same article).
func FindArticle(document, articleNumber string) (ArticleRecord, bool) {
	return defaultExtractor.Find(document, articleNumber)
}

// Extract returns the ordered article records of document.
func (e *Extractor) Extract(document string) []ArticleRecord {
	return e.ExtractDetailed(document).Articles
}

// Find returns the record matching articleNumber, if the page contains it.
func (e *Extractor) Find(document, articleNumber string) (ArticleRecord, bool) {
	target, err := identifier.Parse(articleNumber)
	if err != nil {
		return ArticleRecord{}, false
	}
	for _, record := range e.Extract(document) {
		id, err := record.ID()
		if err == nil && id.Equal(target) {
			return record, true
		}
	}
	return ArticleRecord{}, false
}

// ExtractDetailed is Extract with container counts and the reasons each
// skipped container produced no record.
func (e *Extractor) ExtractDetailed(document string) *Extraction {
	result := &Extraction{Articles: make([]ArticleRecord, 0)}

	for _, block := range e.segment(document) {
		result.Containers++

		record, reason := e.parseBlock(block.body)
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedBlock{BlockID: block.id, Reason: reason})
			continue
		}
		result.Articles = append(result.Articles, record)
	}

	identifier.SortBy(result.Articles, func(record ArticleRecord) string {
		return record.ArticleNumber
	})
	return result
}

// block is the markup between one container boundary and the next.
type block struct {
	id   string
	body string
}

// segment cuts the document at container boundaries. Each container runs
// from the end of its opening tag to the start of the next boundary.
func (e *Extractor) segment(document string) []block {
	var starts [][2]int
	var ids []string

	for _, loc := range e.divOpenPattern.FindAllStringIndex(document, -1) {
		tag := document[loc[0]:loc[1]]
		if !e.blockClassPattern.MatchString(tag) {
			continue
		}
		idMatch := e.blockIDPattern.FindStringSubmatch(tag)
		if idMatch == nil {
			continue
		}
		starts = append(starts, [2]int{loc[0], loc[1]})
		ids = append(ids, idMatch[1])
	}

	blocks := make([]block, 0, len(starts))
	for i, start := range starts {
		end := len(document)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		blocks = append(blocks, block{id: ids[i], body: document[start[1]:end]})
	}
	return blocks
}

// parseBlock turns one container into a record, or explains why it cannot.
func (e *Extractor) parseBlock(body string) (ArticleRecord, string) {
	loc := e.leadingHeadingPattern.FindStringSubmatchIndex(body)
	if loc == nil {
		return ArticleRecord{}, "no leading heading"
	}

	headingText := textnorm.CollapseSpaces(html.UnescapeString(reTag.ReplaceAllString(body[loc[4]:loc[5]], " ")))
	if !strings.HasPrefix(strings.ToLower(textnorm.StripDiacritics(headingText)), "articulo") {
		return ArticleRecord{}, "heading is not an article"
	}

	parsed, ok := e.headings.parse(headingText)
	if !ok {
		return ArticleRecord{}, "unresolvable article number: " + headingText
	}

	return ArticleRecord{
		ArticleNumber: parsed.articleNumber,
		Title:         parsed.title,
		Content:       CleanContent(body[loc[1]:]),
	}, ""
}
