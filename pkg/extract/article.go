// Package extract segments BOE consolidated-text pages into article records.
//
// The input is a narrow, semi-structured subset of HTML, so segmentation is
// done with tolerant patterns rather than a DOM parser: the page is cut at
// article containers, each container's heading is parsed into an article
// number and optional title, and the rest of the container is stripped down
// to plain text.
package extract

import (
	"encoding/json"

	"github.com/coolbeans/boelex/pkg/identifier"
)

// ArticleRecord is one article extracted from a gazette page.
type ArticleRecord struct {
	// ArticleNumber is the article number as written in the heading, or the
	// resolved decimal form for headings written in words ("184" for
	// "ciento ochenta y cuatro").
	ArticleNumber string `json:"article_number"`

	// Title is the heading text after the article number, nil when absent.
	Title *string `json:"title"`

	// Content is the cleaned article body with paragraphs separated by blank lines.
	Content string `json:"content"`
}

// ID parses the article number into its structured identifier.
func (r ArticleRecord) ID() (identifier.ID, error) {
	return identifier.Parse(r.ArticleNumber)
}

// TitleText returns the title or the empty string.
func (r ArticleRecord) TitleText() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

// SkippedBlock describes a container that did not produce a record.
type SkippedBlock struct {
	BlockID string `json:"block_id"`
	Reason  string `json:"reason"`
}

// Extraction is the detailed result of scanning a document.
type Extraction struct {
	Articles   []ArticleRecord `json:"articles"`
	Containers int             `json:"containers"`
	Skipped    []SkippedBlock  `json:"skipped,omitempty"`
}

// ToJSON serializes the extraction to indented JSON.
func (e *Extraction) ToJSON() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

func stringPtr(value string) *string {
	return &value
}
