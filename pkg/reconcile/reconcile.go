// Package reconcile compares freshly extracted articles against stored ones
// and classifies each article as unchanged, modified, added or removed.
package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coolbeans/boelex/pkg/extract"
	"github.com/coolbeans/boelex/pkg/identifier"
	"github.com/coolbeans/boelex/pkg/similarity"
)

// Status classifies one article.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusModified  Status = "modified"
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
)

// Entry is the reconciliation outcome for one article.
type Entry struct {
	// ArticleNumber is the canonical identifier, e.g. "4 bis".
	ArticleNumber string `json:"article_number"`
	Status        Status `json:"status"`

	// Similarity is the oracle score in [0, 100]; zero for added and removed.
	Similarity int `json:"similarity"`

	// TitleChanged is set when the content matches but the heading title does not.
	TitleChanged bool `json:"title_changed,omitempty"`

	Scraped *extract.ArticleRecord `json:"scraped,omitempty"`
	Stored  *extract.ArticleRecord `json:"stored,omitempty"`
}

// Summary counts entries per status.
type Summary struct {
	Total     int `json:"total"`
	Unchanged int `json:"unchanged"`
	Modified  int `json:"modified"`
	Added     int `json:"added"`
	Removed   int `json:"removed"`
}

// Report is the result of Reconcile.
type Report struct {
	Entries []Entry `json:"entries"`
	Summary Summary `json:"summary"`
}

// Reconcile matches scraped and stored articles by canonical identifier and
// compares matched pairs with the content oracle. When an identifier appears
// more than once on one side, the first occurrence wins.
func Reconcile(scraped, stored []extract.ArticleRecord) *Report {
	storedByKey := indexRecords(stored)
	scrapedByKey := indexRecords(scraped)

	report := &Report{Entries: make([]Entry, 0, len(scrapedByKey)+len(storedByKey))}

	for key, scrapedRecord := range scrapedByKey {
		entry := Entry{ArticleNumber: key, Scraped: scrapedRecord}

		storedRecord, ok := storedByKey[key]
		if !ok {
			entry.Status = StatusAdded
			report.Entries = append(report.Entries, entry)
			continue
		}

		entry.Stored = storedRecord
		result := similarity.CompareContent(scrapedRecord.Content, storedRecord.Content)
		entry.Similarity = result.Similarity
		if result.Match {
			entry.Status = StatusUnchanged
			entry.TitleChanged = scrapedRecord.TitleText() != storedRecord.TitleText()
		} else {
			entry.Status = StatusModified
		}
		report.Entries = append(report.Entries, entry)
	}

	for key, storedRecord := range storedByKey {
		if _, ok := scrapedByKey[key]; !ok {
			report.Entries = append(report.Entries, Entry{
				ArticleNumber: key,
				Status:        StatusRemoved,
				Stored:        storedRecord,
			})
		}
	}

	identifier.SortBy(report.Entries, func(entry Entry) string {
		return entry.ArticleNumber
	})
	report.Summary = summarize(report.Entries)
	return report
}

func indexRecords(records []extract.ArticleRecord) map[string]*extract.ArticleRecord {
	index := make(map[string]*extract.ArticleRecord, len(records))
	for i := range records {
		key := identifier.Canonical(records[i].ArticleNumber)
		if _, seen := index[key]; !seen {
			index[key] = &records[i]
		}
	}
	return index
}

func summarize(entries []Entry) Summary {
	summary := Summary{Total: len(entries)}
	for _, entry := range entries {
		switch entry.Status {
		case StatusUnchanged:
			summary.Unchanged++
		case StatusModified:
			summary.Modified++
		case StatusAdded:
			summary.Added++
		case StatusRemoved:
			summary.Removed++
		}
	}
	return summary
}

// Changed returns the scraped records that need persisting: added and
// modified articles, plus unchanged ones whose title moved.
func (r *Report) Changed() []extract.ArticleRecord {
	changed := make([]extract.ArticleRecord, 0)
	for _, entry := range r.Entries {
		if entry.Status == StatusAdded || entry.Status == StatusModified || entry.TitleChanged {
			changed = append(changed, *entry.Scraped)
		}
	}
	return changed
}

// RemovedNumbers returns the identifiers present only in the stored set.
func (r *Report) RemovedNumbers() []string {
	removed := make([]string, 0)
	for _, entry := range r.Entries {
		if entry.Status == StatusRemoved {
			removed = append(removed, entry.ArticleNumber)
		}
	}
	return removed
}

// HasChanges reports whether anything differs from the stored set.
func (r *Report) HasChanges() bool {
	return r.Summary.Removed > 0 || len(r.Changed()) > 0
}

// ToJSON serializes the report to indented JSON.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FormatTable renders the report as a plain-text table. Unchanged articles
// are listed only when verbose is set.
func (r *Report) FormatTable(verbose bool) string {
	var sb strings.Builder

	sb.WriteString("Article Reconciliation\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(fmt.Sprintf("%-20s %-10s %10s\n", "Article", "Status", "Similarity"))
	sb.WriteString(strings.Repeat("-", 60) + "\n")

	for _, entry := range r.Entries {
		if entry.Status == StatusUnchanged && !entry.TitleChanged && !verbose {
			continue
		}
		status := string(entry.Status)
		if entry.TitleChanged {
			status += " (title)"
		}
		sb.WriteString(fmt.Sprintf("%-20s %-10s %9d%%\n", entry.ArticleNumber, status, entry.Similarity))
	}

	sb.WriteString(strings.Repeat("-", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Total: %d  Unchanged: %d  Modified: %d  Added: %d  Removed: %d\n",
		r.Summary.Total, r.Summary.Unchanged, r.Summary.Modified, r.Summary.Added, r.Summary.Removed))

	return sb.String()
}
