package extract

import (
	"regexp"
	"strings"

	"github.com/coolbeans/boelex/pkg/numeral"
	"github.com/coolbeans/boelex/pkg/textnorm"
)

// heading is a parsed "Artículo ..." heading.
type heading struct {
	articleNumber string
	title         *string
}

// headingParser recognizes the numeric and textual heading forms.
type headingParser struct {
	numericPattern *regexp.Regexp
	textualPattern *regexp.Regexp
}

func newHeadingParser() *headingParser {
	// The suffix slot accepts "quáter" as well as the canonical spelling.
	suffixes := strings.Replace(numeral.SuffixPattern(), "quater", "qu[aá]ter", 1)

	return &headingParser{
		// Artículo 216 bis 2. Title
		numericPattern: regexp.MustCompile(
			`(?i)^art[ií]culo\s+(\d+)[º°ª]?(?:\s*(` + suffixes + `)\b(?:\s+(\d+))?)?\s*(?:\.(?:\s*[º°ª])?\s*(.*))?$`,
		),
		// Artículo ciento ochenta y cuatro. Title
		textualPattern: regexp.MustCompile(`(?i)^art[ií]culo\s+(.+)$`),
	}
}

// parse interprets heading text that has already had its tags removed and its
// whitespace collapsed. It reports false when the text is not an article
// heading or its numeral cannot be resolved.
func (p *headingParser) parse(text string) (heading, bool) {
	if match := p.numericPattern.FindStringSubmatch(text); match != nil {
		number := match[1]
		if match[2] != "" {
			number += " " + match[2]
			if match[3] != "" {
				number += " " + match[3]
			}
		}
		return heading{
			articleNumber: textnorm.CollapseSpaces(number),
			title:         cleanTitle(match[4]),
		}, true
	}

	match := p.textualPattern.FindStringSubmatch(text)
	if match == nil {
		return heading{}, false
	}

	phrase, title, hasTitle := strings.Cut(match[1], ". ")
	resolved, ok := numeral.Resolve(phrase)
	if !ok {
		return heading{}, false
	}

	parsed := heading{articleNumber: textnorm.CollapseSpaces(resolved)}
	if hasTitle {
		parsed.title = cleanTitle(title)
	}
	return parsed, true
}

// cleanTitle trims the title and drops one trailing period; an empty title
// becomes nil.
func cleanTitle(raw string) *string {
	title := strings.TrimSpace(raw)
	title = strings.TrimSpace(strings.TrimSuffix(title, "."))
	if title == "" {
		return nil
	}
	return stringPtr(title)
}
