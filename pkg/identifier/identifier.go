// Package identifier models BOE article identifiers ("216", "4 bis",
// "216 bis 2") and defines their canonical text form and total order.
package identifier

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/boelex/pkg/numeral"
	"github.com/coolbeans/boelex/pkg/textnorm"
)

// ErrInvalid is returned (wrapped) by Parse for text that is neither a numeric
// identifier nor a resolvable Spanish numeral.
var ErrInvalid = errors.New("invalid article identifier")

// ID is the structured form of an article number. SubNumber is meaningful only
// when HasSubNumber is set, and BOE identifiers only carry a sub-number after
// a suffix.
type ID struct {
	Base         int            `json:"base"`
	Suffix       numeral.Suffix `json:"suffix"`
	SubNumber    int            `json:"sub_number,omitempty"`
	HasSubNumber bool           `json:"has_sub_number,omitempty"`
}

var (
	gluedSuffixPattern    = regexp.MustCompile(`(\d)(` + numeral.SuffixPattern() + `)`)
	gluedSubNumberPattern = regexp.MustCompile(`(` + numeral.SuffixPattern() + `)(\d)`)
	numericPattern        = regexp.MustCompile(`^(\d+)(?: (\pL+)(?: (\d+))?)?$`)
)

// NormalizeText returns the canonical spelling of a human-authored identifier:
// lowercase, unaccented, with a glued suffix or sub-number split off and single
// spaces between tokens. "55BIS" becomes "55 bis", "22 quáter" becomes
// "22 quater", "216bis2" becomes "216 bis 2". NormalizeText is idempotent.
func NormalizeText(raw string) string {
	// Accents go first: the suffix vocabulary below is unaccented.
	text := textnorm.StripDiacritics(strings.ToLower(raw))
	text = gluedSuffixPattern.ReplaceAllString(text, "$1 $2")
	text = gluedSubNumberPattern.ReplaceAllString(text, "$1 $2")
	return textnorm.CollapseSpaces(text)
}

// Parse builds an ID from either a numeric identifier ("216 bis 2", "55bis")
// or a Spanish numeral phrase ("cuarto bis").
func Parse(text string) (ID, error) {
	normalized := NormalizeText(text)
	if normalized == "" {
		return ID{}, fmt.Errorf("%w: empty", ErrInvalid)
	}

	if match := numericPattern.FindStringSubmatch(normalized); match != nil {
		base, err := strconv.Atoi(match[1])
		if err != nil {
			return ID{}, fmt.Errorf("%w: %q: %v", ErrInvalid, text, err)
		}
		id := ID{Base: base}
		if match[2] != "" {
			suffix, ok := numeral.ParseSuffix(match[2])
			if !ok {
				return ID{}, fmt.Errorf("%w: %q: unknown suffix %q", ErrInvalid, text, match[2])
			}
			id.Suffix = suffix
		}
		if match[3] != "" {
			subNumber, err := strconv.Atoi(match[3])
			if err != nil {
				return ID{}, fmt.Errorf("%w: %q: %v", ErrInvalid, text, err)
			}
			id.SubNumber = subNumber
			id.HasSubNumber = true
		}
		return id, nil
	}

	value, ok := numeral.ResolveValue(normalized)
	if !ok {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalid, text)
	}
	return ID{Base: value.Number, Suffix: value.Suffix}, nil
}

// MustParse is Parse for identifiers known to be valid; it panics otherwise.
func MustParse(text string) ID {
	id, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return id
}

// String formats the canonical identifier, e.g. "216 bis 2".
func (id ID) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(id.Base))
	if id.Suffix != numeral.SuffixNone {
		sb.WriteByte(' ')
		sb.WriteString(id.Suffix.String())
	}
	if id.HasSubNumber {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(id.SubNumber))
	}
	return sb.String()
}

// Equal reports whether all three components match, including whether a
// sub-number is present.
func (id ID) Equal(other ID) bool {
	return id == other
}

// Canonical returns the storage key for an identifier: the String form when
// text parses, otherwise its normalized spelling.
func Canonical(text string) string {
	id, err := Parse(text)
	if err != nil {
		return NormalizeText(text)
	}
	return id.String()
}
