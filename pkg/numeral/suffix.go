package numeral

import (
	"fmt"
	"strings"

	"github.com/coolbeans/boelex/pkg/textnorm"
)

// Suffix is a Latin ordinal extension appended to an article number to denote
// an article inserted without renumbering the law ("4 bis", "22 quater").
// The integer value of a Suffix is its rank in article ordering.
type Suffix int

const (
	SuffixNone Suffix = iota
	SuffixBis
	SuffixTer
	SuffixQuater
	SuffixQuinquies
	SuffixSexies
	SuffixSepties
	SuffixOcties
	SuffixNonies
	SuffixDecies
)

// suffixNames is indexed by Suffix.
var suffixNames = [...]string{
	SuffixNone:      "",
	SuffixBis:       "bis",
	SuffixTer:       "ter",
	SuffixQuater:    "quater",
	SuffixQuinquies: "quinquies",
	SuffixSexies:    "sexies",
	SuffixSepties:   "septies",
	SuffixOcties:    "octies",
	SuffixNonies:    "nonies",
	SuffixDecies:    "decies",
}

// String returns the canonical lowercase, unaccented suffix word, or the empty
// string for SuffixNone.
func (s Suffix) String() string {
	if !s.Valid() {
		return ""
	}
	return suffixNames[s]
}

// Rank returns the ordering rank used when comparing article identifiers.
func (s Suffix) Rank() int {
	return int(s)
}

// Valid reports whether s is one of the declared suffixes (including SuffixNone).
func (s Suffix) Valid() bool {
	return s >= SuffixNone && s <= SuffixDecies
}

// Suffixes returns every suffix except SuffixNone, in rank order.
func Suffixes() []Suffix {
	all := make([]Suffix, 0, len(suffixNames)-1)
	for s := SuffixBis; s <= SuffixDecies; s++ {
		all = append(all, s)
	}
	return all
}

// ParseSuffix recognizes a single suffix word regardless of case or accents
// ("BIS", "quáter"). The empty word is not a suffix.
func ParseSuffix(word string) (Suffix, bool) {
	folded := textnorm.StripDiacritics(strings.ToLower(strings.TrimSpace(word)))
	if folded == "" {
		return SuffixNone, false
	}
	for _, s := range Suffixes() {
		if suffixNames[s] == folded {
			return s, true
		}
	}
	return SuffixNone, false
}

// SuffixPattern returns a regular-expression alternation of the canonical
// suffix words, longest first so that leftmost-first matching never stops at
// a shorter word.
func SuffixPattern() string {
	words := make([]string, 0, len(suffixNames)-1)
	for _, s := range Suffixes() {
		words = append(words, suffixNames[s])
	}
	// Insertion sort by descending length keeps the rank order for ties.
	for i := 1; i < len(words); i++ {
		for j := i; j > 0 && len(words[j]) > len(words[j-1]); j-- {
			words[j], words[j-1] = words[j-1], words[j]
		}
	}
	return strings.Join(words, "|")
}

// MarshalText encodes the suffix as its canonical word.
func (s Suffix) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid suffix %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts a canonical or accented suffix word, or the empty
// string for SuffixNone.
func (s *Suffix) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = SuffixNone
		return nil
	}
	parsed, ok := ParseSuffix(string(text))
	if !ok {
		return fmt.Errorf("unknown suffix %q", string(text))
	}
	*s = parsed
	return nil
}
