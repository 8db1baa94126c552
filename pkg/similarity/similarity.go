// Package similarity decides whether two article texts are the same legal
// content despite accent, punctuation, and minor wording drift.
package similarity

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/coolbeans/boelex/pkg/textnorm"
)

// MatchThreshold is the similarity a comparison must exceed to count as a match.
const MatchThreshold = 95

// MinTokenLength is the shortest token that takes part in the overlap score;
// shorter tokens (articles, prepositions) are discarded.
const MinTokenLength = 3

// Result is the outcome of one comparison.
type Result struct {
	Match      bool `json:"match"`
	Similarity int  `json:"similarity"`
}

// ignoredPunctuation is removed entirely during normalization.
var ignoredPunctuation = strings.NewReplacer(
	".", "",
	",", "",
	";", "",
	":", "",
	"(", "",
	")", "",
	`"`, "",
	"-", "",
)

// Normalize lowercases, strips diacritics and the punctuation set
// `.,;:()"-`, and collapses whitespace.
func Normalize(text string) string {
	folded := textnorm.StripDiacritics(strings.ToLower(text))
	return textnorm.CollapseSpaces(ignoredPunctuation.Replace(folded))
}

// CompareContent scores the lexical overlap of a and b.
//
// Identical normalized texts (two empty texts included) score 100. Otherwise
// the score is the number of shared distinct tokens over the size of the
// larger token set, so a short text wholly contained in a longer one still
// scores high. The comparison is symmetric.
func CompareContent(a, b string) Result {
	normalizedA := Normalize(a)
	normalizedB := Normalize(b)
	if normalizedA == normalizedB {
		return Result{Match: true, Similarity: 100}
	}

	tokensA := tokenSet(normalizedA)
	tokensB := tokenSet(normalizedB)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return Result{Match: false, Similarity: 0}
	}

	shared := 0
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			shared++
		}
	}

	larger := max(len(tokensA), len(tokensB))
	score := int(math.Round(100 * float64(shared) / float64(larger)))
	return Result{Match: score > MatchThreshold, Similarity: score}
}

// tokenSet splits normalized text on spaces and keeps the distinct tokens of
// at least MinTokenLength runes.
func tokenSet(normalized string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range strings.Split(normalized, " ") {
		if utf8.RuneCountInString(token) < MinTokenLength {
			continue
		}
		tokens[token] = struct{}{}
	}
	return tokens
}
