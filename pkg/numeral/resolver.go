// Package numeral resolves Spanish numeral phrases, as they appear in BOE
// article headings ("Artículo ciento ochenta y cuatro", "Artículo cuarto bis"),
// into decimal article numbers.
//
// The grammar is closed: ordinals and units up to nine, teens, the
// twenty-group, decades, "<decade> y <unit>" compounds, and the hundred
// markers up to three hundred, optionally followed by one remainder phrase.
// Anything outside the grammar is rejected rather than partially resolved.
package numeral

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/coolbeans/boelex/pkg/textnorm"
)

// Value is a resolved numeral with its optional Latin suffix.
type Value struct {
	Number int    `json:"number"`
	Suffix Suffix `json:"suffix"`
}

// String formats the value as "<number>" or "<number> <suffix>".
func (v Value) String() string {
	number := strconv.Itoa(v.Number)
	if v.Suffix == SuffixNone {
		return number
	}
	return number + " " + v.Suffix.String()
}

// Resolve converts a Spanish numeral phrase into its decimal string form,
// keeping a trailing Latin suffix: "treinta y cinco quáter" resolves to
// "35 quater". The boolean is false when the main numeral is not part of the
// grammar, whether or not a valid suffix follows it.
func Resolve(text string) (string, bool) {
	value, ok := ResolveValue(text)
	if !ok {
		return "", false
	}
	return value.String(), true
}

// ResolveValue is Resolve returning the structured value.
func ResolveValue(text string) (Value, bool) {
	trimmed := strings.TrimRightFunc(text, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
	words := strings.Fields(textnorm.Fold(trimmed))
	if len(words) == 0 {
		return Value{}, false
	}

	suffix := SuffixNone
	if len(words) > 1 {
		if parsed, ok := ParseSuffix(words[len(words)-1]); ok {
			suffix = parsed
			words = words[:len(words)-1]
		}
	}

	number, ok := resolveWords(words)
	if !ok {
		return Value{}, false
	}
	return Value{Number: number, Suffix: suffix}, true
}

// resolveWords applies the parse strategies in order: direct table lookup,
// compound decade, bare hundred marker, then hundred marker plus remainder.
func resolveWords(words []string) (int, bool) {
	phrase := strings.Join(words, " ")
	if token, ok := Classify(phrase); ok {
		return token.Value, true
	}

	if len(words) < 2 {
		return 0, false
	}
	hundred, ok := hundreds[words[0]]
	if !ok {
		return 0, false
	}
	remainder := strings.Join(words[1:], " ")
	if token, ok := lookupDirect(remainder); ok {
		return hundred + token.Value, true
	}
	if token, ok := lookupCompoundDecade(remainder); ok {
		return hundred + token.Value, true
	}
	return 0, false
}
