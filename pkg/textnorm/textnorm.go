// Package textnorm provides the Unicode and whitespace normalization shared by
// the numeral, identifier, and similarity packages.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks after canonical decomposition, so
// "quáter" becomes "quater" and "dieciséis" becomes "dieciseis".
// The result is recomposed to NFC.
func StripDiacritics(text string) string {
	if isASCII(text) {
		return text
	}
	// Transformers are stateful, so each call builds its own chain.
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(chain, text)
	if err != nil {
		return text
	}
	return stripped
}

// CollapseSpaces replaces every run of Unicode whitespace (including
// newlines and non-breaking spaces) with a single space and trims the ends.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Fold lowercases text, strips diacritics, and collapses whitespace.
func Fold(text string) string {
	return CollapseSpaces(StripDiacritics(strings.ToLower(text)))
}

func isASCII(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] >= 0x80 {
			return false
		}
	}
	return true
}
