package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases text and strips diacritics.
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	return strings.ToLower(out)
}

// Tokens folds a query and splits it on whitespace.
func Tokens(query string) []string {
	return strings.Fields(Fold(query))
}

// MatchAll reports whether every token occurs in the folded haystack fields.
// An empty token list matches everything.
func MatchAll(tokens []string, fields ...string) bool {
	if len(tokens) == 0 {
		return true
	}
	haystack := Fold(strings.Join(fields, " "))
	for _, token := range tokens {
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}

// Title capitalizes the first letter of each word.
func Title(text string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(text))
}
