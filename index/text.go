package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold returns s in NFKC form, lowercased.
// Compatibility forms such as full-width Latin letters and Arabic
// presentation forms collapse to their canonical letters.
func Fold(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// Tokenize folds s and splits it on whitespace. Leading and trailing
// punctuation is trimmed from each token; tokens left empty are dropped.
func Tokenize(s string) []string {
	fields := strings.Fields(Fold(s))
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, unicode.IsPunct)
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
