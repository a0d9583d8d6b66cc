// Package textanalysis extracts text features and scores them for likely
// fabrication.
package textanalysis

import (
	"strings"
	"unicode"

	"github.com/jonesrussell/veracity/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text, drops every rune that is neither a word
// character nor whitespace, and collapses whitespace runs to one space.
// It returns domain.ErrEmptyInput when nothing is left.
func Normalize(text string) (string, error) {
	folded := lowercase(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		return "", domain.ErrEmptyInput
	}
	return out, nil
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}

// lowercase builds a fresh Caser per call; a Caser is stateful and must not
// be shared between goroutines.
func lowercase(s string) string {
	return cases.Lower(language.Und).String(s)
}
