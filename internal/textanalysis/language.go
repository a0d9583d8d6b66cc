package textanalysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
	"golang.org/x/text/language"
)

// DefaultLanguage is assumed when a request names no language.
const DefaultLanguage = "en"

// ErrInvalidLanguage is returned for malformed language tags.
var ErrInvalidLanguage = errors.New("invalid language tag")

// ParseLanguage validates a BCP 47 tag and returns its base language code.
// An empty tag yields DefaultLanguage.
func ParseLanguage(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return DefaultLanguage, nil
	}

	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, tag)
	}
	base, _ := t.Base()
	return base.String(), nil
}

// LanguageDetector guesses the language of a text among a fixed set.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

// NewLanguageDetector builds a detector for the languages veracity sees most.
func NewLanguageDetector() *LanguageDetector {
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.French,
			lingua.Spanish,
			lingua.German,
			lingua.Portuguese,
			lingua.Italian,
		).
		WithMinimumRelativeDistance(0.1).
		Build()
	return &LanguageDetector{detector: d}
}

// Detect returns the ISO 639-1 code of text, or "" when unsure.
func (d *LanguageDetector) Detect(text string) string {
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
