package textanalysis

import (
	"errors"
	"fmt"
	"os"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"gopkg.in/yaml.v3"
)

// ErrEmptyLexicon is returned when a lexicon file lists no phrases at all.
var ErrEmptyLexicon = errors.New("lexicon has no phrases")

// DefaultFakeIndicators are phrases associated with sensational or
// unsourced content.
var DefaultFakeIndicators = []string{
	"fake", "hoax", "conspiracy", "unverified", "rumor", "allegedly",
	"supposedly", "claimed", "anonymous source", "insider", "exclusive",
	"breaking", "shocking", "you won't believe", "doctors hate",
	"clickbait", "viral", "trending", "must see", "amazing",
}

// DefaultCredibleIndicators are phrases associated with sourced content.
var DefaultCredibleIndicators = []string{
	"study", "research", "official", "government", "university",
	"peer-reviewed", "journal", "published", "verified", "confirmed",
	"fact-checked", "reliable", "credible", "expert", "scientist",
}

// LexiconFile is the YAML layout of a lexicon file.
type LexiconFile struct {
	FakeIndicators     []string `yaml:"fake_indicators"`
	CredibleIndicators []string `yaml:"credible_indicators"`
}

// Lexicon is an immutable pair of phrase sets compiled into Aho-Corasick
// automata. Phrases are lowercased but otherwise kept as written and
// matched as exact substrings of normalized text, so a phrase carrying
// punctuation such as "peer-reviewed" never matches.
type Lexicon struct {
	fake     phraseSet
	credible phraseSet
}

type phraseSet struct {
	phrases []string
	matcher *ahocorasick.Matcher
}

// LexiconSource yields the lexicon to use for one extraction.
type LexiconSource interface {
	Current() *Lexicon
}

// NewLexicon compiles the two phrase lists. Blank phrases and duplicates
// after lowercasing are dropped.
func NewLexicon(fake, credible []string) *Lexicon {
	return &Lexicon{
		fake:     newPhraseSet(fake),
		credible: newPhraseSet(credible),
	}
}

// DefaultLexicon returns the built-in lexicon.
func DefaultLexicon() *Lexicon {
	return NewLexicon(DefaultFakeIndicators, DefaultCredibleIndicators)
}

// LoadLexiconFile reads a YAML lexicon file.
func LoadLexiconFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}

	var lf LexiconFile
	if err = yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}
	if len(lf.FakeIndicators) == 0 && len(lf.CredibleIndicators) == 0 {
		return nil, ErrEmptyLexicon
	}

	return NewLexicon(lf.FakeIndicators, lf.CredibleIndicators), nil
}

func newPhraseSet(raw []string) phraseSet {
	seen := make(map[string]bool, len(raw))
	phrases := make([]string, 0, len(raw))
	for _, p := range raw {
		n := lowercase(strings.TrimSpace(p))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		phrases = append(phrases, n)
	}

	set := phraseSet{phrases: phrases}
	if len(phrases) > 0 {
		set.matcher = ahocorasick.NewStringMatcher(phrases)
	}
	return set
}

// match returns the phrases present in normalized, in lexicon order.
func (s phraseSet) match(normalized string) []string {
	if s.matcher == nil || normalized == "" {
		return nil
	}

	hits := s.matcher.MatchThreadSafe([]byte(normalized))
	if len(hits) == 0 {
		return nil
	}

	present := make([]bool, len(s.phrases))
	for _, idx := range hits {
		if idx >= 0 && idx < len(s.phrases) {
			present[idx] = true
		}
	}

	out := make([]string, 0, len(hits))
	for i, ok := range present {
		if ok {
			out = append(out, s.phrases[i])
		}
	}
	return out
}

// Current lets a fixed lexicon act as its own LexiconSource.
func (l *Lexicon) Current() *Lexicon {
	return l
}

// MatchFake returns the fabrication phrases present in normalized text.
func (l *Lexicon) MatchFake(normalized string) []string {
	return l.fake.match(normalized)
}

// MatchCredible returns the credibility phrases present in normalized text.
func (l *Lexicon) MatchCredible(normalized string) []string {
	return l.credible.match(normalized)
}

// Size returns the number of fake and credible phrases.
func (l *Lexicon) Size() (fake, credible int) {
	return len(l.fake.phrases), len(l.credible.phrases)
}
