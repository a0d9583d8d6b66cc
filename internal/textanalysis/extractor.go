package textanalysis

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/domain"
)

// Extraction is the result of one extraction: the normalized text, its
// features and the lexicon phrases that matched.
type Extraction struct {
	Normalized      string
	Features        domain.TextFeatures
	FakeMatches     []string
	CredibleMatches []string
}

// Extractor turns raw text into TextFeatures. It is safe for concurrent use.
type Extractor struct {
	lexicon   LexiconSource
	sentiment SentimentAnalyzer
	languages *LanguageDetector
	logger    infralogger.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithSentiment replaces the built-in polarity analyzer.
func WithSentiment(a SentimentAnalyzer) ExtractorOption {
	return func(e *Extractor) { e.sentiment = a }
}

// WithLanguageDetector enables language detection.
func WithLanguageDetector(d *LanguageDetector) ExtractorOption {
	return func(e *Extractor) { e.languages = d }
}

// WithExtractorLogger sets the logger used for fallback diagnostics.
func WithExtractorLogger(log infralogger.Logger) ExtractorOption {
	return func(e *Extractor) { e.logger = log }
}

// NewExtractor creates an extractor reading phrases from lexicon.
func NewExtractor(lexicon LexiconSource, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		lexicon:   lexicon,
		sentiment: PolarityAnalyzer{},
		logger:    infralogger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract computes the features of text without modifying it. Length,
// word and indicator features are measured on the normalized text.
// Exclamation marks and capitals are measured on the raw text, since
// normalization removes both. Empty input yields zero features.
func (e *Extractor) Extract(ctx context.Context, text string) Extraction {
	normalized, err := Normalize(text)
	if errors.Is(err, domain.ErrEmptyInput) {
		return Extraction{Features: domain.TextFeatures{SentimentLabel: domain.SentimentNeutral}}
	}

	lex := e.lexicon.Current()
	fake := lex.MatchFake(normalized)
	credible := lex.MatchCredible(normalized)

	words := strings.Fields(normalized)
	var letters int
	for _, w := range words {
		letters += utf8.RuneCountInString(w)
	}

	f := domain.TextFeatures{
		Length:                 utf8.RuneCountInString(normalized),
		WordCount:              len(words),
		FakeIndicatorCount:     len(fake),
		CredibleIndicatorCount: len(credible),
		// Read from raw text: normalized text has no '!' and no capitals,
		// which would pin both rule terms at zero.
		ExclamationCount:       strings.Count(text, "!"),
		CapsRatio:              capsRatio(text),
	}
	if len(words) > 0 {
		f.AvgWordLength = float64(letters) / float64(len(words))
	}

	f.SentimentLabel, f.SentimentScore = e.sentimentOf(ctx, normalized)

	if e.languages != nil {
		f.Language = e.languages.Detect(text)
	}

	return Extraction{
		Normalized:      normalized,
		Features:        f,
		FakeMatches:     fake,
		CredibleMatches: credible,
	}
}

func (e *Extractor) sentimentOf(ctx context.Context, normalized string) (string, float64) {
	label, score, err := e.sentiment.Sentiment(ctx, normalized)
	if err != nil {
		e.logger.Debug("Sentiment model failed, using neutral sentiment", infralogger.Error(err))
		return domain.SentimentNeutral, neutralScore
	}
	return label, domain.Clamp01(score)
}

func capsRatio(text string) float64 {
	var total, upper int
	for _, r := range text {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(upper) / float64(total)
}
