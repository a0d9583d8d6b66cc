package textanalysis

import (
	"context"
	"math"
	"strings"

	"github.com/jonesrussell/veracity/internal/domain"
)

// SentimentAnalyzer labels the sentiment of normalized text. Score is the
// strength of the label in [0,1].
type SentimentAnalyzer interface {
	Sentiment(ctx context.Context, text string) (label string, score float64, err error)
}

// neutralScore is reported when a configured sentiment model fails.
const neutralScore = 0.5

// polarity weights for the built-in analyzer, in [-1,1]
var polarityWords = map[string]float64{
	"good": 0.7, "great": 0.8, "excellent": 1, "amazing": 0.6, "best": 1,
	"happy": 0.8, "love": 0.5, "wonderful": 1, "positive": 0.2, "success": 0.3,
	"successful": 0.75, "benefit": 0.3, "improve": 0.3, "improved": 0.3, "safe": 0.5,
	"hope": 0.2, "win": 0.8, "glad": 0.5, "nice": 0.6, "fantastic": 0.4,
	"bad": -0.7, "terrible": -1, "awful": -1, "worst": -1, "hate": -0.8,
	"sad": -0.5, "angry": -0.5, "horrible": -1, "negative": -0.3, "fail": -0.5,
	"failure": -0.3, "danger": -0.6, "dangerous": -0.6, "crisis": -0.4, "fear": -0.4,
	"shocking": -1, "scandal": -0.5, "disaster": -0.8, "wrong": -0.5, "lie": -0.5,
	"lies": -0.5, "corrupt": -0.6, "threat": -0.4, "deadly": -0.6, "kill": -0.6,
}

// PolarityAnalyzer is the built-in lexicon sentiment analyzer used when no
// sentiment model is configured. Polarity is the mean weight of the known
// words; the label follows its sign and the score is its magnitude.
type PolarityAnalyzer struct{}

// Sentiment never fails.
func (PolarityAnalyzer) Sentiment(_ context.Context, text string) (string, float64, error) {
	var sum float64
	var n int
	for _, w := range strings.Fields(text) {
		if v, ok := polarityWords[w]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return domain.SentimentNeutral, 0, nil
	}

	polarity := sum / float64(n)
	switch {
	case polarity > 0:
		return domain.SentimentPositive, math.Min(polarity, 1), nil
	case polarity < 0:
		return domain.SentimentNegative, math.Min(-polarity, 1), nil
	default:
		return domain.SentimentNeutral, 0, nil
	}
}
