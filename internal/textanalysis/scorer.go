package textanalysis

import (
	"context"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/domain"
)

// Rule weights.
const (
	fakeIndicatorWeight     = 0.3
	credibleIndicatorWeight = -0.2
	exclamationWeight       = 0.1
	capsWeight              = 0.1

	exclamationLimit = 2
	capsLimit        = 0.3
)

// Scorer scores one extraction. Implementations are chosen once at startup.
type Scorer interface {
	Score(ctx context.Context, x Extraction) domain.ScoreResult
}

// ModelClient predicts a fake probability for normalized text.
type ModelClient interface {
	PredictFake(ctx context.Context, text string) (float64, error)
}

// RuleScorer is the deterministic lexicon and punctuation scorer.
type RuleScorer struct {
	Threshold float64
}

// NewRuleScorer returns a scorer with the given threshold, or
// domain.TextThreshold when threshold is zero.
func NewRuleScorer(threshold float64) RuleScorer {
	if threshold == 0 {
		threshold = domain.TextThreshold
	}
	return RuleScorer{Threshold: threshold}
}

// Score implements Scorer.
func (s RuleScorer) Score(_ context.Context, x Extraction) domain.ScoreResult {
	return s.ScoreFeatures(x.Features)
}

// ScoreFeatures computes
// 0.3*fake - 0.2*credible + 0.1*[excl>2] + 0.1*[caps>0.3], clamped to [0,1].
func (s RuleScorer) ScoreFeatures(f domain.TextFeatures) domain.ScoreResult {
	components := RuleComponents(f)

	var raw float64
	for _, c := range components {
		raw += c.Weight
	}
	return domain.NewScoreResult(raw, s.Threshold, domain.MethodRule, components)
}

// RuleComponents returns the additive terms of the rule score.
func RuleComponents(f domain.TextFeatures) []domain.Feature {
	components := []domain.Feature{
		{Name: "fake_indicators", Weight: fakeIndicatorWeight * float64(f.FakeIndicatorCount)},
		{Name: "credible_indicators", Weight: credibleIndicatorWeight * float64(f.CredibleIndicatorCount)},
		{Name: "exclamation_count", Weight: 0},
		{Name: "caps_ratio", Weight: 0},
	}
	if f.ExclamationCount > exclamationLimit {
		components[2].Weight = exclamationWeight
	}
	if f.CapsRatio > capsLimit {
		components[3].Weight = capsWeight
	}
	return components
}

// ModelBackedScorer replaces the rule score with a model prediction. When
// the model fails for a request, the rule score is returned instead.
type ModelBackedScorer struct {
	model  ModelClient
	rule   RuleScorer
	method string
	logger infralogger.Logger
}

// NewModelBackedScorer wraps model. method is reported in results.
func NewModelBackedScorer(model ModelClient, rule RuleScorer, method string, log infralogger.Logger) *ModelBackedScorer {
	if log == nil {
		log = infralogger.NewNop()
	}
	return &ModelBackedScorer{model: model, rule: rule, method: method, logger: log}
}

// Score implements Scorer.
func (s *ModelBackedScorer) Score(ctx context.Context, x Extraction) domain.ScoreResult {
	ruleResult := s.rule.ScoreFeatures(x.Features)
	if x.Normalized == "" {
		return ruleResult
	}

	p, err := s.model.PredictFake(ctx, x.Normalized)
	if err != nil {
		s.logger.Warn("Text model unavailable, using rule score",
			infralogger.String("method", s.method),
			infralogger.Error(err),
		)
		return ruleResult
	}

	return domain.NewScoreResult(p, s.rule.Threshold, s.method, ruleResult.ContributingFeatures)
}
