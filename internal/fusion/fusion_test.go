package fusion_test

import (
	"testing"

	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/explain"
	"github.com/jonesrussell/veracity/internal/fusion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textResult(score float64) *domain.TextResult {
	return &domain.TextResult{
		Score:       domain.NewScoreResult(score, domain.TextThreshold, domain.MethodRule, nil),
		Explanation: domain.Explanation{Type: domain.KindText},
	}
}

func imageResult(score float64) *domain.ImageResult {
	return &domain.ImageResult{
		Score:       domain.NewScoreResult(score, domain.ImageThreshold, domain.MethodRule, nil),
		Explanation: domain.Explanation{Type: domain.KindImage},
	}
}

func TestFuse_BothModalities(t *testing.T) {
	t.Parallel()

	got, err := fusion.Fuse(textResult(0.8), imageResult(0.2))
	require.NoError(t, err)

	assert.InDelta(t, 0.56, got.OverallScore, 1e-9)
	assert.Equal(t, explain.InsightTextOnly, got.CrossModalInsight)
	assert.Equal(t, "Some suspicious elements detected", got.Recommendations[0])
	require.NotNil(t, got.TextExplanation)
	require.NotNil(t, got.ImageExplanation)
}

func TestFuse_SingleModality(t *testing.T) {
	t.Parallel()

	got, err := fusion.Fuse(textResult(0.9), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, got.OverallScore, 1e-9)
	assert.Empty(t, got.CrossModalInsight)
	assert.Nil(t, got.ImageExplanation)
	assert.Equal(t, "High likelihood of fake content detected", got.Recommendations[0])

	got, err = fusion.Fuse(nil, imageResult(0.2))
	require.NoError(t, err)
	assert.InDelta(t, 0.2, got.OverallScore, 1e-9)
	assert.Equal(t, "Content appears to be authentic", got.Recommendations[0])
}

func TestFuse_NoModality(t *testing.T) {
	t.Parallel()

	_, err := fusion.Fuse(nil, nil)
	assert.ErrorIs(t, err, fusion.ErrNoModality)
}

func TestFuse_Insights(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text, image float64
		want        string
	}{
		{text: 0.9, image: 0.7, want: explain.InsightBothManipulated},
		{text: 0.9, image: 0.2, want: explain.InsightTextOnly},
		{text: 0.1, image: 0.7, want: explain.InsightImageOnly},
		{text: 0.1, image: 0.2, want: explain.InsightBothAuthentic},
	}

	for _, tt := range tests {
		got, err := fusion.Fuse(textResult(tt.text), imageResult(tt.image))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.CrossModalInsight)
	}
}
