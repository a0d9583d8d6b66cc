package domain_test

import (
	"errors"
	"io"
	"testing"

	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScoreResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		raw            float64
		threshold      float64
		wantScore      float64
		wantPositive   bool
		wantConfidence float64
	}{
		{name: "zero", raw: 0, threshold: 0.5, wantScore: 0, wantPositive: false, wantConfidence: 1},
		{name: "at threshold is negative", raw: 0.5, threshold: 0.5, wantScore: 0.5, wantPositive: false, wantConfidence: 0.5},
		{name: "above threshold", raw: 0.8, threshold: 0.5, wantScore: 0.8, wantPositive: true, wantConfidence: 0.8},
		{name: "clamped high", raw: 1.9, threshold: 0.5, wantScore: 1, wantPositive: true, wantConfidence: 1},
		{name: "clamped low", raw: -0.4, threshold: 0.5, wantScore: 0, wantPositive: false, wantConfidence: 1},
		{name: "image threshold", raw: 0.7, threshold: 0.6, wantScore: 0.7, wantPositive: true, wantConfidence: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.NewScoreResult(tt.raw, tt.threshold, domain.MethodRule, nil)

			assert.InDelta(t, tt.wantScore, got.RawScore, 1e-9)
			assert.Equal(t, tt.wantPositive, got.IsPositive)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
			assert.NotNil(t, got.ContributingFeatures)
		})
	}
}

func TestAverageArtifacts(t *testing.T) {
	t.Parallel()

	_, ok := domain.AverageArtifacts(nil)
	assert.False(t, ok)

	avg, ok := domain.AverageArtifacts([]domain.FaceArtifact{
		{EdgeDensity: 0.1, HueVariance: 100, SymmetryScore: 0.9},
		{EdgeDensity: 0.3, HueVariance: 300, SymmetryScore: 0.7},
	})
	require.True(t, ok)
	assert.InDelta(t, 0.2, avg.EdgeDensity, 1e-9)
	assert.InDelta(t, 200, avg.HueVariance, 1e-9)
	assert.InDelta(t, 0.8, avg.SymmetryScore, 1e-9)
}

func TestDecodeError(t *testing.T) {
	t.Parallel()

	err := error(&domain.DecodeError{Err: io.ErrUnexpectedEOF})

	var decodeErr *domain.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.False(t, errors.Is(err, domain.ErrModelUnavailable))
	assert.Contains(t, err.Error(), "decode image")
}
