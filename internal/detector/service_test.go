package detector_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonesrussell/veracity/internal/detector"
	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/explain"
	"github.com/jonesrussell/veracity/internal/fusion"
	"github.com/jonesrussell/veracity/internal/imageanalysis"
	"github.com/jonesrussell/veracity/internal/stats"
	"github.com/jonesrussell/veracity/internal/telemetry"
	"github.com/jonesrussell/veracity/internal/testhelpers"
	"github.com/jonesrussell/veracity/internal/textanalysis"
)

const (
	fakeText = "SHOCKING hoax: this fake conspiracy is trending!!!"
	realText = "The university published a peer-reviewed study."
)

func newService(t *testing.T, opts ...detector.Option) (*detector.Service, *stats.MemoryRecorder) {
	t.Helper()

	rec := stats.NewMemoryRecorder()
	opts = append([]detector.Option{detector.WithStats(rec), detector.WithTelemetry(telemetry.NewProvider())}, opts...)
	svc := detector.NewService(
		textanalysis.NewExtractor(textanalysis.DefaultLexicon()),
		textanalysis.NewRuleScorer(0),
		imageanalysis.NewAnalyzer(nil, nil, imageanalysis.Options{}, nil),
		opts...,
	)
	return svc, rec
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAnalyzeText(t *testing.T) {
	t.Parallel()

	svc, rec := newService(t)
	ctx := context.Background()

	fake, err := svc.AnalyzeText(ctx, fakeText, "")
	require.NoError(t, err)
	assert.True(t, fake.Score.IsPositive)
	assert.Equal(t, domain.VerdictFake, fake.Explanation.Verdict)
	assert.Equal(t, "en", fake.Features.Language)
	assert.Equal(t, domain.MethodRule, fake.Score.Method)
	assert.Contains(t, fake.Explanation.KeyFactors, explain.FactorSuspiciousLanguage)

	authentic, err := svc.AnalyzeText(ctx, realText, "fr-CA")
	require.NoError(t, err)
	assert.False(t, authentic.Score.IsPositive)
	assert.Equal(t, domain.VerdictReal, authentic.Explanation.Verdict)
	assert.Equal(t, "fr", authentic.Features.Language)

	snap, err := rec.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.TextTotal)
	assert.Equal(t, int64(1), snap.TextFake)
}

func TestAnalyzeText_Empty(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	result, err := svc.AnalyzeText(context.Background(), "", "")

	require.NoError(t, err)
	assert.InDelta(t, 0.0, result.Score.RawScore, 1e-9)
	assert.Equal(t, 0, result.Features.WordCount)
	assert.Equal(t, domain.VerdictReal, result.Explanation.Verdict)
}

func TestAnalyzeText_InvalidLanguage(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.AnalyzeText(context.Background(), realText, "not a tag!")
	require.ErrorIs(t, err, textanalysis.ErrInvalidLanguage)
}

func TestAnalyzeText_ModelFallback(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	model := testhelpers.NewMockModelClient(ctrl)
	model.EXPECT().PredictFake(gomock.Any(), gomock.Any()).Return(0.0, domain.ErrModelUnavailable)

	svc := detector.NewService(
		textanalysis.NewExtractor(textanalysis.DefaultLexicon()),
		textanalysis.NewModelBackedScorer(model, textanalysis.NewRuleScorer(0), domain.MethodSidecar, nil),
		imageanalysis.NewAnalyzer(nil, nil, imageanalysis.Options{}, nil),
	)

	result, err := svc.AnalyzeText(context.Background(), fakeText, "en")
	require.NoError(t, err)
	assert.Equal(t, domain.MethodRule, result.Score.Method)
	assert.True(t, result.Score.IsPositive)
}

func TestAnalyzeImage(t *testing.T) {
	t.Parallel()

	svc, rec := newService(t)
	result, err := svc.AnalyzeImage(context.Background(), pngBytes(t, 48, 32), true)

	require.NoError(t, err)
	assert.False(t, result.FaceDetected)
	assert.Equal(t, 0, result.FaceCount)
	assert.InDelta(t, 0.0, result.Score.RawScore, 1e-9)
	assert.Equal(t, domain.VerdictReal, result.Explanation.Verdict)
	assert.Equal(t, []string{explain.FactorNoFaces}, result.Explanation.KeyFactors)
	assert.Equal(t, 48, result.Features.Width)

	snap, err := rec.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.ImageTotal)
	assert.Equal(t, int64(0), snap.ImageDeepfake)
}

func TestAnalyzeImage_Malformed(t *testing.T) {
	t.Parallel()

	svc, rec := newService(t)
	for _, data := range [][]byte{nil, []byte("definitely not an image")} {
		_, err := svc.AnalyzeImage(context.Background(), data, true)

		var decodeErr *domain.DecodeError
		require.ErrorAs(t, err, &decodeErr)
	}

	snap, err := rec.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.ImageTotal)
}

func TestAnalyzeImageBatch_PartialFailure(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	inputs := []detector.ImageInput{
		{Name: "a.png", Data: pngBytes(t, 16, 16)},
		{Name: "b.png", Data: pngBytes(t, 24, 16)},
		{Name: "broken.png", Data: []byte{0x89, 'P', 'N', 'G', 0, 1, 2}},
		{Name: "c.png", Data: pngBytes(t, 16, 24)},
	}

	items := svc.AnalyzeImageBatch(context.Background(), inputs, true)

	require.Len(t, items, 4)
	for i, item := range items {
		assert.Equal(t, i, item.Index)
		assert.Equal(t, inputs[i].Name, item.Name)
	}
	var decodeErr *domain.DecodeError
	require.ErrorAs(t, items[2].Err, &decodeErr)
	assert.Nil(t, items[2].Result)
	for _, i := range []int{0, 1, 3} {
		assert.NoError(t, items[i].Err)
		assert.NotNil(t, items[i].Result)
	}
	assert.Equal(t, detector.BatchSummary{Total: 4, Success: 3, Failed: 1}, detector.Summarize(items))
}

func TestAnalyzeImageBatch_OversizedHeaderIsItemError(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	inputs := []detector.ImageInput{
		{Name: "a.png", Data: pngBytes(t, 16, 16)},
		{Name: "bomb.png", Data: testhelpers.PNGClaiming(60000, 60000)},
		{Name: "c.png", Data: pngBytes(t, 16, 24)},
	}

	items := svc.AnalyzeImageBatch(context.Background(), inputs, true)

	require.Len(t, items, 3)
	var decodeErr *domain.DecodeError
	require.ErrorAs(t, items[1].Err, &decodeErr)
	assert.ErrorIs(t, items[1].Err, imageanalysis.ErrTooManyPixels)
	assert.NoError(t, items[0].Err)
	assert.NoError(t, items[2].Err)
	assert.Equal(t, detector.BatchSummary{Total: 3, Success: 2, Failed: 1}, detector.Summarize(items))
}

func TestAnalyzeTextBatch(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	items := svc.AnalyzeTextBatch(context.Background(), []string{fakeText, "", realText}, "en")

	require.Len(t, items, 3)
	assert.True(t, items[0].Result.Score.IsPositive)
	assert.InDelta(t, 0.0, items[1].Result.Score.RawScore, 1e-9)
	assert.False(t, items[2].Result.Score.IsPositive)
	assert.Equal(t, detector.BatchSummary{Total: 3, Success: 3}, detector.Summarize(items))
}

func TestAnalyzeTextBatch_Cancelled(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := svc.AnalyzeTextBatch(ctx, []string{fakeText, realText}, "")
	for _, item := range items {
		assert.True(t, errors.Is(item.Err, context.Canceled))
	}
}

func TestComprehensive(t *testing.T) {
	t.Parallel()

	svc, rec := newService(t)
	ctx := context.Background()

	out, err := svc.Comprehensive(ctx, detector.ComprehensiveInput{
		Text:         fakeText,
		Image:        pngBytes(t, 32, 32),
		AnalyzeFaces: true,
	})
	require.NoError(t, err)

	// text 1.0 and image 0.0
	assert.InDelta(t, 0.6, out.Result.OverallScore, 1e-9)
	assert.Equal(t, explain.InsightTextOnly, out.Result.CrossModalInsight)
	require.NotNil(t, out.Text)
	require.NotNil(t, out.Image)
	require.NotNil(t, out.Result.TextExplanation)
	require.NotNil(t, out.Result.ImageExplanation)

	snap, err := rec.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.ComprehensiveTotal)
}

func TestComprehensive_SingleAndNone(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	out, err := svc.Comprehensive(ctx, detector.ComprehensiveInput{Text: realText})
	require.NoError(t, err)
	assert.Nil(t, out.Image)
	assert.Empty(t, out.Result.CrossModalInsight)

	_, err = svc.Comprehensive(ctx, detector.ComprehensiveInput{Text: "   "})
	require.ErrorIs(t, err, fusion.ErrNoModality)

	_, err = svc.Comprehensive(ctx, detector.ComprehensiveInput{Text: realText, Image: []byte("junk")})
	var decodeErr *domain.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}
