// Package detector orchestrates feature extraction, scoring, explanation
// and fusion for text and image inputs.
package detector

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/explain"
	"github.com/jonesrussell/veracity/internal/fusion"
	"github.com/jonesrussell/veracity/internal/imageanalysis"
	"github.com/jonesrussell/veracity/internal/stats"
	"github.com/jonesrussell/veracity/internal/telemetry"
	"github.com/jonesrussell/veracity/internal/textanalysis"
)

// Service runs analyses. Strategies are fixed at construction and shared
// read-only, so a Service is safe for concurrent use.
type Service struct {
	extractor *textanalysis.Extractor
	scorer    textanalysis.Scorer
	images    *imageanalysis.Analyzer
	stats     stats.Recorder
	telemetry *telemetry.Provider
	logger    infralogger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithStats records aggregate counters for every analysis.
func WithStats(r stats.Recorder) Option {
	return func(s *Service) { s.stats = r }
}

// WithTelemetry records metrics and spans.
func WithTelemetry(tp *telemetry.Provider) Option {
	return func(s *Service) { s.telemetry = tp }
}

// WithLogger sets the service logger.
func WithLogger(log infralogger.Logger) Option {
	return func(s *Service) { s.logger = log }
}

// NewService creates a Service from its strategies.
func NewService(
	extractor *textanalysis.Extractor,
	scorer textanalysis.Scorer,
	images *imageanalysis.Analyzer,
	opts ...Option,
) *Service {
	s := &Service{
		extractor: extractor,
		scorer:    scorer,
		images:    images,
		logger:    infralogger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeText scores and explains one text. lang is a BCP 47 tag; empty
// means English. Empty text is not an error: it scores 0.0.
func (s *Service) AnalyzeText(ctx context.Context, text, lang string) (domain.TextResult, error) {
	start := time.Now()

	ctx, span := s.telemetry.StartSpan(ctx, "detector.analyze_text",
		attribute.Int("text.length", len(text)),
	)
	defer span.End()

	requested, err := textanalysis.ParseLanguage(lang)
	if err != nil {
		s.telemetry.RecordFailure(ctx, domain.KindText, "INVALID_LANGUAGE")
		return domain.TextResult{}, err
	}

	x := s.extractor.Extract(ctx, text)
	s.telemetry.RecordLexiconMatch(time.Since(start))
	if x.Features.Language == "" {
		x.Features.Language = requested
	}

	score := s.scorer.Score(ctx, x)
	if _, modelBacked := s.scorer.(*textanalysis.ModelBackedScorer); modelBacked &&
		score.Method == domain.MethodRule && x.Normalized != "" {
		s.telemetry.RecordModelFallback(domain.KindText)
	}

	result := domain.TextResult{
		Score:       score,
		Features:    x.Features,
		Explanation: explain.Text(x.Features, score),
		Duration:    time.Since(start),
	}

	s.record(ctx, domain.KindText, result.Explanation.Verdict, score, result.Duration,
		stats.TextTotal, positive(score, stats.TextFake))

	span.SetAttributes(
		attribute.Float64("score.raw", score.RawScore),
		attribute.String("score.method", score.Method),
	)
	s.logger.Debug("Text analysed",
		infralogger.Float64("score", score.RawScore),
		infralogger.String("method", score.Method),
		infralogger.Int("fake_indicators", x.Features.FakeIndicatorCount),
		infralogger.Duration("duration", result.Duration),
	)

	return result, nil
}

// AnalyzeImage scores and explains one image. Malformed bytes return a
// *domain.DecodeError.
func (s *Service) AnalyzeImage(ctx context.Context, data []byte, analyzeFaces bool) (domain.ImageResult, error) {
	start := time.Now()

	ctx, span := s.telemetry.StartSpan(ctx, "detector.analyze_image",
		attribute.Int("image.bytes", len(data)),
		attribute.Bool("image.analyze_faces", analyzeFaces),
	)
	defer span.End()

	result, err := s.images.Analyze(ctx, data, analyzeFaces)
	if err != nil {
		s.telemetry.RecordFailure(ctx, domain.KindImage, "DECODE_ERROR")
		span.RecordError(err)
		return domain.ImageResult{}, err
	}

	result.Explanation = explain.Image(result)
	result.Duration = time.Since(start)

	s.telemetry.RecordFaces(result.FaceCount)
	s.record(ctx, domain.KindImage, result.Explanation.Verdict, result.Score, result.Duration,
		stats.ImageTotal, positive(result.Score, stats.ImageDeepfake))

	span.SetAttributes(
		attribute.Float64("score.raw", result.Score.RawScore),
		attribute.Int("image.faces", result.FaceCount),
	)
	s.logger.Debug("Image analysed",
		infralogger.Float64("score", result.Score.RawScore),
		infralogger.Int("face_count", result.FaceCount),
		infralogger.Duration("duration", result.Duration),
	)

	return result, nil
}

// ComprehensiveInput is the input of one comprehensive analysis. Text is
// absent when blank; Image is absent when nil.
type ComprehensiveInput struct {
	Text         string
	Language     string
	Image        []byte
	AnalyzeFaces bool
}

// ComprehensiveOutcome carries the fused result and the per-modality
// results it was built from.
type ComprehensiveOutcome struct {
	Result   domain.ComprehensiveResult
	Text     *domain.TextResult
	Image    *domain.ImageResult
	Duration time.Duration
}

// Comprehensive analyses whichever modalities are present and fuses them.
// With neither present it returns fusion.ErrNoModality.
func (s *Service) Comprehensive(ctx context.Context, in ComprehensiveInput) (ComprehensiveOutcome, error) {
	start := time.Now()

	ctx, span := s.telemetry.StartSpan(ctx, "detector.comprehensive")
	defer span.End()

	var out ComprehensiveOutcome

	if strings.TrimSpace(in.Text) != "" {
		text, err := s.AnalyzeText(ctx, in.Text, in.Language)
		if err != nil {
			return ComprehensiveOutcome{}, err
		}
		out.Text = &text
	}

	if in.Image != nil {
		img, err := s.AnalyzeImage(ctx, in.Image, in.AnalyzeFaces)
		if err != nil {
			return ComprehensiveOutcome{}, err
		}
		out.Image = &img
	}

	fused, err := fusion.Fuse(out.Text, out.Image)
	if err != nil {
		s.telemetry.RecordFailure(ctx, domain.KindComprehensive, "NO_MODALITY")
		return ComprehensiveOutcome{}, err
	}

	out.Result = fused
	out.Duration = time.Since(start)

	verdict := domain.VerdictReal
	if fused.OverallScore > domain.TextThreshold {
		verdict = domain.VerdictFake
	}
	s.telemetry.RecordAnalysis(ctx, domain.KindComprehensive, string(verdict), fused.OverallScore, out.Duration)
	s.increment(ctx, stats.ComprehensiveTotal)

	return out, nil
}

func (s *Service) record(
	ctx context.Context,
	kind string,
	verdict domain.Verdict,
	score domain.ScoreResult,
	duration time.Duration,
	counters ...stats.Counter,
) {
	s.telemetry.RecordAnalysis(ctx, kind, string(verdict), score.RawScore, duration)
	s.increment(ctx, counters...)
}

func (s *Service) increment(ctx context.Context, counters ...stats.Counter) {
	if s.stats == nil {
		return
	}
	filtered := counters[:0:0]
	for _, c := range counters {
		if c != "" {
			filtered = append(filtered, c)
		}
	}
	if err := s.stats.Increment(ctx, filtered...); err != nil {
		s.logger.Warn("Failed to record stats", infralogger.Error(err))
	}
}

// positive returns c when score is positive, otherwise "".
func positive(score domain.ScoreResult, c stats.Counter) stats.Counter {
	if score.IsPositive {
		return c
	}
	return ""
}
