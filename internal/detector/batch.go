package detector

import (
	"context"
	"time"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/domain"
)

// BatchItem is the outcome of one batch element. Exactly one of Result and
// Err is set.
type BatchItem[T any] struct {
	Index  int
	Name   string
	Result *T
	Err    error
}

// BatchSummary counts the outcomes of a batch.
type BatchSummary struct {
	Total   int
	Success int
	Failed  int
}

// ImageInput is one named image of a batch.
type ImageInput struct {
	Name string
	Data []byte
}

// Summarize counts successes and failures.
func Summarize[T any](items []BatchItem[T]) BatchSummary {
	s := BatchSummary{Total: len(items)}
	for _, item := range items {
		if item.Err != nil {
			s.Failed++
		} else {
			s.Success++
		}
	}
	return s
}

// AnalyzeTextBatch analyses texts one after another. A failing item is
// tagged with its error and the batch continues.
func (s *Service) AnalyzeTextBatch(ctx context.Context, texts []string, lang string) []BatchItem[domain.TextResult] {
	s.telemetry.RecordBatchSize(domain.KindText, len(texts))
	start := time.Now()

	items := make([]BatchItem[domain.TextResult], len(texts))
	for i, text := range texts {
		items[i].Index = i
		if err := ctx.Err(); err != nil {
			items[i].Err = err
			continue
		}

		result, err := s.AnalyzeText(ctx, text, lang)
		if err != nil {
			s.logger.Warn("Batch text item failed", infralogger.Int("index", i), infralogger.Error(err))
			items[i].Err = err
			continue
		}
		items[i].Result = &result
	}

	s.logBatch(domain.KindText, Summarize(items), time.Since(start))
	return items
}

// AnalyzeImageBatch analyses images one after another. A malformed image
// is tagged with its decode error and the batch continues.
func (s *Service) AnalyzeImageBatch(ctx context.Context, images []ImageInput, analyzeFaces bool) []BatchItem[domain.ImageResult] {
	s.telemetry.RecordBatchSize(domain.KindImage, len(images))
	start := time.Now()

	items := make([]BatchItem[domain.ImageResult], len(images))
	for i, img := range images {
		items[i].Index = i
		items[i].Name = img.Name
		if err := ctx.Err(); err != nil {
			items[i].Err = err
			continue
		}

		result, err := s.AnalyzeImage(ctx, img.Data, analyzeFaces)
		if err != nil {
			s.logger.Warn("Batch image item failed",
				infralogger.Int("index", i),
				infralogger.String("name", img.Name),
				infralogger.Error(err),
			)
			items[i].Err = err
			continue
		}
		items[i].Result = &result
	}

	s.logBatch(domain.KindImage, Summarize(items), time.Since(start))
	return items
}

func (s *Service) logBatch(kind string, summary BatchSummary, duration time.Duration) {
	s.logger.Info("Batch analysis complete",
		infralogger.String("kind", kind),
		infralogger.Int("total", summary.Total),
		infralogger.Int("success", summary.Success),
		infralogger.Int("failed", summary.Failed),
		infralogger.Duration("duration", duration),
	)
}
