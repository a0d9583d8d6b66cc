package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/detector"
	"github.com/jonesrussell/veracity/internal/fetch"
	"github.com/jonesrussell/veracity/internal/stats"
)

const defaultTrendDays = 7

var errFetch = errors.New("fetch failed")

// Comprehensive handles POST /api/analysis/comprehensive. It accepts JSON
// or a multipart form with an optional "file" part.
func (h *Handler) Comprehensive(c *gin.Context) {
	var req ComprehensiveRequest
	var upload []byte

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
			return
		}
		if fh, err := c.FormFile("file"); err == nil {
			data, readErr := h.readUpload(fh)
			if readErr != nil {
				h.respondAnalysisError(c, readErr)
				return
			}
			upload = data
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid comprehensive analysis request", infralogger.Error(err))
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	in, source, err := h.resolveInputs(ctx, req, upload)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}

	out, err := h.service.Comprehensive(ctx, in)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}

	id := newAnalysisID()
	ts := h.now()
	resp := ComprehensiveResponse{
		AnalysisID:        id,
		OverallScore:      out.Result.OverallScore,
		CrossModalInsight: out.Result.CrossModalInsight,
		Recommendations:   out.Result.Recommendations,
		Source:            source,
		ProcessingTime:    out.Duration.Seconds(),
		Timestamp:         ts,
	}
	if out.Text != nil {
		resp.TextAnalysis = newTextResponse(id, *out.Text, ts)
	}
	if out.Image != nil {
		resp.ImageAnalysis = newImageResponse(id, *out.Image, ts)
	}

	h.logger.Info("Comprehensive analysis complete",
		infralogger.String("analysis_id", id),
		infralogger.Float64("overall_score", resp.OverallScore),
		infralogger.Bool("has_text", out.Text != nil),
		infralogger.Bool("has_image", out.Image != nil),
	)
	c.JSON(http.StatusOK, resp)
}

// resolveInputs turns a request into detector input, fetching URLs and
// decoding base64 as needed. An uploaded file wins over image_base64,
// which wins over image_url, which wins over the article's og:image.
func (h *Handler) resolveInputs(
	ctx context.Context,
	req ComprehensiveRequest,
	upload []byte,
) (detector.ComprehensiveInput, *SourceInfo, error) {
	in := detector.ComprehensiveInput{
		Text:         req.Text,
		Language:     req.Language,
		Image:        upload,
		AnalyzeFaces: req.AnalyzeFaces == nil || *req.AnalyzeFaces,
	}

	var source *SourceInfo
	if strings.TrimSpace(in.Text) == "" && req.ArticleURL != "" {
		article, err := h.fetchArticle(ctx, req.ArticleURL)
		if err != nil {
			return in, nil, err
		}
		in.Text = article.Text
		source = &SourceInfo{URL: article.URL, Title: article.Title, ImageURL: article.ImageURL}
	}

	switch {
	case in.Image != nil:
	case req.ImageBase64 != "":
		data, err := h.decodeBase64Image(req.ImageBase64)
		if err != nil {
			return in, nil, err
		}
		in.Image = data
	case req.ImageURL != "":
		data, err := h.fetchImage(ctx, req.ImageURL)
		if err != nil {
			return in, nil, err
		}
		in.Image = data
	case source != nil && source.ImageURL != "":
		data, err := h.fetchImage(ctx, source.ImageURL)
		if err != nil {
			h.logger.Warn("Skipping article image",
				infralogger.String("image_url", source.ImageURL),
				infralogger.Error(err),
			)
			break
		}
		in.Image = data
	}

	return in, source, nil
}

func (h *Handler) fetchArticle(ctx context.Context, rawURL string) (*fetch.Article, error) {
	if h.fetcher == nil {
		return nil, fetch.ErrDisabled
	}
	article, err := h.fetcher.FetchArticle(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFetch, err)
	}
	return article, nil
}

func (h *Handler) fetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	if h.fetcher == nil {
		return nil, fetch.ErrDisabled
	}
	data, err := h.fetcher.FetchImage(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFetch, err)
	}
	return data, nil
}

// decodeBase64Image accepts plain base64 or a data URL.
func (h *Handler) decodeBase64Image(raw string) ([]byte, error) {
	if i := strings.Index(raw, ";base64,"); strings.HasPrefix(raw, "data:") && i >= 0 {
		raw = raw[i+len(";base64,"):]
	}
	raw = strings.TrimSpace(raw)

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(raw)
	}
	if err != nil {
		return nil, errInvalidBase64
	}

	if limit := h.cfg.Image.MaxUploadBytes; limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: decoded image is %d bytes", errFileTooLarge, len(data))
	}
	return data, nil
}

// Dashboard handles GET /api/analysis/dashboard. Comprehensive requests
// also count towards the text and image totals of the modalities they
// carried.
func (h *Handler) Dashboard(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{
		TotalAnalyses:         snap.TextTotal + snap.ImageTotal,
		TextAnalyses:          snap.TextTotal,
		ImageAnalyses:         snap.ImageTotal,
		ComprehensiveAnalyses: snap.ComprehensiveTotal,
		FakeDetected:          snap.TextFake,
		DeepfakeDetected:      snap.ImageDeepfake,
		FakeRate:              snap.FakeRate,
		DeepfakeRate:          snap.DeepfakeRate,
		TextMethod:            h.textMethodOrRule(),
		LastAnalysis:          snap.LastAnalysis,
	})
}

// Trends handles GET /api/analysis/trends?days=N
func (h *Handler) Trends(c *gin.Context) {
	days := defaultTrendDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, CodeInvalidRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	var daily []stats.DailyCounts
	if h.stats != nil {
		var err error
		daily, err = h.stats.Trends(c.Request.Context(), days)
		if err != nil {
			h.logger.Error("Failed to read trends", infralogger.Error(err))
			respondError(c, http.StatusServiceUnavailable, CodeStatsUnavailable, "statistics unavailable")
			return
		}
	}

	resp := TrendsResponse{
		Days:        len(daily),
		DailyStats:  make([]TrendPoint, 0, len(daily)),
		WeeklyStats: weekly(daily),
	}
	for _, d := range daily {
		p := TrendPoint{Date: d.Date}
		p.add(d.Counts)
		resp.DailyStats = append(resp.DailyStats, p)
	}
	c.JSON(http.StatusOK, resp)
}

func (p *TrendPoint) add(c stats.Counts) {
	p.Total += c.TextTotal + c.ImageTotal
	p.Fake += c.TextFake
	p.Deepfake += c.ImageDeepfake
	p.Comprehensive += c.ComprehensiveTotal
}

// weekly folds daily buckets into ISO weeks, keeping their order.
func weekly(daily []stats.DailyCounts) []TrendPoint {
	out := make([]TrendPoint, 0)
	index := make(map[string]int)
	for _, d := range daily {
		day, err := time.Parse(time.DateOnly, d.Date)
		if err != nil {
			continue
		}
		year, week := day.ISOWeek()
		key := fmt.Sprintf("%d-W%02d", year, week)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, TrendPoint{Week: key})
		}
		out[i].add(d.Counts)
	}
	return out
}

// snapshot reads all-time counts, writing a 503 on failure.
func (h *Handler) snapshot(c *gin.Context) (*stats.Snapshot, bool) {
	if h.stats == nil {
		return &stats.Snapshot{}, true
	}
	snap, err := h.stats.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to read statistics", infralogger.Error(err))
		respondError(c, http.StatusServiceUnavailable, CodeStatsUnavailable, "statistics unavailable")
		return nil, false
	}
	return snap, true
}
