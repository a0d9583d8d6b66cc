package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/detector"
	"github.com/jonesrussell/veracity/internal/domain"
)

// DetectText handles POST /api/text/detect
func (h *Handler) DetectText(c *gin.Context) {
	var req TextDetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid text detection request", infralogger.Error(err))
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	res, err := h.service.AnalyzeText(c.Request.Context(), *req.Text, req.Language)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}

	id := newAnalysisID()
	h.logger.Info("Text analysed",
		infralogger.String("analysis_id", id),
		infralogger.String("verdict", string(res.Explanation.Verdict)),
		infralogger.Float64("score", res.Score.RawScore),
		infralogger.String("method", res.Score.Method),
	)

	c.JSON(http.StatusOK, newTextResponse(id, res, h.now()))
}

// DetectTextBatch handles POST /api/text/batch-detect
func (h *Handler) DetectTextBatch(c *gin.Context) {
	var req BatchTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid text batch request", infralogger.Error(err))
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	if !h.checkBatchSize(c, len(req.Texts)) {
		return
	}

	start := time.Now()
	items := h.service.AnalyzeTextBatch(c.Request.Context(), req.Texts, req.Language)

	ts := h.now()
	results := make([]BatchItemResponse, len(items))
	for i, item := range items {
		results[i] = BatchItemResponse{Index: item.Index}
		if item.Err != nil {
			results[i].Code, results[i].Error = itemError(item.Err)
			continue
		}
		results[i].Result = newTextResponse(newAnalysisID(), *item.Result, ts)
	}

	summary := detector.Summarize(items)
	c.JSON(http.StatusOK, BatchResponse{
		Results:        results,
		Total:          summary.Total,
		Success:        summary.Success,
		Failed:         summary.Failed,
		ProcessingTime: time.Since(start).Seconds(),
	})
}

// TextStats handles GET /api/text/stats
func (h *Handler) TextStats(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, TextStatsResponse{
		TotalProcessed: snap.TextTotal,
		FakeDetected:   snap.TextFake,
		RealDetected:   snap.TextTotal - snap.TextFake,
		FakeRate:       snap.FakeRate,
		Method:         h.textMethodOrRule(),
		LastAnalysis:   snap.LastAnalysis,
	})
}

// checkBatchSize rejects batches above the configured limit.
func (h *Handler) checkBatchSize(c *gin.Context, n int) bool {
	limit := h.cfg.Service.MaxBatchItems
	if limit > 0 && n > limit {
		respondError(c, http.StatusBadRequest, CodeBatchTooLarge,
			fmt.Sprintf("batch of %d exceeds the limit of %d items", n, limit))
		return false
	}
	return true
}

// textMethodOrRule reports the configured method, rule-based when unset.
func (h *Handler) textMethodOrRule() string {
	if h.textMethod == "" {
		return domain.MethodRule
	}
	return h.textMethod
}
