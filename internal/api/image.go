package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/detector"
)

// sniffLen is how many bytes http.DetectContentType considers.
const sniffLen = 512

// DetectImage handles POST /api/image/detect
func (h *Handler) DetectImage(c *gin.Context) {
	analyzeFaces, err := analyzeFacesParam(c.PostForm("analyze_faces"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, errMissingFile.Error())
		return
	}

	data, err := h.readUpload(fh)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}

	res, err := h.service.AnalyzeImage(c.Request.Context(), data, analyzeFaces)
	if err != nil {
		h.logger.Warn("Image analysis failed",
			infralogger.String("filename", fh.Filename),
			infralogger.Error(err),
		)
		h.respondAnalysisError(c, err)
		return
	}

	id := newAnalysisID()
	h.logger.Info("Image analysed",
		infralogger.String("analysis_id", id),
		infralogger.String("filename", fh.Filename),
		infralogger.Int("face_count", res.FaceCount),
		infralogger.Float64("score", res.Score.RawScore),
	)

	c.JSON(http.StatusOK, newImageResponse(id, res, h.now()))
}

// DetectImageBatch handles POST /api/image/batch-detect. Files that fail
// upload checks are tagged like files that fail analysis.
func (h *Handler) DetectImageBatch(c *gin.Context) {
	analyzeFaces, err := analyzeFacesParam(c.PostForm("analyze_faces"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["files[]"]
	}
	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, errMissingFile.Error())
		return
	}
	if !h.checkBatchSize(c, len(files)) {
		return
	}

	start := time.Now()
	results := make([]BatchItemResponse, len(files))
	inputs := make([]detector.ImageInput, 0, len(files))
	positions := make([]int, 0, len(files))

	for i, fh := range files {
		results[i] = BatchItemResponse{Index: i, Name: fh.Filename}
		data, readErr := h.readUpload(fh)
		if readErr != nil {
			results[i].Code, results[i].Error = itemError(readErr)
			continue
		}
		inputs = append(inputs, detector.ImageInput{Name: fh.Filename, Data: data})
		positions = append(positions, i)
	}

	ts := h.now()
	for j, item := range h.service.AnalyzeImageBatch(c.Request.Context(), inputs, analyzeFaces) {
		i := positions[j]
		if item.Err != nil {
			results[i].Code, results[i].Error = itemError(item.Err)
			continue
		}
		results[i].Result = newImageResponse(newAnalysisID(), *item.Result, ts)
	}

	resp := BatchResponse{Results: results, Total: len(results), ProcessingTime: time.Since(start).Seconds()}
	for _, r := range results {
		if r.Error != "" {
			resp.Failed++
		} else {
			resp.Success++
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ImageStats handles GET /api/image/stats
func (h *Handler) ImageStats(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ImageStatsResponse{
		TotalProcessed:    snap.ImageTotal,
		DeepfakeDetected:  snap.ImageDeepfake,
		AuthenticDetected: snap.ImageTotal - snap.ImageDeepfake,
		DeepfakeRate:      snap.DeepfakeRate,
		LastAnalysis:      snap.LastAnalysis,
	})
}

// readUpload reads one uploaded file after checking its size and type.
func (h *Handler) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	limit := h.cfg.Image.MaxUploadBytes
	if limit > 0 && fh.Size > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes", errFileTooLarge, fh.Filename, fh.Size)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if !isImage(fh.Header.Get("Content-Type"), data) {
		return nil, fmt.Errorf("%w: %s", errUnsupportedMedia, fh.Filename)
	}
	return data, nil
}

// isImage accepts a declared image/* type, or sniffs the bytes when the
// client sent a generic type.
func isImage(declared string, data []byte) bool {
	if strings.HasPrefix(declared, "image/") {
		return true
	}
	if declared != "" && declared != "application/octet-stream" {
		return false
	}
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return strings.HasPrefix(http.DetectContentType(head), "image/")
}

// analyzeFacesParam parses the analyze_faces field, true when absent.
func analyzeFacesParam(raw string) (bool, error) {
	if raw == "" {
		return true, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("analyze_faces must be a boolean")
	}
	return v, nil
}
