package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/fetch"
	"github.com/jonesrussell/veracity/internal/fusion"
	"github.com/jonesrussell/veracity/internal/textanalysis"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidLanguage  = "INVALID_LANGUAGE"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeBatchTooLarge    = "BATCH_TOO_LARGE"
	CodeDecodeError      = "DECODE_ERROR"
	CodeNoModality       = "NO_MODALITY"
	CodeFetchDisabled    = "FETCH_DISABLED"
	CodeInvalidURL       = "INVALID_URL"
	CodeFetchFailed      = "FETCH_FAILED"
	CodeNoContent        = "NO_CONTENT"
	CodeStatsUnavailable = "STATS_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

var (
	errUnsupportedMedia = errors.New("file must be an image")
	errFileTooLarge     = errors.New("file exceeds the upload limit")
	errMissingFile      = errors.New("no file uploaded")
	errInvalidBase64    = errors.New("image_base64 is not valid base64")
)

// respondError writes the standard error body.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

// classifyError maps an analysis error to a status and code. Unknown errors
// become a generic 500 so internals never leak.
func classifyError(err error) (status int, code, message string) {
	var decodeErr *domain.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity, CodeDecodeError, decodeErr.Error()
	case errors.Is(err, textanalysis.ErrInvalidLanguage):
		return http.StatusBadRequest, CodeInvalidLanguage, err.Error()
	case errors.Is(err, fusion.ErrNoModality):
		return http.StatusBadRequest, CodeNoModality, "provide text, an image or an article URL"
	case errors.Is(err, errUnsupportedMedia):
		return http.StatusBadRequest, CodeUnsupportedMedia, err.Error()
	case errors.Is(err, errFileTooLarge), errors.Is(err, fetch.ErrTooLarge):
		return http.StatusBadRequest, CodeFileTooLarge, err.Error()
	case errors.Is(err, errMissingFile), errors.Is(err, errInvalidBase64):
		return http.StatusBadRequest, CodeInvalidRequest, err.Error()
	case errors.Is(err, fetch.ErrDisabled):
		return http.StatusBadRequest, CodeFetchDisabled, err.Error()
	case errors.Is(err, fetch.ErrInvalidURL):
		return http.StatusBadRequest, CodeInvalidURL, err.Error()
	case errors.Is(err, fetch.ErrNoContent):
		return http.StatusUnprocessableEntity, CodeNoContent, err.Error()
	case errors.Is(err, errFetch):
		return http.StatusUnprocessableEntity, CodeFetchFailed, err.Error()
	default:
		return http.StatusInternalServerError, CodeInternal, "internal error"
	}
}

func (h *Handler) respondAnalysisError(c *gin.Context, err error) {
	status, code, message := classifyError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Analysis failed",
			infralogger.String("path", c.FullPath()),
			infralogger.Error(err),
		)
	}
	respondError(c, status, code, message)
}

// itemError renders an error for a batch item.
func itemError(err error) (code, message string) {
	_, code, message = classifyError(err)
	return code, message
}
