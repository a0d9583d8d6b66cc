// Package api exposes the detector over HTTP.
package api

import (
	"time"

	"github.com/google/uuid"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/config"
	"github.com/jonesrussell/veracity/internal/detector"
	"github.com/jonesrussell/veracity/internal/fetch"
	"github.com/jonesrussell/veracity/internal/stats"
)

// Handler handles HTTP requests for the veracity API.
type Handler struct {
	service    *detector.Service
	stats      stats.Recorder
	fetcher    *fetch.Fetcher
	cfg        *config.Config
	textMethod string
	logger     infralogger.Logger
	now        func() time.Time
}

// NewHandler creates a new API handler. fetcher may be nil, which disables
// URL inputs.
func NewHandler(
	service *detector.Service,
	recorder stats.Recorder,
	fetcher *fetch.Fetcher,
	cfg *config.Config,
	textMethod string,
	logger infralogger.Logger,
) *Handler {
	if logger == nil {
		logger = infralogger.NewNop()
	}
	return &Handler{
		service:    service,
		stats:      recorder,
		fetcher:    fetcher,
		cfg:        cfg,
		textMethod: textMethod,
		logger:     logger,
		now:        time.Now,
	}
}

func newAnalysisID() string {
	return uuid.NewString()
}
