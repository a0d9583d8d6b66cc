package api

import (
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/veracity/infrastructure/gin"
	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/config"
	"github.com/jonesrussell/veracity/internal/telemetry"
)

// Default timeout values.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// multipartHeadroom covers form fields and part headers on top of file bytes.
const multipartHeadroom = 1 << 20

// NewServer creates a new HTTP server using the infrastructure gin package.
func NewServer(
	handler *Handler,
	cfg *config.Config,
	tp *telemetry.Provider,
	checks map[string]infragin.HealthChecker,
	infraLog infralogger.Logger,
) *infragin.Server {
	readTimeout := cfg.Service.ReadTimeout
	if readTimeout == 0 {
		readTimeout = defaultReadTimeout
	}
	writeTimeout := cfg.Service.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = defaultWriteTimeout
	}

	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(infraLog).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Service.CORSOrigins).
		WithTimeouts(readTimeout, writeTimeout, defaultIdleTimeout).
		WithMaxMultipartMemory(cfg.Image.MaxUploadBytes + multipartHeadroom).
		WithRoutes(func(router *gin.Engine) {
			SetupServiceRoutes(router, handler, cfg, tp)
		})

	for name, check := range checks {
		builder = builder.WithHealthCheck(name, check)
	}

	return builder.Build()
}
