// Package bootstrap wires configuration into a ready detector service.
// Optional models are checked once here; the choice is fixed for the life of
// the process.
package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	infraerrors "github.com/jonesrussell/veracity/infrastructure/errors"
	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/infrastructure/profiling"
	infraredis "github.com/jonesrussell/veracity/infrastructure/redis"
	"github.com/jonesrussell/veracity/internal/config"
	"github.com/jonesrussell/veracity/internal/detector"
	"github.com/jonesrussell/veracity/internal/fetch"
	"github.com/jonesrussell/veracity/internal/mltransport"
	"github.com/jonesrussell/veracity/internal/stats"
	"github.com/jonesrussell/veracity/internal/telemetry"
	"github.com/jonesrussell/veracity/internal/textanalysis"
)

// startupCheckTimeout bounds each optional-model health check.
const startupCheckTimeout = 5 * time.Second

// Components holds everything the HTTP server and CLI need.
type Components struct {
	Config     *config.Config
	Logger     infralogger.Logger
	Telemetry  *telemetry.Provider
	Service    *detector.Service
	Fetcher    *fetch.Fetcher
	Stats      stats.Recorder
	TextMethod string
	Checks     HealthChecks

	redis    *redis.Client
	watcher  *textanalysis.LexiconWatcher
	profiler *profiling.Profiler
	cancel   context.CancelFunc
}

// NewComponents builds the service graph. Only configuration errors that
// leave no sensible fallback are returned; unreachable optional
// dependencies are logged and replaced by their built-in alternatives.
func NewComponents(cfg *config.Config, logger infralogger.Logger) (*Components, error) {
	bgCtx, cancel := context.WithCancel(context.Background())
	comps := &Components{
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry.NewProvider(),
		cancel:    cancel,
	}

	comps.redis = setupRedis(cfg, logger)
	comps.Stats = setupStats(comps.redis, logger)
	transport := mltransport.New(cfg.ML.Transport())

	text, err := setupText(bgCtx, cfg, transport, comps.redis, comps.Telemetry, logger)
	if err != nil {
		comps.Close()
		return nil, infraerrors.WrapWithContext(err, "setup text analysis")
	}
	comps.watcher = text.watcher
	comps.TextMethod = text.method

	images := setupImage(cfg, transport, comps.Telemetry, logger)

	comps.Service = detector.NewService(text.extractor, text.scorer, images,
		detector.WithStats(comps.Stats),
		detector.WithTelemetry(comps.Telemetry),
		detector.WithLogger(logger),
	)
	comps.Fetcher = fetch.New(cfg.Fetch, logger)
	comps.Checks = newHealthChecks(cfg, comps.redis, transport)
	comps.profiler = startProfiler(cfg, logger)

	logger.Info("Veracity components initialized",
		infralogger.String("text_method", text.method),
		infralogger.Bool("redis", comps.redis != nil),
		infralogger.Bool("fetch_enabled", cfg.Fetch.Enabled),
	)
	return comps, nil
}

// Close stops background work and releases connections.
func (c *Components) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	var errs []error
	if c.watcher != nil {
		errs = append(errs, c.watcher.Close())
	}
	if c.profiler != nil {
		errs = append(errs, c.profiler.Stop())
	}
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if err := errors.Join(errs...); err != nil {
		c.Logger.Warn("Error during shutdown", infralogger.Error(err))
	}
}

func setupRedis(cfg *config.Config, logger infralogger.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	client, err := infraredis.NewClient(cfg.Redis.Connection())
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory statistics and no score cache",
			infralogger.String("address", cfg.Redis.Address),
			infralogger.Error(err),
		)
		return nil
	}
	return client
}

func setupStats(client *redis.Client, logger infralogger.Logger) stats.Recorder {
	if client == nil {
		return stats.NewMemoryRecorder()
	}
	return stats.NewTracker(client, logger)
}

func startProfiler(cfg *config.Config, logger infralogger.Logger) *profiling.Profiler {
	profiler, err := profiling.StartPyroscope(cfg.Service.Name, cfg.Service.Version, cfg.Profiling)
	if err != nil {
		logger.Warn("Continuous profiling disabled", infralogger.Error(err))
		return nil
	}
	if profiler != nil {
		logger.Info("Continuous profiling started")
	}
	return profiler
}
