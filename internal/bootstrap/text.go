package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/cache"
	"github.com/jonesrussell/veracity/internal/config"
	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/llmclient"
	"github.com/jonesrussell/veracity/internal/mlclient"
	"github.com/jonesrussell/veracity/internal/mltransport"
	"github.com/jonesrussell/veracity/internal/telemetry"
	"github.com/jonesrussell/veracity/internal/textanalysis"
)

type textComponents struct {
	extractor *textanalysis.Extractor
	scorer    textanalysis.Scorer
	method    string
	watcher   *textanalysis.LexiconWatcher
}

func setupText(
	ctx context.Context,
	cfg *config.Config,
	transport *mltransport.Transport,
	redisClient *redis.Client,
	tp *telemetry.Provider,
	logger infralogger.Logger,
) (textComponents, error) {
	lexicon, watcher, err := loadLexicon(ctx, cfg.Text, logger)
	if err != nil {
		return textComponents{}, err
	}

	opts := []textanalysis.ExtractorOption{textanalysis.WithExtractorLogger(logger)}
	if cfg.Text.SentimentURL != "" {
		opts = append(opts, textanalysis.WithSentiment(mlclient.NewClient(cfg.Text.SentimentURL, transport, tp)))
		logger.Info("Sentiment model configured", infralogger.String("url", cfg.Text.SentimentURL))
	}
	if cfg.Text.DetectLanguage {
		opts = append(opts, textanalysis.WithLanguageDetector(textanalysis.NewLanguageDetector()))
	}

	model, method := selectTextModel(ctx, cfg, transport, tp, logger)
	rule := textanalysis.NewRuleScorer(cfg.Text.Threshold)

	var scorer textanalysis.Scorer = rule
	if model != nil {
		if redisClient != nil {
			model = cache.NewScoreCache(redisClient, model, cfg.Redis.CacheTTL, logger, tp)
		}
		scorer = textanalysis.NewModelBackedScorer(model, rule, method, logger)
	}

	return textComponents{
		extractor: textanalysis.NewExtractor(lexicon, opts...),
		scorer:    scorer,
		method:    method,
		watcher:   watcher,
	}, nil
}

// loadLexicon returns the compiled-in lexicon, a fixed one loaded from
// file, or a watcher that reloads the file on change.
func loadLexicon(
	ctx context.Context,
	cfg config.TextConfig,
	logger infralogger.Logger,
) (textanalysis.LexiconSource, *textanalysis.LexiconWatcher, error) {
	if cfg.LexiconFile == "" {
		return textanalysis.DefaultLexicon(), nil, nil
	}

	if cfg.WatchLexicon {
		watcher, err := textanalysis.NewLexiconWatcher(cfg.LexiconFile, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("watch lexicon: %w", err)
		}
		go watcher.Run(ctx)
		logLexicon(logger, cfg.LexiconFile, watcher.Current(), true)
		return watcher, watcher, nil
	}

	lexicon, err := textanalysis.LoadLexiconFile(cfg.LexiconFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load lexicon: %w", err)
	}
	logLexicon(logger, cfg.LexiconFile, lexicon, false)
	return lexicon, nil, nil
}

func logLexicon(logger infralogger.Logger, path string, lexicon *textanalysis.Lexicon, watching bool) {
	fake, credible := lexicon.Size()
	logger.Info("Lexicon loaded",
		infralogger.String("path", path),
		infralogger.Int("fake_indicators", fake),
		infralogger.Int("credible_indicators", credible),
		infralogger.Bool("watching", watching),
	)
}

// selectTextModel checks the configured text model once. A nil client
// means the rule scorer runs alone.
func selectTextModel(
	ctx context.Context,
	cfg *config.Config,
	transport *mltransport.Transport,
	tp *telemetry.Provider,
	logger infralogger.Logger,
) (textanalysis.ModelClient, string) {
	checkCtx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	defer cancel()

	switch cfg.Text.Model {
	case config.ModelSidecar:
		client := mlclient.NewClient(cfg.Text.SidecarURL, transport, tp)
		version, err := client.Health(checkCtx)
		if err != nil {
			logger.Warn("Text model sidecar unavailable, using rule-based scoring",
				infralogger.String("url", cfg.Text.SidecarURL),
				infralogger.Error(err),
			)
			return nil, domain.MethodRule
		}
		logger.Info("Text model sidecar ready",
			infralogger.String("url", cfg.Text.SidecarURL),
			infralogger.String("model_version", version),
		)
		return client, domain.MethodSidecar

	case config.ModelAnthropic:
		client, err := llmclient.New(cfg.Text.Anthropic, tp)
		if err == nil {
			err = client.Ping(checkCtx)
		}
		if err != nil {
			logger.Warn("Anthropic text model unavailable, using rule-based scoring", infralogger.Error(err))
			return nil, domain.MethodRule
		}
		logger.Info("Anthropic text model ready")
		return client, domain.MethodLLM

	default:
		return nil, domain.MethodRule
	}
}
