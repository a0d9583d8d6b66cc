// Package cache memoizes text model scores in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/telemetry"
	"github.com/jonesrussell/veracity/internal/textanalysis"
)

// KeyPrefix namespaces cached text scores.
const KeyPrefix = "veracity:text:"

// DefaultTTL applies when NewScoreCache is given a zero ttl.
const DefaultTTL = 24 * time.Hour

// ScoreCache is a read-through cache in front of a ModelClient. Redis
// failures never fail a prediction; the wrapped model is called directly.
type ScoreCache struct {
	client    redis.UniversalClient
	next      textanalysis.ModelClient
	ttl       time.Duration
	logger    infralogger.Logger
	telemetry *telemetry.Provider
}

// NewScoreCache wraps next. tp may be nil.
func NewScoreCache(client redis.UniversalClient, next textanalysis.ModelClient, ttl time.Duration, log infralogger.Logger, tp *telemetry.Provider) *ScoreCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = infralogger.NewNop()
	}
	return &ScoreCache{client: client, next: next, ttl: ttl, logger: log, telemetry: tp}
}

// Key returns the cache key for normalized text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

// PredictFake implements textanalysis.ModelClient.
func (c *ScoreCache) PredictFake(ctx context.Context, text string) (float64, error) {
	key := Key(text)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if p, parseErr := strconv.ParseFloat(cached, 64); parseErr == nil {
			c.telemetry.RecordCache("hit")
			return p, nil
		}
		c.logger.Warn("Discarding malformed cached score", infralogger.String("redis_key", key))
	case errors.Is(err, redis.Nil):
		c.telemetry.RecordCache("miss")
	default:
		c.telemetry.RecordCache("error")
		c.logger.Warn("Score cache read failed, calling model directly",
			infralogger.String("redis_key", key),
			infralogger.Error(err),
		)
	}

	p, err := c.next.PredictFake(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("cached model: %w", err)
	}

	value := strconv.FormatFloat(p, 'f', -1, 64)
	if setErr := c.client.Set(ctx, key, value, c.ttl).Err(); setErr != nil {
		c.logger.Warn("Score cache write failed",
			infralogger.String("redis_key", key),
			infralogger.Error(setErr),
		)
	}

	return p, nil
}
