package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
)

// Tracker implements Recorder using Redis
type Tracker struct {
	client redis.UniversalClient
	keys   *RedisKeys
	logger infralogger.Logger
	now    func() time.Time
}

// NewTracker creates a new Redis statistics tracker
func NewTracker(client redis.UniversalClient, log infralogger.Logger) *Tracker {
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Tracker{
		client: client,
		keys:   NewRedisKeys(KeyPrefixStats),
		logger: log,
		now:    time.Now,
	}
}

// Increment bumps counters in one pipeline
func (t *Tracker) Increment(ctx context.Context, counters ...Counter) error {
	if len(counters) == 0 {
		return nil
	}

	now := t.now()
	ttl := StatsTTLDays * HoursPerDay * time.Hour

	// Use pipeline for atomic operation with TTL
	pipe := t.client.Pipeline()
	for _, c := range counters {
		daily := t.keys.Daily(c, now)
		pipe.Incr(ctx, t.keys.Total(c))
		pipe.Incr(ctx, daily)
		pipe.Expire(ctx, daily, ttl)
	}
	pipe.Set(ctx, KeyLastAnalysis, now.UTC().Format(time.RFC3339), 0)

	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("Failed to increment stats counters",
			infralogger.Int("counters", len(counters)),
			infralogger.Error(err),
		)
		return fmt.Errorf("increment stats counters: %w", err)
	}

	return nil
}

// Snapshot returns all-time counts using one pipelined read
func (t *Tracker) Snapshot(ctx context.Context) (*Snapshot, error) {
	pipe := t.client.Pipeline()

	cmds := make(map[Counter]*redis.StringCmd, len(AllCounters))
	for _, c := range AllCounters {
		cmds[c] = pipe.Get(ctx, t.keys.Total(c))
	}
	lastCmd := pipe.Get(ctx, KeyLastAnalysis)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("execute pipeline: %w", err)
	}

	var counts Counts
	for c, cmd := range cmds {
		// Missing keys count as zero
		if v, err := cmd.Int64(); err == nil {
			counts.set(c, v)
		}
	}

	var last time.Time
	if raw, err := lastCmd.Result(); err == nil && raw != "" {
		if parsed, parseErr := time.Parse(time.RFC3339, raw); parseErr == nil {
			last = parsed
		}
	}

	return newSnapshot(counts, last), nil
}

// Trends returns per-day counts for the last days, oldest first
func (t *Tracker) Trends(ctx context.Context, days int) ([]DailyCounts, error) {
	window := trendDays(t.now(), days)

	pipe := t.client.Pipeline()
	cmds := make([]map[Counter]*redis.StringCmd, len(window))
	for i, day := range window {
		cmds[i] = make(map[Counter]*redis.StringCmd, len(AllCounters))
		for _, c := range AllCounters {
			cmds[i][c] = pipe.Get(ctx, t.keys.Daily(c, day))
		}
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("execute pipeline: %w", err)
	}

	out := make([]DailyCounts, len(window))
	for i, day := range window {
		out[i].Date = day.Format(dayLayout)
		for c, cmd := range cmds[i] {
			if v, err := cmd.Int64(); err == nil {
				out[i].set(c, v)
			}
		}
	}

	return out, nil
}
