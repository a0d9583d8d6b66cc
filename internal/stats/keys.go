package stats

import (
	"fmt"
	"time"
)

const (
	// KeyPrefixStats is the prefix for all statistics keys
	KeyPrefixStats = "veracity:stats"
	// KeyPrefixTotal is the segment for all-time counters
	KeyPrefixTotal = "total"
	// KeyPrefixDaily is the segment for per-day counters
	KeyPrefixDaily = "daily"
	// KeyLastAnalysis holds the time of the most recent analysis
	KeyLastAnalysis = "veracity:stats:last_analysis"
	// StatsTTLDays is the TTL in days for per-day counters
	StatsTTLDays = 30
	// HoursPerDay converts StatsTTLDays to a duration
	HoursPerDay = 24
	// dayLayout formats per-day bucket dates
	dayLayout = "2006-01-02"
)

// RedisKeys builds Redis keys consistently
type RedisKeys struct {
	prefix string
}

// NewRedisKeys creates a new RedisKeys instance
func NewRedisKeys(prefix string) *RedisKeys {
	return &RedisKeys{prefix: prefix}
}

// Total returns the all-time key for a counter
func (k *RedisKeys) Total(c Counter) string {
	return fmt.Sprintf("%s:%s:%s", k.prefix, KeyPrefixTotal, c)
}

// Daily returns the per-day key for a counter
func (k *RedisKeys) Daily(c Counter, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", k.prefix, KeyPrefixDaily, day.UTC().Format(dayLayout), c)
}
