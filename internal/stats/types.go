// Package stats keeps aggregate analysis counters for the dashboard
// endpoints. No per-analysis history is stored.
package stats

import (
	"context"
	"time"
)

// Counter names one aggregate counter.
type Counter string

// Counters tracked per analysis kind.
const (
	TextTotal          Counter = "text_total"
	TextFake           Counter = "text_fake"
	ImageTotal         Counter = "image_total"
	ImageDeepfake      Counter = "image_deepfake"
	ComprehensiveTotal Counter = "comprehensive_total"
)

// AllCounters lists every counter in report order.
var AllCounters = []Counter{TextTotal, TextFake, ImageTotal, ImageDeepfake, ComprehensiveTotal}

// Counts holds one value per counter.
type Counts struct {
	TextTotal          int64 `json:"text_total"`
	TextFake           int64 `json:"text_fake"`
	ImageTotal         int64 `json:"image_total"`
	ImageDeepfake      int64 `json:"image_deepfake"`
	ComprehensiveTotal int64 `json:"comprehensive_total"`
}

// Snapshot is the all-time view served by the stats endpoints.
type Snapshot struct {
	Counts
	FakeRate     float64   `json:"fake_rate"`
	DeepfakeRate float64   `json:"deepfake_rate"`
	LastAnalysis time.Time `json:"last_analysis"`
}

// DailyCounts is one day of the trends view.
type DailyCounts struct {
	Date string `json:"date"`
	Counts
}

// Recorder defines the statistics operations used by the detector and API.
type Recorder interface {
	// Increment bumps each counter by one in the all-time and today's bucket
	Increment(ctx context.Context, counters ...Counter) error
	// Snapshot returns all-time counts and rates
	Snapshot(ctx context.Context) (*Snapshot, error)
	// Trends returns the last days per-day counts, oldest first
	Trends(ctx context.Context, days int) ([]DailyCounts, error)
}

func (c *Counts) set(counter Counter, v int64) {
	switch counter {
	case TextTotal:
		c.TextTotal = v
	case TextFake:
		c.TextFake = v
	case ImageTotal:
		c.ImageTotal = v
	case ImageDeepfake:
		c.ImageDeepfake = v
	case ComprehensiveTotal:
		c.ComprehensiveTotal = v
	}
}

func newSnapshot(c Counts, last time.Time) *Snapshot {
	s := &Snapshot{Counts: c, LastAnalysis: last}
	if c.TextTotal > 0 {
		s.FakeRate = float64(c.TextFake) / float64(c.TextTotal)
	}
	if c.ImageTotal > 0 {
		s.DeepfakeRate = float64(c.ImageDeepfake) / float64(c.ImageTotal)
	}
	return s
}

// clampDays bounds a trends window to the retained buckets.
func clampDays(days int) int {
	if days <= 0 || days > StatsTTLDays {
		return StatsTTLDays
	}
	return days
}

// trendDays returns the days of the window ending today, oldest first.
func trendDays(now time.Time, days int) []time.Time {
	days = clampDays(days)
	out := make([]time.Time, days)
	today := now.UTC().Truncate(HoursPerDay * time.Hour)
	for i := range days {
		out[i] = today.AddDate(0, 0, i-days+1)
	}
	return out
}
