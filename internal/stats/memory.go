package stats

import (
	"context"
	"sync"
	"time"
)

// MemoryRecorder implements Recorder in process memory. It is used when no
// Redis is configured; counts reset on restart.
type MemoryRecorder struct {
	mu     sync.Mutex
	totals Counts
	daily  map[string]*Counts
	last   time.Time
	now    func() time.Time
}

// NewMemoryRecorder creates an empty in-memory recorder
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{daily: make(map[string]*Counts), now: time.Now}
}

// Increment implements Recorder.
func (m *MemoryRecorder) Increment(_ context.Context, counters ...Counter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	day := now.Format(dayLayout)
	bucket, ok := m.daily[day]
	if !ok {
		bucket = &Counts{}
		m.daily[day] = bucket
		m.expire(now)
	}

	for _, c := range counters {
		m.totals.set(c, m.totals.get(c)+1)
		bucket.set(c, bucket.get(c)+1)
	}
	if len(counters) > 0 {
		m.last = now
	}
	return nil
}

// expire drops buckets older than the retention window. Caller holds mu.
func (m *MemoryRecorder) expire(now time.Time) {
	cutoff := now.AddDate(0, 0, -StatsTTLDays).Format(dayLayout)
	for day := range m.daily {
		if day <= cutoff {
			delete(m.daily, day)
		}
	}
}

// Snapshot implements Recorder.
func (m *MemoryRecorder) Snapshot(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newSnapshot(m.totals, m.last), nil
}

// Trends implements Recorder.
func (m *MemoryRecorder) Trends(_ context.Context, days int) ([]DailyCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	window := trendDays(m.now(), days)
	out := make([]DailyCounts, len(window))
	for i, day := range window {
		out[i].Date = day.Format(dayLayout)
		if bucket, ok := m.daily[out[i].Date]; ok {
			out[i].Counts = *bucket
		}
	}
	return out, nil
}

func (c *Counts) get(counter Counter) int64 {
	switch counter {
	case TextTotal:
		return c.TextTotal
	case TextFake:
		return c.TextFake
	case ImageTotal:
		return c.ImageTotal
	case ImageDeepfake:
		return c.ImageDeepfake
	case ComprehensiveTotal:
		return c.ComprehensiveTotal
	default:
		return 0
	}
}
