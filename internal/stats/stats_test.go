//nolint:testpackage // Tests pin the clock through unexported fields
package stats

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func newRedisTracker(t *testing.T) (*Tracker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tracker := NewTracker(client, nil)
	tracker.now = func() time.Time { return fixedNow }
	return tracker, mr
}

func newMemory() *MemoryRecorder {
	m := NewMemoryRecorder()
	m.now = func() time.Time { return fixedNow }
	return m
}

func TestRecorders(t *testing.T) {
	t.Parallel()

	tracker, _ := newRedisTracker(t)
	recorders := map[string]Recorder{
		"redis":  tracker,
		"memory": newMemory(),
	}

	for name, rec := range recorders {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, rec.Increment(ctx, TextTotal, TextFake))
			require.NoError(t, rec.Increment(ctx, TextTotal))
			require.NoError(t, rec.Increment(ctx, ImageTotal))
			require.NoError(t, rec.Increment(ctx, ComprehensiveTotal))

			snap, err := rec.Snapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), snap.TextTotal)
			assert.Equal(t, int64(1), snap.TextFake)
			assert.Equal(t, int64(1), snap.ImageTotal)
			assert.Equal(t, int64(0), snap.ImageDeepfake)
			assert.Equal(t, int64(1), snap.ComprehensiveTotal)
			assert.InDelta(t, 0.5, snap.FakeRate, 1e-9)
			assert.InDelta(t, 0.0, snap.DeepfakeRate, 1e-9)
			assert.True(t, snap.LastAnalysis.Equal(fixedNow))

			trends, err := rec.Trends(ctx, 7)
			require.NoError(t, err)
			require.Len(t, trends, 7)
			assert.Equal(t, "2026-03-08", trends[0].Date)
			assert.Equal(t, "2026-03-14", trends[6].Date)
			assert.Equal(t, int64(2), trends[6].TextTotal)
			assert.Equal(t, int64(0), trends[0].TextTotal)
		})
	}
}

func TestTracker_DailyKeysExpire(t *testing.T) {
	t.Parallel()

	tracker, mr := newRedisTracker(t)
	require.NoError(t, tracker.Increment(context.Background(), ImageDeepfake))

	daily := tracker.keys.Daily(ImageDeepfake, fixedNow)
	assert.Equal(t, "veracity:stats:daily:2026-03-14:image_deepfake", daily)
	assert.Equal(t, StatsTTLDays*HoursPerDay*time.Hour, mr.TTL(daily))
	assert.Equal(t, time.Duration(0), mr.TTL(tracker.keys.Total(ImageDeepfake)))
}

func TestTracker_EmptySnapshot(t *testing.T) {
	t.Parallel()

	tracker, _ := newRedisTracker(t)
	snap, err := tracker.Snapshot(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Counts{}, snap.Counts)
	assert.True(t, snap.LastAnalysis.IsZero())
}

func TestTracker_RedisDown(t *testing.T) {
	t.Parallel()

	tracker, mr := newRedisTracker(t)
	mr.Close()

	require.Error(t, tracker.Increment(context.Background(), TextTotal))
}

func TestTrends_WindowClamped(t *testing.T) {
	t.Parallel()

	trends, err := newMemory().Trends(context.Background(), 365)
	require.NoError(t, err)
	assert.Len(t, trends, StatsTTLDays)

	trends, err = newMemory().Trends(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, trends, StatsTTLDays)
}

func TestMemoryRecorder_DropsOldBuckets(t *testing.T) {
	t.Parallel()

	m := newMemory()
	ctx := context.Background()
	require.NoError(t, m.Increment(ctx, TextTotal))

	m.now = func() time.Time { return fixedNow.AddDate(0, 0, StatsTTLDays+1) }
	require.NoError(t, m.Increment(ctx, TextTotal))

	assert.Len(t, m.daily, 1)
	snap, err := m.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.TextTotal)
}
