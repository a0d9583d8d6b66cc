package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonesrussell/veracity/internal/cache"
	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/testhelpers"
)

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client, *testhelpers.MockModelClient) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctrl := gomock.NewController(t)
	return mr, client, testhelpers.NewMockModelClient(ctrl)
}

func TestKey(t *testing.T) {
	t.Parallel()

	key := cache.Key("breaking news")
	assert.Len(t, key, len(cache.KeyPrefix)+64)
	assert.Equal(t, key, cache.Key("breaking news"))
	assert.NotEqual(t, key, cache.Key("breaking  news"))
}

func TestPredictFake_ReadThrough(t *testing.T) {
	t.Parallel()

	mr, client, model := setup(t)
	model.EXPECT().PredictFake(gomock.Any(), "some text").Return(0.65, nil).Times(1)

	c := cache.NewScoreCache(client, model, time.Hour, nil, nil)
	ctx := context.Background()

	first, err := c.PredictFake(ctx, "some text")
	require.NoError(t, err)
	second, err := c.PredictFake(ctx, "some text")
	require.NoError(t, err)

	assert.InDelta(t, 0.65, first, 1e-9)
	assert.InDelta(t, 0.65, second, 1e-9)

	stored, err := mr.Get(cache.Key("some text"))
	require.NoError(t, err)
	assert.Equal(t, "0.65", stored)
	assert.Equal(t, time.Hour, mr.TTL(cache.Key("some text")))
}

func TestPredictFake_ModelErrorNotCached(t *testing.T) {
	t.Parallel()

	mr, client, model := setup(t)
	model.EXPECT().PredictFake(gomock.Any(), gomock.Any()).Return(0.0, domain.ErrModelUnavailable)

	c := cache.NewScoreCache(client, model, 0, nil, nil)
	_, err := c.PredictFake(context.Background(), "x")

	require.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.False(t, mr.Exists(cache.Key("x")))
}

func TestPredictFake_RedisDownFallsThrough(t *testing.T) {
	t.Parallel()

	mr, client, model := setup(t)
	mr.Close()
	model.EXPECT().PredictFake(gomock.Any(), "x").Return(0.4, nil)

	c := cache.NewScoreCache(client, model, 0, nil, nil)
	got, err := c.PredictFake(context.Background(), "x")

	require.NoError(t, err)
	assert.InDelta(t, 0.4, got, 1e-9)
}

func TestPredictFake_MalformedEntryReplaced(t *testing.T) {
	t.Parallel()

	mr, client, model := setup(t)
	require.NoError(t, mr.Set(cache.Key("x"), "garbage"))
	model.EXPECT().PredictFake(gomock.Any(), "x").Return(0.9, nil)

	c := cache.NewScoreCache(client, model, 0, nil, nil)
	got, err := c.PredictFake(context.Background(), "x")

	require.NoError(t, err)
	assert.InDelta(t, 0.9, got, 1e-9)
	stored, _ := mr.Get(cache.Key("x"))
	assert.Equal(t, "0.9", stored)
}
