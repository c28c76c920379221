package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-goals/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
	"github.com/comitanigiacomo/kanso-goals/internal/core/recurrence"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	rdb, err := cache.NewRedisClient(context.Background(), cache.Options{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", "secret_redis_pass_local"),
		DB:       2,
	})
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	return rdb
}

func TestCachedGoalRepository_Integration(t *testing.T) {
	rdb := setupTestRedis(t)
	ctx := context.Background()

	next := NewInMemoryGoalRepository()
	repo := NewCachedGoalRepository(next, rdb)

	g, err := domain.NewGoal("user-1", "Meditate", "", recurrence.Daily)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, g))

	t.Run("Miss populates the cache", func(t *testing.T) {
		list, err := repo.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, list, 1)

		ttl, err := rdb.TTL(ctx, "goals:user-1").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("Hit keeps frequency and anchor", func(t *testing.T) {
		list, err := repo.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, recurrence.Daily, list[0].Frequency)
		assert.True(t, list[0].CreatedAt.Equal(g.CreatedAt))
	})

	t.Run("Writes invalidate", func(t *testing.T) {
		g.Title = "Meditate 20 minutes"
		require.NoError(t, repo.Update(ctx, g))

		exists, err := rdb.Exists(ctx, "goals:user-1").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(0), exists)

		list, err := repo.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Meditate 20 minutes", list[0].Title)

		require.NoError(t, repo.Delete(ctx, g.ID))
		list, err = repo.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Corrupted entry falls back", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, "goals:user-2", "{not json", time.Minute).Err())

		list, err := repo.ListByUserID(ctx, "user-2")
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestCachedGoalRepository_RedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	ctx := context.Background()
	repo := NewCachedGoalRepository(NewInMemoryGoalRepository(), rdb)

	g, err := domain.NewGoal("user-1", "Stretch", "", recurrence.Weekly)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, g))

	list, err := repo.ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
