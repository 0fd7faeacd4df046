package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	pool, err := dockertest.NewPool("")
	if err != nil || pool.Client.Ping() != nil {
		t.Skip("docker unavailable")
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("localhost:%s", resource.GetPort("6379/tcp"))})
	require.NoError(t, pool.Retry(func() error {
		return rdb.Ping(context.Background()).Err()
	}))
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisStore_WindowAndExpiry(t *testing.T) {
	rdb := startRedis(t)
	store := NewRedisStore(rdb)
	ctx := context.Background()

	count, ttl, err := store.Increment(ctx, "test:k", 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 500*time.Millisecond, ttl)

	count, ttl, err = store.Increment(ctx, "test:k", 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.LessOrEqual(t, ttl, 500*time.Millisecond)

	time.Sleep(700 * time.Millisecond)
	count, _, err = store.Increment(ctx, "test:k", 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
