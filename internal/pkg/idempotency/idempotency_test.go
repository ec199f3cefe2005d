package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestTracker_Run(t *testing.T) {
	client := newRedis(t)
	tr := New(client, "test:")
	ctx := context.Background()

	calls := 0
	fn := func(context.Context) error {
		calls++
		return nil
	}

	require.NoError(t, tr.Run(ctx, "k1", fn))
	assert.ErrorIs(t, tr.Run(ctx, "k1", fn), ErrCompleted)
	assert.Equal(t, 1, calls)

	ttl, err := client.TTL(ctx, "test:k1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestTracker_RunFailureReleases(t *testing.T) {
	client := newRedis(t)
	tr := New(client, "")
	ctx := context.Background()
	errSend := errors.New("send failed")

	err := tr.Run(ctx, "k2", func(context.Context) error { return errSend })
	assert.ErrorIs(t, err, errSend)

	n, err := client.Exists(ctx, "idempotency:k2").Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, tr.Run(ctx, "k2", func(context.Context) error { return nil }))
}

func TestTracker_InProgress(t *testing.T) {
	client := newRedis(t)
	tr := New(client, "")
	ctx := context.Background()

	state, err := tr.Acquire(ctx, "k3", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	err = tr.Run(ctx, "k3", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrInProgress)

	require.NoError(t, client.Set(ctx, "idempotency:k4", "garbage", time.Minute).Err())
	_, err = tr.Acquire(ctx, "k4", time.Minute)
	assert.ErrorIs(t, err, ErrInvalidState)
}
