package service_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/service"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestQueue_ClaimRespectsPriority(t *testing.T) {
	mr, rdb := newRedis(t)
	q := service.NewRedisPriorityQueue(rdb, "n")
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "low-1", service.PriorityLow))
	require.NoError(t, q.Enqueue(ctx, "high-1", service.PriorityHigh))
	require.NoError(t, q.Enqueue(ctx, "normal-1", service.PriorityNormal))

	var got []string
	for i := 0; i < 3; i++ {
		id, err := q.ClaimBlocking(ctx, 500*time.Millisecond)
		require.NoError(t, err)
		got = append(got, id)
	}
	assert.Equal(t, []string{"high-1", "normal-1", "low-1"}, got)

	procHigh, _ := mr.List("n:processing:high")
	assert.Equal(t, []string{"high-1"}, procHigh)
}

func TestQueue_AckRemovesFromProcessing(t *testing.T) {
	mr, rdb := newRedis(t)
	q := service.NewRedisPriorityQueue(rdb, "n")
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "a", service.PriorityNormal))
	id, err := q.ClaimBlocking(ctx, 500*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, q.Ack(ctx, id))

	assert.False(t, mr.Exists("n:processing:normal"))
	assert.Equal(t, "", mr.HGet("n:processing:map", "a"))
}

func TestQueue_RequeueStale(t *testing.T) {
	mr, rdb := newRedis(t)
	q := service.NewRedisPriorityQueue(rdb, "n")
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "x", service.PriorityHigh))
	_, err := q.ClaimBlocking(ctx, 500*time.Millisecond)
	require.NoError(t, err)

	// claimed ten minutes ago
	old := time.Now().Add(-10 * time.Minute).UnixMilli()
	mr.HSet("n:processing:claimed_at", "x", strconv.FormatInt(old, 10))

	moved, err := q.RequeueStale(ctx, time.Minute, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	queued, _ := mr.List("n:queue:high")
	assert.Equal(t, []string{"x"}, queued)
	assert.False(t, mr.Exists("n:processing:high"))
	assert.Equal(t, "", mr.HGet("n:processing:map", "x"))
	assert.Equal(t, "", mr.HGet("n:processing:claimed_at", "x"))
}

func TestQueue_RequeueStaleKeepsFreshClaims(t *testing.T) {
	mr, rdb := newRedis(t)
	q := service.NewRedisPriorityQueue(rdb, "n")
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "x", service.PriorityNormal))
	id, err := q.ClaimBlocking(ctx, 500*time.Millisecond)
	require.NoError(t, err)

	moved, err := q.RequeueStale(ctx, time.Minute, 10)
	require.NoError(t, err)
	assert.Zero(t, moved)

	assert.False(t, mr.Exists("n:queue:normal"))
	proc, _ := mr.List("n:processing:normal")
	assert.Equal(t, []string{"x"}, proc)

	// the holder still acks it and nothing is left to deliver twice
	require.NoError(t, q.Ack(ctx, id))
	assert.False(t, mr.Exists("n:queue:normal"))
	assert.False(t, mr.Exists("n:processing:normal"))
}

func TestQueue_RequeueStaleStampsUnknownClaims(t *testing.T) {
	mr, rdb := newRedis(t)
	q := service.NewRedisPriorityQueue(rdb, "n")
	ctx := context.Background()

	// popped by a claimer that died before recording the claim
	require.NoError(t, rdb.LPush(ctx, "n:processing:low", "orphan").Err())

	moved, err := q.RequeueStale(ctx, time.Minute, 10)
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.NotEmpty(t, mr.HGet("n:processing:claimed_at", "orphan"))

	moved, err = q.RequeueStale(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)
	queued, _ := mr.List("n:queue:low")
	assert.Equal(t, []string{"orphan"}, queued)
}

func TestQueue_ShortTimeoutStillReachesLowerLanes(t *testing.T) {
	_, rdb := newRedis(t)
	q := service.NewRedisPriorityQueue(rdb, "n")
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "n-1", service.PriorityNormal))
	require.NoError(t, q.Enqueue(ctx, "l-1", service.PriorityLow))

	id, err := q.ClaimBlocking(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "n-1", id)

	id, err = q.ClaimBlocking(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "l-1", id)
}

func TestQueue_ClaimTimesOutEmpty(t *testing.T) {
	_, rdb := newRedis(t)
	q := service.NewRedisPriorityQueue(rdb, "n")

	_, err := q.ClaimBlocking(context.Background(), 200*time.Millisecond)
	assert.ErrorIs(t, err, redis.Nil)
}
