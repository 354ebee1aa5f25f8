package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketplace-service/internal/entity"
	"marketplace-service/internal/notify"
	"marketplace-service/internal/service"
	"marketplace-service/internal/service/servicetest"
	"marketplace-service/internal/worker"
)

type pushed struct {
	endpoint string
	msg      notify.PushMessage
}

type fakePusher struct {
	mu   sync.Mutex
	sent []pushed
	err  error
}

func (f *fakePusher) Push(_ context.Context, endpoint string, msg notify.PushMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, pushed{endpoint: endpoint, msg: msg})
	return nil
}

func (f *fakePusher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func strPtr(s string) *string { return &s }

func seed(t *testing.T, store *servicetest.Store, endpoint *string) *entity.Notification {
	t.Helper()
	u := store.AddUser(entity.User{Username: "fl", Email: "fl@example.com", IsFreelancer: true, IsActive: true, PushEndpoint: endpoint})
	n := &entity.Notification{UserID: u.ID, Title: "Job Started", Message: "Work began", URL: strPtr("/jobs/1")}
	require.NoError(t, store.Notifications().Create(context.Background(), n))
	return n
}

func TestProcessor_PushesToEndpoint(t *testing.T) {
	store := servicetest.NewStore()
	n := seed(t, store, strPtr("arn:aws:sns:endpoint/1"))
	push := &fakePusher{}

	p := worker.NewProcessor(store.Notifications(), store.Users(), push, zap.NewNop())
	require.NoError(t, p.Process(context.Background(), n.ID.String()))

	require.Len(t, push.sent, 1)
	assert.Equal(t, "arn:aws:sns:endpoint/1", push.sent[0].endpoint)
	assert.Equal(t, notify.PushMessage{Title: "Job Started", Body: "Work began", URL: "/jobs/1"}, push.sent[0].msg)
}

func TestProcessor_SkipsWithoutEndpoint(t *testing.T) {
	store := servicetest.NewStore()
	n := seed(t, store, nil)
	push := &fakePusher{}

	p := worker.NewProcessor(store.Notifications(), store.Users(), push, zap.NewNop())
	require.NoError(t, p.Process(context.Background(), n.ID.String()))
	assert.Zero(t, push.count())
}

func TestProcessor_MissingAndMalformed(t *testing.T) {
	store := servicetest.NewStore()
	p := worker.NewProcessor(store.Notifications(), store.Users(), &fakePusher{}, zap.NewNop())

	assert.NoError(t, p.Process(context.Background(), uuid.NewString()))
	assert.Error(t, p.Process(context.Background(), "not-a-uuid"))
}

func TestProcessor_PushError(t *testing.T) {
	store := servicetest.NewStore()
	n := seed(t, store, strPtr("arn:aws:sns:endpoint/1"))

	p := worker.NewProcessor(store.Notifications(), store.Users(), &fakePusher{err: errors.New("endpoint disabled")}, zap.NewNop())
	err := p.Process(context.Background(), n.ID.String())
	assert.ErrorContains(t, err, "endpoint disabled")
}

func TestPool_DeliversAndAcks(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := servicetest.NewStore()
	queue := service.NewRedisPriorityQueue(rdb, "test")
	notifier := service.NewNotificationService(store.Notifications(), queue, zap.NewNop())
	u := store.AddUser(entity.User{Username: "cl", Email: "cl@example.com", IsClient: true, IsActive: true, PushEndpoint: strPtr("arn:aws:sns:endpoint/2")})

	require.NoError(t, notifier.Notify(context.Background(), u.ID, "Job Posted", "Your job is live", "/jobs/9"))

	push := &fakePusher{}
	pool := worker.NewPool(queue, worker.NewProcessor(store.Notifications(), store.Users(), push, zap.NewNop()), 2, 100*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return push.count() == 1 }, 3*time.Second, 20*time.Millisecond)
	cancel()
	<-stopped

	_, normal, high := service.LanesFor("test")
	for _, key := range []string{high.ProcessingKey, normal.ProcessingKey} {
		n, err := rdb.LLen(context.Background(), key).Result()
		require.NoError(t, err)
		assert.Zero(t, n, key)
	}
}

func TestReap_RequeuesStaleClaims(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	queue := service.NewRedisPriorityQueue(rdb, "test")
	ctx := context.Background()
	require.NoError(t, queue.Enqueue(ctx, "n-1", service.PriorityNormal))
	id, err := queue.ClaimBlocking(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, "n-1", id)

	reapCtx, cancel := context.WithCancel(ctx)
	go worker.Reap(reapCtx, queue, 20*time.Millisecond, 50*time.Millisecond, 10, zap.NewNop())
	defer cancel()

	_, normal, _ := service.LanesFor("test")
	require.Eventually(t, func() bool {
		n, _ := rdb.LLen(ctx, normal.QueueKey).Result()
		return n == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestReap_LeavesFreshClaims(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	queue := service.NewRedisPriorityQueue(rdb, "test")
	ctx := context.Background()
	require.NoError(t, queue.Enqueue(ctx, "n-1", service.PriorityNormal))
	_, err := queue.ClaimBlocking(ctx, time.Second)
	require.NoError(t, err)

	reapCtx, cancel := context.WithCancel(ctx)
	go worker.Reap(reapCtx, queue, 10*time.Millisecond, time.Hour, 10, zap.NewNop())
	time.Sleep(100 * time.Millisecond)
	cancel()

	_, normal, _ := service.LanesFor("test")
	n, err := rdb.LLen(ctx, normal.QueueKey).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = rdb.LLen(ctx, normal.ProcessingKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
