package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/service"
	"marketplace-service/internal/service/servicetest"
)

func TestNotify_StoresRowAndQueuesID(t *testing.T) {
	_, rdb := newRedis(t)
	st := servicetest.NewStore()
	q := service.NewRedisPriorityQueue(rdb, "test")
	svc := service.NewNotificationService(st.Notifications(), q, zap.NewNop())
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, svc.Notify(ctx, user, "Job Posted", "Your job was posted.", "/client/jobs/1"))

	list, err := svc.ListUnread(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Job Posted", list[0].Title)
	require.NotNil(t, list[0].URL)

	id, err := q.ClaimBlocking(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, list[0].ID.String(), id)
}

func TestNotify_MarkRead(t *testing.T) {
	_, rdb := newRedis(t)
	st := servicetest.NewStore()
	svc := service.NewNotificationService(st.Notifications(), service.NewRedisPriorityQueue(rdb, "test"), zap.NewNop())
	ctx := context.Background()
	user, stranger := uuid.New(), uuid.New()

	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, svc.Notify(ctx, user, title, title, ""))
	}
	list, err := svc.ListUnread(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Title)

	err = svc.MarkRead(ctx, stranger, list[0].ID)
	requireKind(t, err, apperr.KindNotFound)

	require.NoError(t, svc.MarkRead(ctx, user, list[0].ID))

	_, err = svc.MarkManyRead(ctx, user, nil)
	requireKind(t, err, apperr.KindValidation)

	n, err := svc.MarkManyRead(ctx, user, []uuid.UUID{list[1].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err = svc.ListUnread(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, list)
}
