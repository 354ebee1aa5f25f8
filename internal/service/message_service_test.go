package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/service"
)

func TestMessages_UnreadAndThreadMarksRead(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, text := range []string{"hello", "are you there?"} {
		_, err := e.messages.Send(ctx, e.client, service.SendMessageRequest{ReceiverID: e.freelancer.ID, Text: text})
		require.NoError(t, err)
	}
	_, err := e.messages.Send(ctx, e.freelancer, service.SendMessageRequest{ReceiverID: e.client.ID, Text: "yes"})
	require.NoError(t, err)

	n, err := e.messages.UnreadCount(ctx, e.freelancer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	convs, err := e.messages.Conversations(ctx, e.freelancer.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, e.client.ID, convs[0].PartnerID)
	assert.Equal(t, 2, convs[0].UnreadCount)
	assert.Equal(t, "yes", convs[0].LastMessage.Text)

	thread, err := e.messages.Thread(ctx, e.freelancer.ID, e.client.ID)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, "hello", thread[0].Text)
	assert.True(t, thread[0].IsRead)

	n, err = e.messages.UnreadCount(ctx, e.freelancer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// the client's own unread message stays unread
	n, err = e.messages.UnreadCount(ctx, e.client.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMessages_SendValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.messages.Send(ctx, e.client, service.SendMessageRequest{ReceiverID: e.freelancer.ID})
	requireKind(t, err, apperr.KindValidation)

	_, err = e.messages.Send(ctx, e.client, service.SendMessageRequest{ReceiverID: e.freelancer.ID, Text: strings.Repeat("a", 1001)})
	requireKind(t, err, apperr.KindValidation)

	msg, err := e.messages.Send(ctx, e.client, service.SendMessageRequest{ReceiverID: e.freelancer.ID, Files: []string{"https://files.test/brief.pdf"}})
	require.NoError(t, err)
	assert.Empty(t, msg.Text)
	assert.Contains(t, e.notifier.Titles(e.freelancer.ID), "New Message")
}

func TestMessages_UnknownReceiver(t *testing.T) {
	e := newEnv(t)
	other := e.addFreelancer("ghost")
	job := e.postJob(t, "Essay")

	_, err := e.messages.Send(context.Background(), e.client, service.SendMessageRequest{ReceiverID: job.ID, Text: "hi"})
	requireKind(t, err, apperr.KindNotFound)

	_, err = e.messages.Thread(context.Background(), other.ID, job.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestMessages_UserStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	st, err := e.messages.UserStatus(ctx, e.freelancer.ID)
	require.NoError(t, err)
	assert.Equal(t, "offline", st.Status)

	require.NoError(t, e.presence.Touch(ctx, e.freelancer.ID))
	st, err = e.messages.UserStatus(ctx, e.freelancer.ID)
	require.NoError(t, err)
	assert.Equal(t, "online", st.Status)

	require.NoError(t, e.messages.GoOffline(ctx, e.freelancer.ID))
	st, err = e.messages.UserStatus(ctx, e.freelancer.ID)
	require.NoError(t, err)
	assert.Equal(t, "offline", st.Status)
}
