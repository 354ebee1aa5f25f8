package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
	"marketplace-service/internal/service"
)

func (e *env) invite(t *testing.T, job *entity.Job, freelancer *entity.User) *entity.Invite {
	t.Helper()
	inv, err := e.invites.Invite(context.Background(), e.client, service.InviteRequest{
		FreelancerID: freelancer.ID,
		JobID:        job.ID,
		Message:      "Would you take this?",
	})
	require.NoError(t, err)
	return inv
}

func TestInvite_EmailsFreelancerWithJobLink(t *testing.T) {
	e := newEnv(t)
	job := e.postJob(t, "Essay")
	e.invite(t, job, e.freelancer)

	require.Len(t, e.mailer.Sent, 1)
	mail := e.mailer.Sent[0]
	assert.Equal(t, e.freelancer.Email, mail.To)
	assert.Contains(t, mail.HTML, "https://app.test/job-detail/"+job.ID.String()+"/")
	assert.Contains(t, e.notifier.Titles(e.freelancer.ID), "New Job Invitation")
}

func TestInvite_UnknownFreelancerOrForeignJob(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.postJob(t, "Essay")

	_, err := e.invites.Invite(ctx, e.client, service.InviteRequest{FreelancerID: e.client.ID, JobID: job.ID})
	requireKind(t, err, apperr.KindNotFound)

	other := e.store.AddUser(entity.User{Username: "other", IsClient: true, IsActive: true})
	_, err = e.invites.Invite(ctx, other, service.InviteRequest{FreelancerID: e.freelancer.ID, JobID: job.ID})
	requireKind(t, err, apperr.KindNotFound)
}

func TestInvite_AcceptCreatesSingleStartedHire(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.postJob(t, "Essay")
	inv := e.invite(t, job, e.freelancer)

	hire, err := e.invites.Accept(ctx, e.freelancer, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StateStarted, hire.State)
	assert.True(t, hire.Started())
	assert.True(t, hire.Pending())
	assert.False(t, hire.Completed())
	assert.GreaterOrEqual(t, hire.OrderID, 10000000)
	assert.LessOrEqual(t, hire.OrderID, 99999999)
	assert.Equal(t, 1, e.store.HireCount(job.ID))

	stored, err := e.store.Invites().GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, stored.Accepted)
	assert.False(t, stored.Declined)

	assert.Contains(t, e.notifier.Titles(e.client.ID), "Job Started")
	assert.Contains(t, e.notifier.Titles(e.freelancer.ID), "Job Started")

	_, err = e.invites.Accept(ctx, e.freelancer, inv.ID)
	requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, 1, e.store.HireCount(job.ID))
}

func TestInvite_SecondFreelancerCannotBeHired(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.postJob(t, "Essay")
	second := e.addFreelancer("second")

	first := e.invite(t, job, e.freelancer)
	other := e.invite(t, job, second)

	_, err := e.invites.Accept(ctx, e.freelancer, first.ID)
	require.NoError(t, err)

	_, err = e.invites.Accept(ctx, second, other.ID)
	requireKind(t, err, apperr.KindConflict)

	stored, err := e.store.Invites().GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.False(t, stored.Accepted)
}

func TestInvite_DeclineKeepsRowWithReason(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.postJob(t, "Essay")
	inv := e.invite(t, job, e.freelancer)

	got, err := e.invites.Decline(ctx, e.freelancer, inv.ID, "  busy this week ")
	require.NoError(t, err)
	assert.True(t, got.Declined)
	require.NotNil(t, got.DeclinedReason)
	assert.Equal(t, "busy this week", *got.DeclinedReason)

	require.Len(t, e.mailer.Sent, 2)
	assert.Equal(t, e.client.Email, e.mailer.Sent[1].To)
	assert.Contains(t, e.mailer.Sent[1].HTML, "busy this week")

	_, err = e.invites.Decline(ctx, e.addFreelancer("stranger"), inv.ID, "")
	requireKind(t, err, apperr.KindNotFound)
}
