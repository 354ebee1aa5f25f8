package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/service"
)

func TestProposal_SubmitDefaultsAndNotifies(t *testing.T) {
	e := newEnv(t)
	job := e.postJob(t, "Essay")

	p, err := e.proposals.Submit(context.Background(), e.freelancer, service.SubmitProposalRequest{
		JobID:       job.ID,
		CoverLetter: "I can do this",
	})
	require.NoError(t, err)
	assert.Equal(t, "1.00", p.BidAmount)
	assert.False(t, p.Viewed)
	assert.NotNil(t, p.Files)

	assert.Contains(t, e.notifier.Titles(e.client.ID), "New Proposal Received")
	assert.Contains(t, e.notifier.Titles(e.freelancer.ID), "Proposal Submitted")
}

func TestProposal_SubmitValidation(t *testing.T) {
	e := newEnv(t)
	job := e.postJob(t, "Essay")

	_, err := e.proposals.Submit(context.Background(), e.freelancer, service.SubmitProposalRequest{
		JobID:     job.ID,
		BidAmount: "-3",
	})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "cover_letter")
	assert.Contains(t, ae.Fields, "bid_amount")

	for _, bad := range []string{"NaN", "Inf", "-Inf", "1e300", "10000000000"} {
		_, err := e.proposals.Submit(context.Background(), e.freelancer, service.SubmitProposalRequest{
			JobID:       job.ID,
			CoverLetter: "hi",
			BidAmount:   bad,
		})
		require.ErrorAs(t, err, &ae, "bid %q", bad)
		assert.Contains(t, ae.Fields, "bid_amount", "bid %q", bad)
	}

	p, err := e.proposals.Submit(context.Background(), e.freelancer, service.SubmitProposalRequest{
		JobID:       job.ID,
		CoverLetter: "hi",
		BidAmount:   "9999999999.99",
	})
	require.NoError(t, err)
	assert.Equal(t, "9999999999.99", p.BidAmount)
}

func TestProposal_DetailStampsViewedAtOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	e.proposals.SetClock(c.now)

	job := e.postJob(t, "Essay")
	p, err := e.proposals.Submit(ctx, e.freelancer, service.SubmitProposalRequest{JobID: job.ID, CoverLetter: "hi"})
	require.NoError(t, err)

	first, err := e.proposals.DetailForClient(ctx, e.client.ID, p.ID)
	require.NoError(t, err)
	require.True(t, first.Viewed)
	require.NotNil(t, first.ViewedAt)

	c.advance(time.Hour)
	second, err := e.proposals.DetailForClient(ctx, e.client.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, second.ViewedAt.Equal(*first.ViewedAt))

	viewed := 0
	for _, title := range e.notifier.Titles(e.freelancer.ID) {
		if title == "Proposal Viewed" {
			viewed++
		}
	}
	assert.Equal(t, 1, viewed)
}

func TestProposal_DetailHiddenFromOtherClients(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.postJob(t, "Essay")
	p, err := e.proposals.Submit(ctx, e.freelancer, service.SubmitProposalRequest{JobID: job.ID, CoverLetter: "hi"})
	require.NoError(t, err)

	_, err = e.proposals.DetailForClient(ctx, e.freelancer.ID, p.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestProposal_AcceptAfterDecline(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.postJob(t, "Essay")
	p, err := e.proposals.Submit(ctx, e.freelancer, service.SubmitProposalRequest{JobID: job.ID, CoverLetter: "hi"})
	require.NoError(t, err)

	declined, err := e.proposals.Decline(ctx, e.client.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, declined.Declined)

	accepted, err := e.proposals.Accept(ctx, e.client.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, accepted.Accepted)
	assert.False(t, accepted.Declined)
}

func TestProposal_FreelancerUpdateAndWithdraw(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := e.postJob(t, "Essay")
	p, err := e.proposals.Submit(ctx, e.freelancer, service.SubmitProposalRequest{JobID: job.ID, CoverLetter: "hi", BidAmount: "12"})
	require.NoError(t, err)

	bid := "15.5"
	upd, err := e.proposals.Update(ctx, e.freelancer.ID, p.ID, service.UpdateProposalRequest{BidAmount: &bid})
	require.NoError(t, err)
	assert.Equal(t, "15.50", upd.BidAmount)
	assert.Equal(t, "hi", upd.CoverLetter)

	other := e.addFreelancer("other")
	_, err = e.proposals.Update(ctx, other.ID, p.ID, service.UpdateProposalRequest{BidAmount: &bid})
	requireKind(t, err, apperr.KindNotFound)

	reason := "too busy"
	d, err := e.proposals.Withdraw(ctx, e.freelancer.ID, p.ID, &reason)
	require.NoError(t, err)
	assert.Equal(t, job.ID, d.JobID)

	_, err = e.proposals.GetForFreelancer(ctx, e.freelancer.ID, p.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestProposal_ListHidesStartedJobs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	open := e.postJob(t, "Open")
	started := e.postJob(t, "Started")

	for _, id := range []uuid.UUID{open.ID, started.ID} {
		_, err := e.proposals.Submit(ctx, e.freelancer, service.SubmitProposalRequest{JobID: id, CoverLetter: "hi"})
		require.NoError(t, err)
	}
	_, err := e.lifecycle.StartWork(ctx, e.freelancer.ID, started.ID)
	require.NoError(t, err)

	list, err := e.proposals.ListForFreelancer(ctx, e.freelancer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].JobID)
}
