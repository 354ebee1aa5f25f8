package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
	"marketplace-service/internal/service"
	"marketplace-service/internal/service/servicetest"
)

type env struct {
	store    *servicetest.Store
	notifier *servicetest.Notifier
	gateway  *servicetest.Gateway
	mailer   *servicetest.Mailer
	presence *servicetest.Presence

	jobs      *service.JobService
	listing   *service.ListingService
	proposals *service.ProposalService
	invites   *service.InviteService
	lifecycle *service.LifecycleService
	messages  *service.MessageService
	reviews   *service.ReviewService
	payments  *service.PaymentService
	profiles  *service.ProfileService

	client     *entity.User
	freelancer *entity.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := servicetest.NewStore()
	e := &env{
		store:    st,
		notifier: &servicetest.Notifier{},
		gateway:  &servicetest.Gateway{},
		mailer:   &servicetest.Mailer{},
		presence: &servicetest.Presence{},
	}
	log := zap.NewNop()

	e.jobs = service.NewJobService(st.Jobs(), st.Payments(), e.gateway, e.notifier, log)
	e.listing = service.NewListingService(st.Jobs(), st.Proposals(), st.Invites(), st.Engagements(), st.Users(), st.Reviews(), st.Taxonomy())
	e.proposals = service.NewProposalService(st.Proposals(), st.Jobs(), e.notifier, log)
	e.invites = service.NewInviteService(st.Invites(), st.Jobs(), st.Users(), st.Engagements(), e.mailer, e.notifier, "https://app.test", log)
	e.lifecycle = service.NewLifecycleService(st.Jobs(), st.Engagements(), st.Submissions(), e.notifier, log)
	e.messages = service.NewMessageService(st.Messages(), st.Users(), e.presence, e.notifier, log)
	e.reviews = service.NewReviewService(st.Reviews(), st.Users(), st.Jobs(), e.notifier, log)
	e.payments = service.NewPaymentService(st.Payments())
	e.profiles = service.NewProfileService(st.Profiles(), st.Users(), st.Taxonomy(), log)

	e.client = st.AddUser(entity.User{
		Email: "client@example.com", Username: "client", FirstName: "Cora", LastName: "Client",
		IsClient: true, IsActive: true,
	})
	e.freelancer = e.addFreelancer("writer")
	return e
}

func (e *env) addFreelancer(username string) *entity.User {
	return e.store.AddUser(entity.User{
		Email: username + "@example.com", Username: username,
		IsFreelancer: true, IsActive: true,
	})
}

func jobFields(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":        title,
		"description":  "Five pages on " + title,
		"due_date":     "2030-01-15",
		"project_cost": "40",
	}
}

// postJob creates a paid job for the env client through the immediate card path.
func (e *env) postJob(t *testing.T, title string) *entity.Job {
	t.Helper()
	job, err := e.jobs.PostJobWithCard(context.Background(), e.client, jobFields(title))
	require.NoError(t, err)
	return job
}

func requireKind(t *testing.T, err error, k apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, k, apperr.KindOf(err), "error: %v", err)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
