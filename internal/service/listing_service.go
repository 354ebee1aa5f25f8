package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
)

// ListingService answers the read-only job and freelancer directory queries.
type ListingService struct {
	jobs        JobRepository
	proposals   ProposalRepository
	invites     InviteRepository
	engagements HiredFreelancerRepository
	users       UserRepository
	reviews     ReviewRepository
	taxonomy    TaxonomyRepository
	now         func() time.Time
}

func NewListingService(
	jobs JobRepository,
	proposals ProposalRepository,
	invites InviteRepository,
	engagements HiredFreelancerRepository,
	users UserRepository,
	reviews ReviewRepository,
	taxonomy TaxonomyRepository,
) *ListingService {
	return &ListingService{
		jobs:        jobs,
		proposals:   proposals,
		invites:     invites,
		engagements: engagements,
		users:       users,
		reviews:     reviews,
		taxonomy:    taxonomy,
		now:         time.Now,
	}
}

type JobListing struct {
	entity.Job
	TimePosted string `json:"time_posted"`
}

func (s *ListingService) listings(jobs []entity.Job) []JobListing {
	now := s.now()
	out := make([]JobListing, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, JobListing{Job: j, TimePosted: j.TimePosted(now)})
	}
	return out
}

func (s *ListingService) list(ctx context.Context, f entity.JobFilter) ([]JobListing, error) {
	jobs, err := s.jobs.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return s.listings(jobs), nil
}

// Client side.

func (s *ListingService) ClientJobs(ctx context.Context, clientID uuid.UUID, titleQuery string) ([]JobListing, error) {
	return s.list(ctx, entity.JobFilter{ClientID: &clientID, TitleQuery: strings.TrimSpace(titleQuery)})
}

func (s *ListingService) ClientCompletedJobs(ctx context.Context, clientID uuid.UUID) ([]JobListing, error) {
	return s.list(ctx, entity.JobFilter{
		ClientID:         &clientID,
		EngagementStates: []entity.EngagementState{entity.StateCompleted},
	})
}

func (s *ListingService) ClientPendingJobs(ctx context.Context, clientID uuid.UUID) ([]JobListing, error) {
	return s.list(ctx, entity.JobFilter{ClientID: &clientID, EngagementStates: entity.PendingStates})
}

func (s *ListingService) ClientJobsWithProposals(ctx context.Context, clientID uuid.UUID) ([]JobListing, error) {
	return s.list(ctx, entity.JobFilter{ClientID: &clientID, HasProposals: true, ExcludeStarted: true})
}

func (s *ListingService) ClientInvitedJobs(ctx context.Context, clientID uuid.UUID) ([]JobListing, error) {
	return s.list(ctx, entity.JobFilter{ClientID: &clientID, HasInvites: true})
}

func (s *ListingService) ClientJobCounts(ctx context.Context, clientID uuid.UUID) (entity.JobCounts, error) {
	return s.jobs.CountsForClient(ctx, clientID)
}

type ClientJobDetail struct {
	Job          JobListing        `json:"job"`
	Proposals    []entity.Proposal `json:"proposals"`
	NumProposals int               `json:"num_proposals"`
	IsInvited    bool              `json:"is_invited"`
}

func (s *ListingService) ClientJobDetail(ctx context.Context, clientID, jobID uuid.UUID) (*ClientJobDetail, error) {
	job, err := ownedJob(ctx, s.jobs, clientID, jobID)
	if err != nil {
		return nil, err
	}
	props, err := s.proposals.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	accepted := false
	invited, err := found(s.invites.Find(ctx, entity.InviteFilter{JobID: jobID, ClientID: &clientID, Accepted: &accepted}))
	if err != nil {
		return nil, err
	}
	return &ClientJobDetail{
		Job:          s.listings([]entity.Job{*job})[0],
		Proposals:    props,
		NumProposals: len(props),
		IsInvited:    invited,
	}, nil
}

// Freelancer side.

func (s *ListingService) openFilter(freelancerID uuid.UUID) entity.JobFilter {
	return entity.JobFilter{
		ExcludeHired:      true,
		ExcludeProposedBy: &freelancerID,
		ExcludeInvitedFor: &freelancerID,
	}
}

func (s *ListingService) OpenJobs(ctx context.Context, freelancerID uuid.UUID) ([]JobListing, error) {
	return s.list(ctx, s.openFilter(freelancerID))
}

func (s *ListingService) InvitedJobs(ctx context.Context, freelancerID uuid.UUID) ([]JobListing, error) {
	return s.list(ctx, entity.JobFilter{InvitedFor: &freelancerID, ExcludeHired: true})
}

// MatchingJobs are open jobs sharing at least one term with the freelancer's
// profile on every matching taxonomy kind.
func (s *ListingService) MatchingJobs(ctx context.Context, freelancerID uuid.UUID) ([]JobListing, error) {
	tax, err := s.users.FreelancerTaxonomy(ctx, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("freelancer taxonomy: %w", err)
	}
	for _, k := range entity.MatchingKinds {
		if len(tax[k]) == 0 {
			return []JobListing{}, nil
		}
	}
	f := s.openFilter(freelancerID)
	f.MatchTaxonomy = tax
	return s.list(ctx, f)
}

// SearchJobs finds jobs by free text and wraps every hit in <mark>.
func (s *ListingService) SearchJobs(ctx context.Context, freelancerID uuid.UUID, term string) ([]JobListing, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperr.Invalid("title", "Search term is required.")
	}
	res, err := s.list(ctx, entity.JobFilter{
		Text:              term,
		ExcludeStarted:    true,
		ExcludeProposedBy: &freelancerID,
		ExcludeInvitedFor: &freelancerID,
	})
	if err != nil {
		return nil, err
	}
	for i := range res {
		res[i].Title = Highlight(res[i].Title, term)
		res[i].Description = Highlight(res[i].Description, term)
	}
	return res, nil
}

// Highlight wraps case-insensitive occurrences of term in s with <mark> tags.
func Highlight(s, term string) string {
	if term == "" {
		return s
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
	return re.ReplaceAllString(s, "<mark>$0</mark>")
}

type FreelancerJobDetail struct {
	Job       JobListing `json:"job"`
	IsInvited bool       `json:"is_invited"`
	InviteID  *uuid.UUID `json:"invite_id,omitempty"`
}

func (s *ListingService) FreelancerJobDetail(ctx context.Context, freelancerID, jobID uuid.UUID) (*FreelancerJobDetail, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound("job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	out := &FreelancerJobDetail{Job: s.listings([]entity.Job{*job})[0]}
	declined := false
	inv, err := s.invites.Find(ctx, entity.InviteFilter{JobID: jobID, FreelancerID: &freelancerID, Declined: &declined})
	switch {
	case err == nil:
		out.IsInvited = true
		out.InviteID = &inv.ID
	case !errors.Is(err, entity.ErrNotFound):
		return nil, fmt.Errorf("find invite: %w", err)
	}
	return out, nil
}

// Freelancer directory.

func (s *ListingService) Freelancers(ctx context.Context, f entity.FreelancerFilter) ([]entity.FreelancerSummary, error) {
	return s.users.ListFreelancers(ctx, f)
}

func (s *ListingService) Freelancer(ctx context.Context, id uuid.UUID) (*entity.FreelancerSummary, error) {
	f, err := s.users.GetFreelancer(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound("freelancer not found")
	}
	return f, err
}

func (s *ListingService) FreelancerStats(ctx context.Context, freelancerID uuid.UUID) (*entity.FreelancerStats, error) {
	props, err := s.proposals.ListByFreelancer(ctx, freelancerID, true)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	pending, err := s.engagements.ListByFreelancer(ctx, freelancerID, entity.PendingStates)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	done, err := s.engagements.ListByFreelancer(ctx, freelancerID, []entity.EngagementState{entity.StateCompleted})
	if err != nil {
		return nil, fmt.Errorf("list completed: %w", err)
	}
	invited, err := s.jobs.List(ctx, entity.JobFilter{InvitedFor: &freelancerID, ExcludeHired: true})
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	sum, err := s.reviews.Summary(ctx, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}
	return &entity.FreelancerStats{
		Proposals:     len(props),
		PendingJobs:   len(pending),
		CompletedJobs: len(done),
		Invites:       len(invited),
		AverageRating: sum.Average,
		ReviewCount:   sum.Count,
	}, nil
}

func (s *ListingService) Terms(ctx context.Context, kind string) ([]entity.Term, error) {
	if !entity.ValidTaxonomyKind(kind) {
		return nil, apperr.NotFound("unknown taxonomy")
	}
	return s.taxonomy.ListTerms(ctx, entity.TaxonomyKind(kind))
}

// PagePrices lists the per-page pricing table.
func (s *ListingService) PagePrices(ctx context.Context) ([]entity.PagePrice, error) {
	return s.taxonomy.ListPagePrices(ctx)
}

// ownedJob loads a job and hides it from anyone but its client.
func ownedJob(ctx context.Context, jobs JobRepository, clientID, jobID uuid.UUID) (*entity.Job, error) {
	job, err := jobs.GetByID(ctx, jobID)
	if errors.Is(err, entity.ErrNotFound) || (err == nil && job.ClientID != clientID) {
		return nil, apperr.NotFound("job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func found(_ *entity.Invite, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, entity.ErrNotFound) {
		return false, nil
	}
	return false, err
}
