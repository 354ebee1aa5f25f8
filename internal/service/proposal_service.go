package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
	"marketplace-service/internal/validation"
)

type ProposalService struct {
	proposals ProposalRepository
	jobs      JobRepository
	notifier  Notifier
	log       *zap.Logger
	now       func() time.Time
}

func NewProposalService(proposals ProposalRepository, jobs JobRepository, notifier Notifier, log *zap.Logger) *ProposalService {
	return &ProposalService{proposals: proposals, jobs: jobs, notifier: notifier, log: log, now: time.Now}
}

// SetClock overrides the time source.
func (s *ProposalService) SetClock(now func() time.Time) { s.now = now }

type SubmitProposalRequest struct {
	JobID       uuid.UUID
	CoverLetter string
	BidAmount   string
	Files       []string
}

// Submit records a bid. Repeated bids on the same job are stored as separate proposals.
func (s *ProposalService) Submit(ctx context.Context, freelancer *entity.User, req SubmitProposalRequest) (*entity.Proposal, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.CoverLetter) == "" {
		fields["cover_letter"] = "This field is required."
	}
	bid, msg := normalizeBid(req.BidAmount)
	if msg != "" {
		fields["bid_amount"] = msg
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	job, err := s.jobs.GetByID(ctx, req.JobID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound("job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	p := &entity.Proposal{
		FreelancerID: freelancer.ID,
		JobID:        job.ID,
		CoverLetter:  req.CoverLetter,
		BidAmount:    bid,
		Files:        nonNil(req.Files),
		SubmittedAt:  s.now().UTC(),
	}
	if err := s.proposals.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	publish(ctx, s.notifier, s.log,
		event{
			userID:  job.ClientID,
			title:   "New Proposal Received",
			message: fmt.Sprintf("%s submitted a proposal for %q.", freelancer.FullName(), job.Title),
			url:     "/client/proposals/" + p.ID.String(),
		},
		event{
			userID:  freelancer.ID,
			title:   "Proposal Submitted",
			message: fmt.Sprintf("Your proposal for %q was submitted.", job.Title),
			url:     "/freelancer/proposals/" + p.ID.String(),
		},
	)
	return p, nil
}

// DetailForClient returns the proposal and marks it viewed; viewed_at keeps the first read.
func (s *ProposalService) DetailForClient(ctx context.Context, clientID, id uuid.UUID) (*entity.Proposal, error) {
	p, job, err := s.clientProposal(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	firstView := p.ViewedAt == nil

	p, err = s.proposals.MarkViewed(ctx, id, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("mark viewed: %w", err)
	}
	if firstView {
		publish(ctx, s.notifier, s.log, event{
			userID:  p.FreelancerID,
			title:   "Proposal Viewed",
			message: fmt.Sprintf("The client viewed your proposal for %q.", job.Title),
			url:     "/freelancer/proposals/" + p.ID.String(),
		})
	}
	return p, nil
}

func (s *ProposalService) Accept(ctx context.Context, clientID, id uuid.UUID) (*entity.Proposal, error) {
	p, job, err := s.clientProposal(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	p.Accept()
	if err := s.proposals.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("accept proposal: %w", err)
	}
	publish(ctx, s.notifier, s.log, event{
		userID:  p.FreelancerID,
		title:   "Proposal Accepted",
		message: fmt.Sprintf("Your proposal for %q was accepted.", job.Title),
		url:     "/freelancer/jobs/" + job.ID.String(),
	})
	return p, nil
}

func (s *ProposalService) Decline(ctx context.Context, clientID, id uuid.UUID) (*entity.Proposal, error) {
	p, job, err := s.clientProposal(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	p.Decline()
	if err := s.proposals.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("decline proposal: %w", err)
	}
	publish(ctx, s.notifier, s.log, event{
		userID:  p.FreelancerID,
		title:   "Proposal Declined",
		message: fmt.Sprintf("Your proposal for %q was declined.", job.Title),
	})
	return p, nil
}

func (s *ProposalService) clientProposal(ctx context.Context, clientID, id uuid.UUID) (*entity.Proposal, *entity.Job, error) {
	p, err := s.proposals.GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, nil, apperr.NotFound("proposal not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get proposal: %w", err)
	}
	job, err := s.jobs.GetByID(ctx, p.JobID)
	if errors.Is(err, entity.ErrNotFound) || (err == nil && job.ClientID != clientID) {
		return nil, nil, apperr.NotFound("proposal not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get job: %w", err)
	}
	return p, job, nil
}

// Freelancer side.

// ListForFreelancer hides proposals on jobs the freelancer already started.
func (s *ProposalService) ListForFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]entity.Proposal, error) {
	return s.proposals.ListByFreelancer(ctx, freelancerID, true)
}

func (s *ProposalService) GetForFreelancer(ctx context.Context, freelancerID, id uuid.UUID) (*entity.Proposal, error) {
	p, err := s.proposals.GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) || (err == nil && p.FreelancerID != freelancerID) {
		return nil, apperr.NotFound("proposal not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	return p, nil
}

type UpdateProposalRequest struct {
	CoverLetter *string  `json:"cover_letter"`
	BidAmount   *string  `json:"bid_amount"`
	Files       []string `json:"files"`
}

func (s *ProposalService) Update(ctx context.Context, freelancerID, id uuid.UUID, req UpdateProposalRequest) (*entity.Proposal, error) {
	p, err := s.GetForFreelancer(ctx, freelancerID, id)
	if err != nil {
		return nil, err
	}
	if req.CoverLetter != nil {
		if strings.TrimSpace(*req.CoverLetter) == "" {
			return nil, apperr.Invalid("cover_letter", "This field may not be blank.")
		}
		p.CoverLetter = *req.CoverLetter
	}
	if req.BidAmount != nil {
		bid, msg := normalizeBid(*req.BidAmount)
		if msg != "" {
			return nil, apperr.Invalid("bid_amount", msg)
		}
		p.BidAmount = bid
	}
	if req.Files != nil {
		p.Files = req.Files
	}
	if err := s.proposals.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update proposal: %w", err)
	}
	return p, nil
}

func (s *ProposalService) Delete(ctx context.Context, freelancerID, id uuid.UUID) error {
	if _, err := s.GetForFreelancer(ctx, freelancerID, id); err != nil {
		return err
	}
	return s.proposals.Delete(ctx, id)
}

// Withdraw turns the freelancer's own proposal into a DeclinedJob record.
func (s *ProposalService) Withdraw(ctx context.Context, freelancerID, id uuid.UUID, reason *string) (*entity.DeclinedJob, error) {
	p, err := s.GetForFreelancer(ctx, freelancerID, id)
	if err != nil {
		return nil, err
	}
	d := &entity.DeclinedJob{
		FreelancerID: freelancerID,
		ProposalID:   p.ID,
		JobID:        p.JobID,
		Reason:       reason,
		DeclinedAt:   s.now().UTC(),
	}
	if err := s.proposals.Withdraw(ctx, d); err != nil {
		return nil, fmt.Errorf("withdraw proposal: %w", err)
	}
	return d, nil
}

func normalizeBid(raw string) (string, string) {
	if strings.TrimSpace(raw) == "" {
		return "1.00", ""
	}
	return validation.Money(raw)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
