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
)

// LifecycleService drives a hire from start to completion. State changes go
// through entity.HiredFreelancer.Transition and are saved compare-and-set.
type LifecycleService struct {
	jobs        JobRepository
	engagements HiredFreelancerRepository
	submissions SubmissionRepository
	notifier    Notifier
	log         *zap.Logger
	now         func() time.Time
}

func NewLifecycleService(jobs JobRepository, engagements HiredFreelancerRepository, submissions SubmissionRepository, notifier Notifier, log *zap.Logger) *LifecycleService {
	return &LifecycleService{
		jobs:        jobs,
		engagements: engagements,
		submissions: submissions,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
	}
}

// SetClock overrides the time source.
func (s *LifecycleService) SetClock(now func() time.Time) { s.now = now }

// StartWork gets or creates the engagement for the job. A repeated call by the
// same freelancer re-stamps started_at.
func (s *LifecycleService) StartWork(ctx context.Context, freelancerID, jobID uuid.UUID) (*entity.HiredFreelancer, error) {
	job, err := s.job(ctx, jobID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	h, err := s.engagements.GetByJob(ctx, jobID)
	if errors.Is(err, entity.ErrNotFound) {
		h = entity.NewHiredFreelancer(freelancerID, jobID, now)
		err = s.engagements.Create(ctx, h)
		if err == nil {
			s.started(ctx, job, freelancerID)
			return h, nil
		}
		if !errors.Is(err, entity.ErrAlreadyHired) {
			return nil, fmt.Errorf("create engagement: %w", err)
		}
		// lost the race against a concurrent start: continue with the stored row
		h, err = s.engagements.GetByJob(ctx, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("get engagement: %w", err)
	}

	if h.FreelancerID != freelancerID {
		return nil, apperr.Conflict("job already has a hired freelancer")
	}
	from := h.State
	if err := h.Restart(now); err != nil {
		return nil, apperr.Conflict("job is already completed")
	}
	if err := s.save(ctx, h, from); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *LifecycleService) started(ctx context.Context, job *entity.Job, freelancerID uuid.UUID) {
	publish(ctx, s.notifier, s.log,
		event{
			userID:  job.ClientID,
			title:   "Job Started",
			message: fmt.Sprintf("Work on %q has started.", job.Title),
			url:     "/client/jobs/" + job.ID.String(),
		},
		event{
			userID:  freelancerID,
			title:   "Job Started",
			message: fmt.Sprintf("You started working on %q.", job.Title),
			url:     "/freelancer/work/" + job.ID.String(),
		},
	)
}

type WorkRequest struct {
	Files []string
	Notes *string
}

func (s *LifecycleService) SubmitJob(ctx context.Context, freelancerID, jobID uuid.UUID, req WorkRequest) (*entity.JobSubmission, error) {
	job, h, err := s.freelancerEngagement(ctx, freelancerID, jobID)
	if err != nil {
		return nil, err
	}
	from := h.State
	if err := h.Transition(entity.StateSubmitted, s.now().UTC()); err != nil {
		return nil, apperr.Conflict("job is already completed")
	}

	sub := &entity.JobSubmission{
		JobID:        jobID,
		FreelancerID: freelancerID,
		Files:        nonNil(req.Files),
		Notes:        req.Notes,
		SubmittedAt:  s.now().UTC(),
	}
	if err := s.submissions.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	if err := s.save(ctx, h, from); err != nil {
		return nil, err
	}

	publish(ctx, s.notifier, s.log, event{
		userID:  job.ClientID,
		title:   "Job Submitted",
		message: fmt.Sprintf("A submission for %q is ready for review.", job.Title),
		url:     "/client/jobs/" + job.ID.String() + "/submissions",
	})
	return sub, nil
}

// MarkSubmissionSatisfied approves every submission of the job and completes the engagement.
func (s *LifecycleService) MarkSubmissionSatisfied(ctx context.Context, clientID, jobID uuid.UUID) (*entity.HiredFreelancer, error) {
	job, err := ownedJob(ctx, s.jobs, clientID, jobID)
	if err != nil {
		return nil, err
	}
	h, err := s.engagement(ctx, jobID)
	if err != nil {
		return nil, err
	}
	from := h.State
	if err := h.Transition(entity.StateCompleted, s.now().UTC()); err != nil {
		return nil, apperr.Conflict("job is already completed")
	}

	if _, err := s.submissions.MarkAllSatisfied(ctx, jobID); err != nil {
		return nil, fmt.Errorf("mark satisfied: %w", err)
	}
	if err := s.save(ctx, h, from); err != nil {
		return nil, err
	}

	publish(ctx, s.notifier, s.log, event{
		userID:  h.FreelancerID,
		title:   "Submission Approved",
		message: fmt.Sprintf("The client approved your work on %q.", job.Title),
		url:     "/freelancer/work/" + job.ID.String(),
	})
	return h, nil
}

// RequestRevision flags the latest submission and stores the client's reason.
func (s *LifecycleService) RequestRevision(ctx context.Context, clientID, jobID uuid.UUID, reason string) (*entity.RevisionReason, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Invalid("revisionNote", "Revision note is required.")
	}
	job, err := ownedJob(ctx, s.jobs, clientID, jobID)
	if err != nil {
		return nil, err
	}
	sub, err := s.submissions.LatestSubmission(ctx, jobID, nil)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound("no submission found for this job")
	}
	if err != nil {
		return nil, fmt.Errorf("latest submission: %w", err)
	}
	h, err := s.engagement(ctx, jobID)
	if err != nil {
		return nil, err
	}
	from := h.State
	if err := h.Transition(entity.StateRevisionRequested, s.now().UTC()); err != nil {
		return nil, apperr.Conflict("revision cannot be requested in state " + string(from))
	}

	if err := s.submissions.SetNeedRevision(ctx, sub.ID); err != nil {
		return nil, fmt.Errorf("flag submission: %w", err)
	}
	rr := &entity.RevisionReason{JobID: jobID, Reason: reason, CreatedAt: s.now().UTC()}
	if err := s.submissions.CreateRevisionReason(ctx, rr); err != nil {
		return nil, fmt.Errorf("create revision reason: %w", err)
	}
	if err := s.save(ctx, h, from); err != nil {
		return nil, err
	}

	publish(ctx, s.notifier, s.log, event{
		userID:  h.FreelancerID,
		title:   "Revision Requested",
		message: fmt.Sprintf("The client requested a revision on %q.", job.Title),
		url:     "/freelancer/work/" + job.ID.String() + "/revision-reason",
	})
	return rr, nil
}

// SubmitRevision answers a revision request. need_revision on the old submission stays set.
func (s *LifecycleService) SubmitRevision(ctx context.Context, freelancerID, jobID uuid.UUID, req WorkRequest) (*entity.Revision, error) {
	job, h, err := s.freelancerEngagement(ctx, freelancerID, jobID)
	if err != nil {
		return nil, err
	}
	from := h.State
	if err := h.Transition(entity.StateSubmitted, s.now().UTC()); err != nil {
		return nil, apperr.Conflict("job is already completed")
	}

	rev := &entity.Revision{
		JobID:        jobID,
		FreelancerID: freelancerID,
		Files:        nonNil(req.Files),
		Notes:        req.Notes,
		SubmittedAt:  s.now().UTC(),
	}
	if err := s.submissions.CreateRevision(ctx, rev); err != nil {
		return nil, fmt.Errorf("create revision: %w", err)
	}
	if err := s.save(ctx, h, from); err != nil {
		return nil, err
	}

	publish(ctx, s.notifier, s.log, event{
		userID:  job.ClientID,
		title:   "Revision Submitted",
		message: fmt.Sprintf("A revision for %q is ready for review.", job.Title),
		url:     "/client/jobs/" + job.ID.String() + "/revisions",
	})
	return rev, nil
}

// Reads.

func (s *LifecycleService) Status(ctx context.Context, userID, jobID uuid.UUID) (*entity.HiredFreelancer, error) {
	if _, err := s.participant(ctx, userID, jobID); err != nil {
		return nil, err
	}
	return s.engagement(ctx, jobID)
}

func (s *LifecycleService) Submissions(ctx context.Context, userID, jobID uuid.UUID) ([]entity.JobSubmission, error) {
	if _, err := s.participant(ctx, userID, jobID); err != nil {
		return nil, err
	}
	return s.submissions.ListSubmissions(ctx, jobID)
}

func (s *LifecycleService) Revisions(ctx context.Context, userID, jobID uuid.UUID) ([]entity.Revision, error) {
	if _, err := s.participant(ctx, userID, jobID); err != nil {
		return nil, err
	}
	return s.submissions.ListRevisions(ctx, jobID)
}

func (s *LifecycleService) LatestRevisionReason(ctx context.Context, userID, jobID uuid.UUID) (*entity.RevisionReason, error) {
	if _, err := s.participant(ctx, userID, jobID); err != nil {
		return nil, err
	}
	rr, err := s.submissions.LatestRevisionReason(ctx, jobID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound("no revision reason for this job")
	}
	return rr, err
}

func (s *LifecycleService) LatestSubmission(ctx context.Context, freelancerID, jobID uuid.UUID) (*entity.JobSubmission, error) {
	sub, err := s.submissions.LatestSubmission(ctx, jobID, &freelancerID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound("no submission found for this job")
	}
	return sub, err
}

type Task struct {
	Engagement *entity.HiredFreelancer `json:"engagement"`
	Job        *entity.Job             `json:"job"`
}

// Tasks lists the freelancer's engagements; filter is "pending", "completed" or empty for all.
func (s *LifecycleService) Tasks(ctx context.Context, freelancerID uuid.UUID, filter string) ([]Task, error) {
	var states []entity.EngagementState
	switch filter {
	case "":
	case "pending":
		states = entity.PendingStates
	case "completed":
		states = []entity.EngagementState{entity.StateCompleted}
	default:
		return nil, apperr.Invalid("status", "Expected pending or completed.")
	}

	hs, err := s.engagements.ListByFreelancer(ctx, freelancerID, states)
	if err != nil {
		return nil, fmt.Errorf("list engagements: %w", err)
	}
	out := make([]Task, 0, len(hs))
	for i := range hs {
		job, err := s.jobs.GetByID(ctx, hs[i].JobID)
		if err != nil {
			return nil, fmt.Errorf("get job %s: %w", hs[i].JobID, err)
		}
		out = append(out, Task{Engagement: &hs[i], Job: job})
	}
	return out, nil
}

func (s *LifecycleService) Task(ctx context.Context, freelancerID, jobID uuid.UUID) (*Task, error) {
	job, h, err := s.freelancerEngagement(ctx, freelancerID, jobID)
	if err != nil {
		return nil, err
	}
	return &Task{Engagement: h, Job: job}, nil
}

// helpers

func (s *LifecycleService) job(ctx context.Context, jobID uuid.UUID) (*entity.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound("job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (s *LifecycleService) engagement(ctx context.Context, jobID uuid.UUID) (*entity.HiredFreelancer, error) {
	h, err := s.engagements.GetByJob(ctx, jobID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound("hired freelancer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get engagement: %w", err)
	}
	return h, nil
}

func (s *LifecycleService) freelancerEngagement(ctx context.Context, freelancerID, jobID uuid.UUID) (*entity.Job, *entity.HiredFreelancer, error) {
	job, err := s.job(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	h, err := s.engagement(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if h.FreelancerID != freelancerID {
		return nil, nil, apperr.NotFound("hired freelancer not found")
	}
	return job, h, nil
}

// participant allows the job's client and its hired freelancer.
func (s *LifecycleService) participant(ctx context.Context, userID, jobID uuid.UUID) (*entity.Job, error) {
	job, err := s.job(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID == userID {
		return job, nil
	}
	h, err := s.engagements.GetByJob(ctx, jobID)
	if err == nil && h.FreelancerID == userID {
		return job, nil
	}
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return nil, fmt.Errorf("get engagement: %w", err)
	}
	return nil, apperr.NotFound("job not found")
}

func (s *LifecycleService) save(ctx context.Context, h *entity.HiredFreelancer, from entity.EngagementState) error {
	err := s.engagements.Save(ctx, h, from)
	if errors.Is(err, entity.ErrStateConflict) {
		return apperr.Conflict("engagement was modified concurrently, retry")
	}
	if err != nil {
		return fmt.Errorf("save engagement: %w", err)
	}
	return nil
}
