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
	"marketplace-service/internal/notify"
)

type InviteService struct {
	invites     InviteRepository
	jobs        JobRepository
	users       UserRepository
	engagements HiredFreelancerRepository
	mailer      Mailer
	notifier    Notifier
	frontendURL string
	log         *zap.Logger
	now         func() time.Time
}

func NewInviteService(
	invites InviteRepository,
	jobs JobRepository,
	users UserRepository,
	engagements HiredFreelancerRepository,
	mailer Mailer,
	notifier Notifier,
	frontendURL string,
	log *zap.Logger,
) *InviteService {
	return &InviteService{
		invites:     invites,
		jobs:        jobs,
		users:       users,
		engagements: engagements,
		mailer:      mailer,
		notifier:    notifier,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
		now:         time.Now,
	}
}

type InviteRequest struct {
	FreelancerID uuid.UUID
	JobID        uuid.UUID
	Message      string
}

func (s *InviteService) Invite(ctx context.Context, client *entity.User, req InviteRequest) (*entity.Invite, error) {
	freelancer, err := s.users.GetByID(ctx, req.FreelancerID)
	if errors.Is(err, entity.ErrNotFound) || (err == nil && !freelancer.IsFreelancer) {
		return nil, apperr.NotFound("freelancer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get freelancer: %w", err)
	}
	job, err := ownedJob(ctx, s.jobs, client.ID, req.JobID)
	if err != nil {
		return nil, err
	}

	inv := &entity.Invite{
		ClientID:     client.ID,
		FreelancerID: freelancer.ID,
		JobID:        job.ID,
		Message:      req.Message,
		SentAt:       s.now().UTC(),
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	s.email(ctx, freelancer.Email, notify.RenderInvite, notify.InviteEmail{
		ClientName:     client.FullName(),
		FreelancerName: freelancer.FullName(),
		JobTitle:       job.Title,
		JobURL:         s.jobURL(job.ID),
		Message:        req.Message,
	})
	publish(ctx, s.notifier, s.log, event{
		userID:  freelancer.ID,
		title:   "New Job Invitation",
		message: fmt.Sprintf("%s invited you to %q.", client.FullName(), job.Title),
		url:     "/freelancer/jobs/" + job.ID.String(),
	})
	return inv, nil
}

// Accept hires the invited freelancer: exactly one engagement is created, already started.
func (s *InviteService) Accept(ctx context.Context, freelancer *entity.User, inviteID uuid.UUID) (*entity.HiredFreelancer, error) {
	inv, err := s.freelancerInvite(ctx, freelancer.ID, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.Accepted {
		return nil, apperr.Conflict("invite already accepted")
	}
	job, err := s.jobs.GetByID(ctx, inv.JobID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound("job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	hire := entity.NewHiredFreelancer(freelancer.ID, job.ID, s.now().UTC())
	if err := s.engagements.Create(ctx, hire); err != nil {
		if errors.Is(err, entity.ErrAlreadyHired) {
			return nil, apperr.Conflict("job already has a hired freelancer")
		}
		return nil, fmt.Errorf("create engagement: %w", err)
	}

	inv.Accept()
	if err := s.invites.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("accept invite: %w", err)
	}

	if client, err := s.users.GetByID(ctx, inv.ClientID); err == nil {
		s.email(ctx, client.Email, notify.RenderInviteAccepted, notify.InviteEmail{
			ClientName:     client.FullName(),
			FreelancerName: freelancer.FullName(),
			JobTitle:       job.Title,
			JobURL:         s.jobURL(job.ID),
		})
	}
	publish(ctx, s.notifier, s.log,
		event{
			userID:  inv.ClientID,
			title:   "Job Started",
			message: fmt.Sprintf("%s accepted your invitation and started %q.", freelancer.FullName(), job.Title),
			url:     "/client/jobs/" + job.ID.String(),
		},
		event{
			userID:  freelancer.ID,
			title:   "Job Started",
			message: fmt.Sprintf("You started working on %q.", job.Title),
			url:     "/freelancer/work/" + job.ID.String(),
		},
	)
	return hire, nil
}

// Decline keeps the invite and records why it was turned down.
func (s *InviteService) Decline(ctx context.Context, freelancer *entity.User, inviteID uuid.UUID, reason string) (*entity.Invite, error) {
	inv, err := s.freelancerInvite(ctx, freelancer.ID, inviteID)
	if err != nil {
		return nil, err
	}
	var r *string
	if reason = strings.TrimSpace(reason); reason != "" {
		r = &reason
	}
	inv.Decline(r)
	if err := s.invites.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("decline invite: %w", err)
	}

	job, jobErr := s.jobs.GetByID(ctx, inv.JobID)
	client, userErr := s.users.GetByID(ctx, inv.ClientID)
	if jobErr == nil && userErr == nil {
		s.email(ctx, client.Email, notify.RenderInviteDeclined, notify.InviteEmail{
			ClientName:     client.FullName(),
			FreelancerName: freelancer.FullName(),
			JobTitle:       job.Title,
			Reason:         reason,
		})
		publish(ctx, s.notifier, s.log, event{
			userID:  client.ID,
			title:   "Invitation Declined",
			message: fmt.Sprintf("%s declined your invitation for %q.", freelancer.FullName(), job.Title),
			url:     "/client/jobs/" + job.ID.String(),
		})
	}
	return inv, nil
}

func (s *InviteService) freelancerInvite(ctx context.Context, freelancerID, id uuid.UUID) (*entity.Invite, error) {
	inv, err := s.invites.GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) || (err == nil && inv.FreelancerID != freelancerID) {
		return nil, apperr.NotFound("invite not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return inv, nil
}

func (s *InviteService) jobURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/job-detail/%s/", s.frontendURL, id)
}

// email is fire-and-forget: delivery problems are logged, never returned.
func (s *InviteService) email(ctx context.Context, to string, render func(notify.InviteEmail) (string, string, error), data notify.InviteEmail) {
	if s.mailer == nil {
		return
	}
	subject, body, err := render(data)
	if err == nil {
		err = s.mailer.Send(ctx, to, subject, body)
	}
	if err != nil {
		s.log.Warn("invite email not sent", zap.String("to", to), zap.Error(err))
	}
}
