package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
)

type ReviewService struct {
	reviews  ReviewRepository
	users    UserRepository
	jobs     JobRepository
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewReviewService(reviews ReviewRepository, users UserRepository, jobs JobRepository, notifier Notifier, log *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, users: users, jobs: jobs, notifier: notifier, log: log, now: time.Now}
}

type PostReviewRequest struct {
	RecipientID uuid.UUID
	JobID       uuid.UUID
	Rating      int
	Comment     *string
}

func (s *ReviewService) Post(ctx context.Context, reviewer *entity.User, req PostReviewRequest) (*entity.Review, error) {
	if req.Rating < 0 || req.Rating > entity.MaxRating {
		return nil, apperr.Invalid("rating", fmt.Sprintf("Rating must be between 0 and %d.", entity.MaxRating))
	}
	if req.RecipientID == reviewer.ID {
		return nil, apperr.Invalid("recipient", "You cannot review yourself.")
	}
	if _, err := s.users.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, apperr.NotFound("recipient not found")
		}
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	job, err := s.jobs.GetByID(ctx, req.JobID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound("job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	r := &entity.Review{
		ReviewerID:  reviewer.ID,
		RecipientID: req.RecipientID,
		JobID:       job.ID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	publish(ctx, s.notifier, s.log, event{
		userID:  req.RecipientID,
		title:   "New Review",
		message: fmt.Sprintf("%s left you a %d-star review for %q.", reviewer.FullName(), req.Rating, job.Title),
		url:     "/reviews",
	})
	return r, nil
}

type ReviewsResult struct {
	Reviews []entity.Review `json:"reviews"`
	entity.RatingSummary
}

// ForRecipient lists reviews with the aggregate computed on every call.
func (s *ReviewService) ForRecipient(ctx context.Context, recipientID uuid.UUID) (*ReviewsResult, error) {
	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	list, err := s.reviews.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	sum, err := s.reviews.Summary(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}
	return &ReviewsResult{Reviews: list, RatingSummary: sum}, nil
}
