package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
)

// NotificationService is the outbox: handlers call Notify after the mutation
// that caused the event, the row is stored and its id queued for push delivery.
type NotificationService struct {
	repo  NotificationRepository
	queue Queue
	log   *zap.Logger
	now   func() time.Time
}

func NewNotificationService(repo NotificationRepository, queue Queue, log *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, queue: queue, log: log, now: time.Now}
}

func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message, url string) error {
	n := &entity.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if url != "" {
		n.URL = &url
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	// the row is already visible in-app; a failed enqueue only loses the push
	if err := s.queue.Enqueue(ctx, n.ID.String(), PriorityNormal); err != nil {
		s.log.Warn("enqueue notification push failed",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func (s *NotificationService) ListUnread(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.MarkRead(ctx, userID, []uuid.UUID{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkManyRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.Invalid("ids", "At least one notification id is required.")
	}
	return s.repo.MarkRead(ctx, userID, ids)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// event is one notification emitted by a service after a successful mutation.
type event struct {
	userID  uuid.UUID
	title   string
	message string
	url     string
}

// publish hands events to the notifier. Failures are logged and never fail the request.
func publish(ctx context.Context, n Notifier, log *zap.Logger, events ...event) {
	if n == nil {
		return
	}
	for _, e := range events {
		if err := n.Notify(ctx, e.userID, e.title, e.message, e.url); err != nil {
			log.Warn("notification not recorded",
				zap.String("user_id", e.userID.String()),
				zap.String("title", e.title),
				zap.Error(err),
			)
		}
	}
}
