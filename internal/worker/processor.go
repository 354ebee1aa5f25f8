package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace-service/internal/entity"
	"marketplace-service/internal/metrics"
	"marketplace-service/internal/notify"
)

type NotificationRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
}

type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type PushSender interface {
	Push(ctx context.Context, endpointARN string, msg notify.PushMessage) error
}

// Processor delivers one outbox notification as a mobile push.
type Processor struct {
	notifications NotificationRepo
	users         UserRepo
	push          PushSender
	log           *zap.Logger
}

func NewProcessor(notifications NotificationRepo, users UserRepo, push PushSender, log *zap.Logger) *Processor {
	return &Processor{notifications: notifications, users: users, push: push, log: log}
}

const (
	resultSent       = "sent"
	resultNoEndpoint = "no_endpoint"
	resultMissing    = "missing"
	resultError      = "error"
)

func (p *Processor) Process(ctx context.Context, rawID string) error {
	start := time.Now()
	defer func() { metrics.NotificationDuration.Observe(time.Since(start).Seconds()) }()

	id, err := uuid.Parse(rawID)
	if err != nil {
		metrics.NotificationsDelivered.WithLabelValues(resultError).Inc()
		return fmt.Errorf("parse notification id %q: %w", rawID, err)
	}

	n, err := p.notifications.GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		metrics.NotificationsDelivered.WithLabelValues(resultMissing).Inc()
		p.log.Info("notification gone", zap.String("id", rawID))
		return nil
	}
	if err != nil {
		metrics.NotificationsDelivered.WithLabelValues(resultError).Inc()
		return fmt.Errorf("load notification: %w", err)
	}

	u, err := p.users.GetByID(ctx, n.UserID)
	if errors.Is(err, entity.ErrNotFound) {
		metrics.NotificationsDelivered.WithLabelValues(resultMissing).Inc()
		return nil
	}
	if err != nil {
		metrics.NotificationsDelivered.WithLabelValues(resultError).Inc()
		return fmt.Errorf("load user: %w", err)
	}
	if u.PushEndpoint == nil || *u.PushEndpoint == "" {
		metrics.NotificationsDelivered.WithLabelValues(resultNoEndpoint).Inc()
		return nil
	}

	msg := notify.PushMessage{Title: n.Title, Body: n.Message}
	if n.URL != nil {
		msg.URL = *n.URL
	}
	if err := p.push.Push(ctx, *u.PushEndpoint, msg); err != nil {
		metrics.NotificationsDelivered.WithLabelValues(resultError).Inc()
		return fmt.Errorf("push notification %s: %w", rawID, err)
	}

	metrics.NotificationsDelivered.WithLabelValues(resultSent).Inc()
	p.log.Debug("notification pushed",
		zap.String("id", rawID),
		zap.String("user_id", n.UserID.String()),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
