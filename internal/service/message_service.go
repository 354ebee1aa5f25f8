package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
)

const maxMessageLen = 1000

type MessageService struct {
	messages MessageRepository
	users    UserRepository
	presence Presence
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewMessageService(messages MessageRepository, users UserRepository, presence Presence, notifier Notifier, log *zap.Logger) *MessageService {
	return &MessageService{messages: messages, users: users, presence: presence, notifier: notifier, log: log, now: time.Now}
}

type SendMessageRequest struct {
	ReceiverID uuid.UUID
	Text       string
	Files      []string
}

func (s *MessageService) Send(ctx context.Context, sender *entity.User, req SendMessageRequest) (*entity.Message, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" && len(req.Files) == 0 {
		return nil, apperr.Invalid("text", "This field is required.")
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return nil, apperr.Invalid("text", fmt.Sprintf("Ensure this field has no more than %d characters.", maxMessageLen))
	}
	if _, err := s.user(ctx, req.ReceiverID, "receiver not found"); err != nil {
		return nil, err
	}

	m := &entity.Message{
		SenderID:   sender.ID,
		ReceiverID: req.ReceiverID,
		Text:       text,
		Files:      nonNil(req.Files),
		SentAt:     s.now().UTC(),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	publish(ctx, s.notifier, s.log, event{
		userID:  req.ReceiverID,
		title:   "New Message",
		message: fmt.Sprintf("%s sent you a message.", sender.FullName()),
		url:     "/messages/" + sender.ID.String(),
	})
	return m, nil
}

func (s *MessageService) Conversations(ctx context.Context, userID uuid.UUID) ([]entity.Conversation, error) {
	return s.messages.Conversations(ctx, userID)
}

// Thread returns the whole exchange with other after marking other's messages as read.
func (s *MessageService) Thread(ctx context.Context, userID, otherID uuid.UUID) ([]entity.Message, error) {
	if _, err := s.user(ctx, otherID, "user not found"); err != nil {
		return nil, err
	}
	if _, err := s.messages.MarkThreadRead(ctx, otherID, userID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return s.messages.Thread(ctx, userID, otherID)
}

func (s *MessageService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.messages.UnreadCount(ctx, userID)
}

type UserStatus struct {
	UserID uuid.UUID `json:"user_id"`
	Status string    `json:"status"`
}

func (s *MessageService) UserStatus(ctx context.Context, userID uuid.UUID) (*UserStatus, error) {
	if _, err := s.user(ctx, userID, "user not found"); err != nil {
		return nil, err
	}
	online, err := s.presence.IsOnline(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("presence: %w", err)
	}
	st := &UserStatus{UserID: userID, Status: "offline"}
	if online {
		st.Status = "online"
	}
	return st, nil
}

func (s *MessageService) GoOffline(ctx context.Context, userID uuid.UUID) error {
	return s.presence.Clear(ctx, userID)
}

func (s *MessageService) user(ctx context.Context, id uuid.UUID, notFound string) (*entity.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound(notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
