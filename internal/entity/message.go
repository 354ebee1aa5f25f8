package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Text       string    `json:"text"`
	Files      []string  `json:"files"`
	IsRead     bool      `json:"is_read"`
	SentAt     time.Time `json:"sent_at"`
}

// Conversation is the latest message exchanged with one counterpart.
type Conversation struct {
	PartnerID   uuid.UUID `json:"partner_id"`
	LastMessage Message   `json:"last_message"`
	UnreadCount int       `json:"unread_count"`
}
