package entity

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	URL       *string   `json:"url,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"timestamp"`
}
