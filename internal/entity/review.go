package entity

import (
	"time"

	"github.com/google/uuid"
)

const MaxRating = 5

type Review struct {
	ID          uuid.UUID `json:"id"`
	ReviewerID  uuid.UUID `json:"reviewer_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	JobID       uuid.UUID `json:"job_id"`
	Rating      int       `json:"rating"`
	Comment     *string   `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type RatingSummary struct {
	Average float64 `json:"average_rating"`
	Count   int     `json:"total_reviews"`
}
