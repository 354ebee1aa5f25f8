package entity

import (
	"time"

	"github.com/google/uuid"
)

type Invite struct {
	ID             uuid.UUID  `json:"id"`
	ClientID       uuid.UUID  `json:"client_id"`
	FreelancerID   uuid.UUID  `json:"freelancer_id"`
	JobID          uuid.UUID  `json:"job_id"`
	Message        string     `json:"message"`
	SentAt         time.Time  `json:"sent_at"`
	Accepted       bool       `json:"accepted"`
	Declined       bool       `json:"declined"`
	DeclinedReason *string    `json:"declined_reason,omitempty"`
	Viewed         bool       `json:"viewed"`
	ViewedAt       *time.Time `json:"viewed_at,omitempty"`
}

func (i *Invite) Accept() {
	i.Accepted = true
	i.Declined = false
}

func (i *Invite) Decline(reason *string) {
	i.Accepted = false
	i.Declined = true
	i.DeclinedReason = reason
}

// InviteFilter narrows FindInvite; nil fields are ignored.
type InviteFilter struct {
	JobID        uuid.UUID
	ClientID     *uuid.UUID
	FreelancerID *uuid.UUID
	Accepted     *bool
	Declined     *bool
}
