package entity

import (
	"time"

	"github.com/google/uuid"
)

type Proposal struct {
	ID           uuid.UUID  `json:"id"`
	FreelancerID uuid.UUID  `json:"freelancer_id"`
	JobID        uuid.UUID  `json:"job_id"`
	CoverLetter  string     `json:"cover_letter"`
	BidAmount    string     `json:"bid_amount"`
	Files        []string   `json:"files"`
	Viewed       bool       `json:"viewed"`
	ViewedAt     *time.Time `json:"viewed_at,omitempty"`
	Accepted     bool       `json:"accepted"`
	Declined     bool       `json:"declined"`
	SubmittedAt  time.Time  `json:"submitted_at"`
}

// MarkViewed flags the proposal as read by the client; viewed_at is stamped only once.
func (p *Proposal) MarkViewed(now time.Time) {
	p.Viewed = true
	if p.ViewedAt == nil {
		p.ViewedAt = &now
	}
}

func (p *Proposal) Accept() {
	p.Accepted = true
	p.Declined = false
}

func (p *Proposal) Decline() {
	p.Accepted = false
	p.Declined = true
}

// DeclinedJob records a freelancer withdrawing their own proposal.
type DeclinedJob struct {
	ID           uuid.UUID `json:"id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	ProposalID   uuid.UUID `json:"proposal_id"`
	JobID        uuid.UUID `json:"job_id"`
	Reason       *string   `json:"reason,omitempty"`
	DeclinedAt   time.Time `json:"declined_at"`
}
