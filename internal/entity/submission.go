package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobSubmission struct {
	ID           uuid.UUID `json:"id"`
	JobID        uuid.UUID `json:"job_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	Files        []string  `json:"files"`
	Notes        *string   `json:"notes,omitempty"`
	Satisfied    bool      `json:"satisfied"`
	NeedRevision bool      `json:"need_revision"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type Revision struct {
	ID           uuid.UUID `json:"id"`
	JobID        uuid.UUID `json:"job_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	Files        []string  `json:"files"`
	Notes        *string   `json:"notes,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// RevisionReason is the client's explanation for rejecting a submission.
type RevisionReason struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
