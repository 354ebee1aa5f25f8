package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type EngagementState string

const (
	StateNotStarted        EngagementState = "not_started"
	StateStarted           EngagementState = "started"
	StateSubmitted         EngagementState = "submitted"
	StateRevisionRequested EngagementState = "revision_requested"
	StateCompleted         EngagementState = "completed"
)

// PendingStates are the states of an engagement that is underway.
var PendingStates = []EngagementState{StateStarted, StateSubmitted, StateRevisionRequested}

var ErrInvalidTransition = errors.New("invalid engagement transition")

var transitions = map[EngagementState][]EngagementState{
	StateNotStarted:        {StateStarted},
	StateStarted:           {StateStarted, StateSubmitted, StateCompleted},
	StateSubmitted:         {StateSubmitted, StateRevisionRequested, StateCompleted},
	StateRevisionRequested: {StateRevisionRequested, StateSubmitted, StateCompleted},
	StateCompleted:         nil,
}

func (s EngagementState) CanTransition(to EngagementState) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

func (s EngagementState) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// HiredFreelancer joins one freelancer to one job.
type HiredFreelancer struct {
	ID           uuid.UUID
	FreelancerID uuid.UUID
	JobID        uuid.UUID
	OrderID      int
	State        EngagementState
	StartedAt    time.Time
	FinishedAt   *time.Time
}

const (
	orderIDMin = 10000000
	orderIDMax = 99999999
)

// NewOrderID returns a random 8-digit order number.
func NewOrderID() int {
	return orderIDMin + rand.Intn(orderIDMax-orderIDMin+1)
}

func NewHiredFreelancer(freelancerID, jobID uuid.UUID, now time.Time) *HiredFreelancer {
	return &HiredFreelancer{
		FreelancerID: freelancerID,
		JobID:        jobID,
		OrderID:      NewOrderID(),
		State:        StateStarted,
		StartedAt:    now,
	}
}

func (h HiredFreelancer) Started() bool   { return h.State != StateNotStarted }
func (h HiredFreelancer) Completed() bool { return h.State == StateCompleted }

func (h HiredFreelancer) Pending() bool {
	for _, s := range PendingStates {
		if h.State == s {
			return true
		}
	}
	return false
}

// Transition moves the engagement to state to, stamping finished_at on completion.
func (h *HiredFreelancer) Transition(to EngagementState, now time.Time) error {
	if !h.State.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, h.State, to)
	}
	h.State = to
	if to == StateCompleted && h.FinishedAt == nil {
		h.FinishedAt = &now
	}
	return nil
}

// Restart re-stamps started_at. The state only moves forward from not_started;
// an engagement that already has submissions keeps its state.
func (h *HiredFreelancer) Restart(now time.Time) error {
	if h.State == StateCompleted {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, h.State, StateStarted)
	}
	if h.State == StateNotStarted {
		h.State = StateStarted
	}
	h.StartedAt = now
	return nil
}

func (h HiredFreelancer) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID           uuid.UUID       `json:"id"`
		FreelancerID uuid.UUID       `json:"freelancer_id"`
		JobID        uuid.UUID       `json:"job_id"`
		OrderID      int             `json:"order_id"`
		State        EngagementState `json:"state"`
		Started      bool            `json:"started"`
		Pending      bool            `json:"pending"`
		Completed    bool            `json:"completed"`
		StartedAt    time.Time       `json:"started_at"`
		FinishedAt   *time.Time      `json:"finished_at,omitempty"`
	}{
		ID:           h.ID,
		FreelancerID: h.FreelancerID,
		JobID:        h.JobID,
		OrderID:      h.OrderID,
		State:        h.State,
		Started:      h.Started(),
		Pending:      h.Pending(),
		Completed:    h.Completed(),
		StartedAt:    h.StartedAt,
		FinishedAt:   h.FinishedAt,
	})
}
