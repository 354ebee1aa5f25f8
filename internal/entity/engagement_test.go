package entity

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEngagement_Lifecycle(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	h := NewHiredFreelancer(uuid.New(), uuid.New(), now)

	if !h.Started() || !h.Pending() || h.Completed() {
		t.Fatalf("expected started+pending, got state=%s", h.State)
	}

	steps := []EngagementState{StateSubmitted, StateRevisionRequested, StateSubmitted, StateCompleted}
	for _, s := range steps {
		if err := h.Transition(s, now); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}

	if !h.Completed() || h.Pending() {
		t.Fatalf("expected completed and not pending, got state=%s", h.State)
	}
	if h.FinishedAt == nil || !h.FinishedAt.Equal(now) {
		t.Fatalf("expected finished_at stamped, got %v", h.FinishedAt)
	}
}

func TestEngagement_CompletedIsTerminal(t *testing.T) {
	h := &HiredFreelancer{State: StateCompleted}

	for _, to := range []EngagementState{StateStarted, StateSubmitted, StateRevisionRequested, StateCompleted} {
		if err := h.Transition(to, time.Now()); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition for %s, got %v", to, err)
		}
	}
	if err := h.Restart(time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected restart of completed engagement to fail, got %v", err)
	}
}

func TestEngagement_RevisionNeedsSubmission(t *testing.T) {
	h := &HiredFreelancer{State: StateStarted}
	if err := h.Transition(StateRevisionRequested, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected revision request without submission to fail, got %v", err)
	}
}

func TestEngagement_RestartKeepsLaterState(t *testing.T) {
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	h := &HiredFreelancer{State: StateSubmitted, StartedAt: first}
	if err := h.Restart(second); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if h.State != StateSubmitted || !h.StartedAt.Equal(second) {
		t.Fatalf("expected submitted with restamped started_at, got %s %v", h.State, h.StartedAt)
	}

	n := &HiredFreelancer{State: StateNotStarted}
	_ = n.Restart(second)
	if n.State != StateStarted {
		t.Fatalf("expected not_started -> started, got %s", n.State)
	}
}

func TestNewOrderID_EightDigits(t *testing.T) {
	for i := 0; i < 1000; i++ {
		id := NewOrderID()
		if id < 10000000 || id > 99999999 {
			t.Fatalf("order id out of range: %d", id)
		}
	}
}

func TestEngagement_JSONExposesFlags(t *testing.T) {
	h := HiredFreelancer{ID: uuid.New(), State: StateRevisionRequested}
	b, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)

	if m["started"] != true || m["pending"] != true || m["completed"] != false {
		t.Fatalf("unexpected flags: %v", m)
	}
	if m["state"] != "revision_requested" {
		t.Fatalf("unexpected state: %v", m["state"])
	}
}
