package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID               uuid.UUID `json:"id"`
	ClientID         uuid.UUID `json:"client_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	DueDate          time.Time `json:"due_date"`
	NumPages         int       `json:"num_pages"`
	Words            *int      `json:"words,omitempty"`
	ProjectCost      string    `json:"project_cost"`
	AssignmentTopic  *string   `json:"assignment_topic,omitempty"`
	CitationStyle    *string   `json:"citation_style,omitempty"`
	PageAbstract     bool      `json:"page_abstract"`
	PrintableSources bool      `json:"printable_sources"`
	DetailedOutline  bool      `json:"detailed_outline"`
	Paid             bool      `json:"paid"`
	Taxonomy         Taxonomy  `json:"taxonomy"`
	CreatedAt        time.Time `json:"created_at"`
}

// JobDraft is a validated job post that has not been persisted yet.
// It is kept on the pending Transaction until the payment clears.
type JobDraft struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	DueDate          string   `json:"due_date"`
	NumPages         int      `json:"num_pages"`
	Words            *int     `json:"words,omitempty"`
	ProjectCost      string   `json:"project_cost"`
	AssignmentTopic  *string  `json:"assignment_topic,omitempty"`
	CitationStyle    *string  `json:"citation_style,omitempty"`
	PageAbstract     bool     `json:"page_abstract"`
	PrintableSources bool     `json:"printable_sources"`
	DetailedOutline  bool     `json:"detailed_outline"`
	Taxonomy         Taxonomy `json:"taxonomy"`
}

const DateLayout = "2006-01-02"

// NewJob turns a draft into a job owned by client.
func (d JobDraft) NewJob(client uuid.UUID, paid bool) (*Job, error) {
	due, err := time.Parse(DateLayout, d.DueDate)
	if err != nil {
		return nil, fmt.Errorf("parse due_date: %w", err)
	}
	numPages := d.NumPages
	if numPages <= 0 {
		numPages = 1
	}
	return &Job{
		ClientID:         client,
		Title:            d.Title,
		Description:      d.Description,
		DueDate:          due,
		NumPages:         numPages,
		Words:            d.Words,
		ProjectCost:      d.ProjectCost,
		AssignmentTopic:  d.AssignmentTopic,
		CitationStyle:    d.CitationStyle,
		PageAbstract:     d.PageAbstract,
		PrintableSources: d.PrintableSources,
		DetailedOutline:  d.DetailedOutline,
		Paid:             paid,
		Taxonomy:         d.Taxonomy,
	}, nil
}

// TimePosted renders the age of the job the way listing pages show it.
func (j Job) TimePosted(now time.Time) string {
	d := now.Sub(j.CreatedAt)
	switch {
	case d >= 24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d >= time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	default:
		return "Just now"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// JobFilter selects jobs for the listing endpoints. Zero values disable a predicate.
type JobFilter struct {
	ClientID *uuid.UUID
	// TitleQuery is a case-insensitive substring of the title.
	TitleQuery string
	// Text is a case-insensitive substring of title, description, skill or expertise names.
	Text string

	ExcludeHired   bool
	ExcludeStarted bool

	ExcludeProposedBy *uuid.UUID
	ExcludeInvitedFor *uuid.UUID
	InvitedFor        *uuid.UUID

	HasProposals bool
	HasInvites   bool

	EngagementStates []EngagementState
	MatchTaxonomy    Taxonomy
}

type JobCounts struct {
	Proposals  int `json:"proposals_count"`
	Completed  int `json:"completed_jobs_count"`
	InProgress int `json:"in_progress_jobs_count"`
	All        int `json:"all_jobs_count"`
	Invites    int `json:"invites"`
}
