package entity

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

// User is owned by the accounts service; this module only reads it.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	IsClient      bool      `json:"is_client"`
	IsFreelancer  bool      `json:"is_freelancer"`
	IsStaff       bool      `json:"is_staff"`
	IsActive      bool      `json:"is_active"`
	EmailVerified bool      `json:"email_verified"`
	Suspended     bool      `json:"suspended"`
	Bio           *string   `json:"bio,omitempty"`
	PushEndpoint  *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

func (u User) HasRole(r Role) bool {
	switch r {
	case RoleClient:
		return u.IsClient
	case RoleFreelancer:
		return u.IsFreelancer
	}
	return false
}

// FreelancerSummary is the directory view of a freelancer with its rating aggregate.
type FreelancerSummary struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Bio           *string   `json:"bio,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	Skills        []string  `json:"skills"`
	Subjects      []string  `json:"subjects"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
}

type FreelancerFilter struct {
	Query        string
	ActiveOnly   bool
	SortByRating bool
	// WorkedWith restricts to freelancers hired on jobs of this client.
	WorkedWith *uuid.UUID
}

type FreelancerStats struct {
	Proposals     int     `json:"proposals"`
	PendingJobs   int     `json:"pending_jobs"`
	CompletedJobs int     `json:"completed_jobs"`
	Invites       int     `json:"invites"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}
