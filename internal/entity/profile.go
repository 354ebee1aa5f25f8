package entity

import (
	"time"

	"github.com/google/uuid"
)

// PortfolioItem is a sample of a freelancer's work. Files are stored as URLs.
type PortfolioItem struct {
	ID           uuid.UUID `json:"id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Image        *string   `json:"image,omitempty"`
	Document     *string   `json:"document,omitempty"`
	Link         *string   `json:"link,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Education struct {
	ID            uuid.UUID `json:"id"`
	FreelancerID  uuid.UUID `json:"freelancer_id"`
	GraduatedFrom string    `json:"graduated_from"`
	AcademicMajor string    `json:"academic_major"`
	Certificate   *string   `json:"certificate,omitempty"`
	// EducationLevels are taxonomy term ids of kind education_level.
	EducationLevels []int64   `json:"education_levels"`
	CreatedAt       time.Time `json:"created_at"`
}
