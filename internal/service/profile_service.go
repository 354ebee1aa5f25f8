package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
	"marketplace-service/internal/validation"
)

// profileTermFields are the taxonomy lists a freelancer may edit on their profile.
var profileTermFields = map[string]entity.TaxonomyKind{
	"skills":           entity.KindSkill,
	"expertise":        entity.KindExpertise,
	"subjects":         entity.KindSubject,
	"languages":        entity.KindLanguage,
	"assignment_types": entity.KindAssignmentType,
	"service_types":    entity.KindServiceType,
}

// ProfileService manages a freelancer's portfolio, education and profile terms.
type ProfileService struct {
	repo     ProfileRepository
	users    UserRepository
	taxonomy TaxonomyRepository
	log      *zap.Logger
}

func NewProfileService(repo ProfileRepository, users UserRepository, taxonomy TaxonomyRepository, log *zap.Logger) *ProfileService {
	return &ProfileService{repo: repo, users: users, taxonomy: taxonomy, log: log}
}

type PortfolioRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       *string `json:"image,omitempty"`
	Document    *string `json:"document,omitempty"`
	Link        *string `json:"link,omitempty"`
}

func (s *ProfileService) AddPortfolioItem(ctx context.Context, freelancerID uuid.UUID, req PortfolioRequest) (*entity.PortfolioItem, error) {
	req.Image = trimmedOrNil(req.Image)
	req.Document = trimmedOrNil(req.Document)
	req.Link = trimmedOrNil(req.Link)
	if err := validation.Portfolio(req, req.Image != nil || req.Document != nil); err != nil {
		return nil, err
	}

	p := &entity.PortfolioItem{
		FreelancerID: freelancerID,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Image:        req.Image,
		Document:     req.Document,
		Link:         req.Link,
	}
	if err := s.repo.CreatePortfolioItem(ctx, p); err != nil {
		return nil, fmt.Errorf("create portfolio item: %w", err)
	}
	return p, nil
}

func (s *ProfileService) Portfolio(ctx context.Context, freelancerID uuid.UUID) ([]entity.PortfolioItem, error) {
	return s.repo.ListPortfolio(ctx, freelancerID)
}

// DeletePortfolioItem removes one of the freelancer's own items; other items are reported missing.
func (s *ProfileService) DeletePortfolioItem(ctx context.Context, freelancerID, id uuid.UUID) error {
	err := s.repo.DeletePortfolioItem(ctx, freelancerID, id)
	if errors.Is(err, entity.ErrNotFound) {
		return apperr.NotFound("Portfolio item does not exist.")
	}
	return err
}

type EducationRequest struct {
	GraduatedFrom   string  `json:"graduated_from"`
	AcademicMajor   string  `json:"academic_major"`
	Certificate     *string `json:"certificate,omitempty"`
	EducationLevels []int64 `json:"education_levels"`
}

func (s *ProfileService) AddEducation(ctx context.Context, freelancerID uuid.UUID, req EducationRequest) (*entity.Education, error) {
	req.Certificate = trimmedOrNil(req.Certificate)
	if req.EducationLevels == nil {
		req.EducationLevels = []int64{}
	}
	if err := validation.Education(req); err != nil {
		return nil, err
	}
	if err := s.checkTerms(ctx, "education_levels", entity.KindEducationLevel, req.EducationLevels); err != nil {
		return nil, err
	}

	e := &entity.Education{
		FreelancerID:    freelancerID,
		GraduatedFrom:   strings.TrimSpace(req.GraduatedFrom),
		AcademicMajor:   strings.TrimSpace(req.AcademicMajor),
		Certificate:     req.Certificate,
		EducationLevels: req.EducationLevels,
	}
	if err := s.repo.CreateEducation(ctx, e); err != nil {
		return nil, fmt.Errorf("create education: %w", err)
	}
	return e, nil
}

func (s *ProfileService) Education(ctx context.Context, freelancerID uuid.UUID) ([]entity.Education, error) {
	return s.repo.ListEducation(ctx, freelancerID)
}

func (s *ProfileService) DeleteEducation(ctx context.Context, freelancerID, id uuid.UUID) error {
	err := s.repo.DeleteEducation(ctx, freelancerID, id)
	if errors.Is(err, entity.ErrNotFound) {
		return apperr.NotFound("Education item not found.")
	}
	return err
}

// UpdateSkills replaces the term lists present in req and keeps the others.
// It returns the freelancer's full term set after the update.
func (s *ProfileService) UpdateSkills(ctx context.Context, freelancerID uuid.UUID, req map[string][]int64) (entity.Taxonomy, error) {
	fields := map[string]string{}
	update := entity.Taxonomy{}
	for field, ids := range req {
		kind, ok := profileTermFields[field]
		if !ok {
			fields[field] = "Unknown profile field."
			continue
		}
		if ids == nil {
			ids = []int64{}
		}
		update[kind] = ids
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}
	if len(update) == 0 {
		return nil, apperr.BadRequest("nothing to update")
	}

	for field, kind := range profileTermFields {
		ids, ok := update[kind]
		if !ok {
			continue
		}
		if err := s.checkTerms(ctx, field, kind, ids); err != nil {
			return nil, err
		}
	}

	if err := s.repo.ReplaceTerms(ctx, freelancerID, update); err != nil {
		return nil, fmt.Errorf("replace freelancer terms: %w", err)
	}
	s.log.Info("profile terms updated", zap.String("freelancer_id", freelancerID.String()), zap.Int("kinds", len(update)))

	return s.users.FreelancerTaxonomy(ctx, freelancerID)
}

// checkTerms fails with a field error unless every id is a known term of kind.
func (s *ProfileService) checkTerms(ctx context.Context, field string, kind entity.TaxonomyKind, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	terms, err := s.taxonomy.ListTerms(ctx, kind)
	if err != nil {
		return fmt.Errorf("list %s terms: %w", kind, err)
	}
	known := make(map[int64]struct{}, len(terms))
	for _, t := range terms {
		known[t.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return apperr.Invalid(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
