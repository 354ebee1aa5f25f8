package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

// ProfileRepository stores portfolio items, education entries and profile terms.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) CreatePortfolioItem(ctx context.Context, p *entity.PortfolioItem) error {
	const q = `
INSERT INTO portfolio_items (freelancer_id, title, description, image, document, link)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at;
`
	return r.pool.QueryRow(ctx, q,
		p.FreelancerID, p.Title, p.Description, p.Image, p.Document, p.Link,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *ProfileRepository) ListPortfolio(ctx context.Context, freelancerID uuid.UUID) ([]entity.PortfolioItem, error) {
	const q = `
SELECT id, freelancer_id, title, description, image, document, link, created_at
FROM portfolio_items
WHERE freelancer_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, q, freelancerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.PortfolioItem{}
	for rows.Next() {
		var p entity.PortfolioItem
		if err := rows.Scan(&p.ID, &p.FreelancerID, &p.Title, &p.Description, &p.Image, &p.Document, &p.Link, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProfileRepository) DeletePortfolioItem(ctx context.Context, freelancerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM portfolio_items WHERE id = $1 AND freelancer_id = $2;`, id, freelancerID)
	if err != nil {
		return err
	}
	return affected(tag)
}

// CreateEducation inserts the entry and its level links in one transaction.
func (r *ProfileRepository) CreateEducation(ctx context.Context, e *entity.Education) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `
INSERT INTO educations (freelancer_id, graduated_from, academic_major, certificate)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at;
`
	if err := tx.QueryRow(ctx, q, e.FreelancerID, e.GraduatedFrom, e.AcademicMajor, e.Certificate).Scan(&e.ID, &e.CreatedAt); err != nil {
		return fmt.Errorf("insert education: %w", err)
	}

	if len(e.EducationLevels) > 0 {
		const link = `
INSERT INTO education_terms (education_id, term_id)
SELECT $1, t.id FROM taxonomy_terms t
WHERE t.kind = $2 AND t.id = ANY($3::bigint[])
ON CONFLICT DO NOTHING;
`
		if _, err := tx.Exec(ctx, link, e.ID, string(entity.KindEducationLevel), e.EducationLevels); err != nil {
			return fmt.Errorf("link education levels: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *ProfileRepository) ListEducation(ctx context.Context, freelancerID uuid.UUID) ([]entity.Education, error) {
	const q = `
SELECT e.id, e.freelancer_id, e.graduated_from, e.academic_major, e.certificate, e.created_at,
       COALESCE((SELECT array_agg(et.term_id ORDER BY et.term_id)
                 FROM education_terms et WHERE et.education_id = e.id), '{}') AS levels
FROM educations e
WHERE e.freelancer_id = $1
ORDER BY e.created_at;
`
	rows, err := r.pool.Query(ctx, q, freelancerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Education{}
	for rows.Next() {
		var e entity.Education
		if err := rows.Scan(&e.ID, &e.FreelancerID, &e.GraduatedFrom, &e.AcademicMajor, &e.Certificate, &e.CreatedAt, &e.EducationLevels); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ProfileRepository) DeleteEducation(ctx context.Context, freelancerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM educations WHERE id = $1 AND freelancer_id = $2;`, id, freelancerID)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *ProfileRepository) ReplaceTerms(ctx context.Context, freelancerID uuid.UUID, t entity.Taxonomy) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const unlink = `
DELETE FROM freelancer_terms ft
USING taxonomy_terms t
WHERE ft.term_id = t.id AND ft.user_id = $1 AND t.kind = $2;
`
	const link = `
INSERT INTO freelancer_terms (user_id, term_id)
SELECT $1, t.id FROM taxonomy_terms t
WHERE t.kind = $2 AND t.id = ANY($3::bigint[])
ON CONFLICT DO NOTHING;
`
	for kind, ids := range t {
		if _, err := tx.Exec(ctx, unlink, freelancerID, string(kind)); err != nil {
			return fmt.Errorf("clear %s terms: %w", kind, err)
		}
		if len(ids) == 0 {
			continue
		}
		if _, err := tx.Exec(ctx, link, freelancerID, string(kind), ids); err != nil {
			return fmt.Errorf("link %s terms: %w", kind, err)
		}
	}
	return tx.Commit(ctx)
}
