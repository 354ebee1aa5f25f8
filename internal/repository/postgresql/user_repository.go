package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	const q = `
SELECT id, email, username, first_name, last_name, is_client, is_freelancer, is_staff,
       is_active, email_verified, suspended, bio, push_endpoint, created_at
FROM users
WHERE id = $1;
`
	var u entity.User
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.IsClient,
		&u.IsFreelancer,
		&u.IsStaff,
		&u.IsActive,
		&u.EmailVerified,
		&u.Suspended,
		&u.Bio,
		&u.PushEndpoint,
		&u.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

const freelancerSummarySelect = `
SELECT u.id, u.username, u.first_name, u.last_name, u.bio, u.email_verified,
       COALESCE((SELECT array_agg(t.name ORDER BY t.name)
                 FROM freelancer_terms ft JOIN taxonomy_terms t ON t.id = ft.term_id
                 WHERE ft.user_id = u.id AND t.kind = 'skill'), '{}') AS skills,
       COALESCE((SELECT array_agg(t.name ORDER BY t.name)
                 FROM freelancer_terms ft JOIN taxonomy_terms t ON t.id = ft.term_id
                 WHERE ft.user_id = u.id AND t.kind = 'subject'), '{}') AS subjects,
       COALESCE((SELECT avg(r.rating) FROM reviews r WHERE r.recipient_id = u.id), 0)::float8 AS average_rating,
       (SELECT count(*) FROM reviews r WHERE r.recipient_id = u.id) AS review_count
FROM users u`

func scanSummary(row pgx.Row) (entity.FreelancerSummary, error) {
	var f entity.FreelancerSummary
	err := row.Scan(
		&f.ID,
		&f.Username,
		&f.FirstName,
		&f.LastName,
		&f.Bio,
		&f.EmailVerified,
		&f.Skills,
		&f.Subjects,
		&f.AverageRating,
		&f.ReviewCount,
	)
	return f, err
}

func (r *UserRepository) ListFreelancers(ctx context.Context, f entity.FreelancerFilter) ([]entity.FreelancerSummary, error) {
	w := &where{}
	w.add("u.is_freelancer")
	if f.ActiveOnly {
		w.add("u.is_active")
	}
	if f.WorkedWith != nil {
		w.add(`EXISTS (SELECT 1 FROM hired_freelancers h JOIN jobs j ON j.id = h.job_id
               WHERE h.freelancer_id = u.id AND j.client_id = ` + w.arg(*f.WorkedWith) + `)`)
	}
	if f.Query != "" {
		p := w.arg(f.Query)
		w.add(`(u.username ILIKE '%' || ` + p + ` || '%'
       OR u.first_name ILIKE '%' || ` + p + ` || '%'
       OR u.last_name ILIKE '%' || ` + p + ` || '%'
       OR EXISTS (SELECT 1 FROM freelancer_terms ft JOIN taxonomy_terms t ON t.id = ft.term_id
                  WHERE ft.user_id = u.id AND t.kind IN ('skill', 'subject')
                    AND t.name ILIKE '%' || ` + p + ` || '%'))`)
	}

	q := freelancerSummarySelect + w.sql()
	if f.SortByRating {
		q += "\nORDER BY average_rating DESC, username"
	} else {
		q += "\nORDER BY username"
	}

	rows, err := r.pool.Query(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.FreelancerSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *UserRepository) GetFreelancer(ctx context.Context, id uuid.UUID) (*entity.FreelancerSummary, error) {
	q := freelancerSummarySelect + "\nWHERE u.id = $1 AND u.is_freelancer;"
	s, err := scanSummary(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *UserRepository) FreelancerTaxonomy(ctx context.Context, id uuid.UUID) (entity.Taxonomy, error) {
	const q = `
SELECT t.kind, t.id
FROM freelancer_terms ft
JOIN taxonomy_terms t ON t.id = ft.term_id
WHERE ft.user_id = $1
ORDER BY t.id;
`
	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tax := entity.Taxonomy{}
	for rows.Next() {
		var (
			kind string
			term int64
		)
		if err := rows.Scan(&kind, &term); err != nil {
			return nil, err
		}
		k := entity.TaxonomyKind(kind)
		tax[k] = append(tax[k], term)
	}
	return tax, rows.Err()
}
