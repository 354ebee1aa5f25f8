package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *entity.Review) error {
	const q = `
INSERT INTO reviews (reviewer_id, recipient_id, job_id, rating, comment, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id;
`
	return r.pool.QueryRow(ctx, q, rv.ReviewerID, rv.RecipientID, rv.JobID, rv.Rating, rv.Comment, rv.CreatedAt).Scan(&rv.ID)
}

func (r *ReviewRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]entity.Review, error) {
	const q = `
SELECT id, reviewer_id, recipient_id, job_id, rating, comment, created_at
FROM reviews
WHERE recipient_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, q, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Review{}
	for rows.Next() {
		var rv entity.Review
		if err := rows.Scan(&rv.ID, &rv.ReviewerID, &rv.RecipientID, &rv.JobID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *ReviewRepository) Summary(ctx context.Context, recipientID uuid.UUID) (entity.RatingSummary, error) {
	const q = `
SELECT COALESCE(avg(rating), 0)::float8, count(*)
FROM reviews
WHERE recipient_id = $1;
`
	var s entity.RatingSummary
	err := r.pool.QueryRow(ctx, q, recipientID).Scan(&s.Average, &s.Count)
	return s, err
}
