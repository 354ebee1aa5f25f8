package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

const (
	constraintHiredJob   = "hired_freelancers_job_key"
	constraintHiredOrder = "hired_freelancers_order_key"

	// order ids are random; a collision just draws again
	orderIDAttempts = 5
)

type HiredFreelancerRepository struct {
	pool *pgxpool.Pool
}

func NewHiredFreelancerRepository(pool *pgxpool.Pool) *HiredFreelancerRepository {
	return &HiredFreelancerRepository{pool: pool}
}

func (r *HiredFreelancerRepository) Create(ctx context.Context, h *entity.HiredFreelancer) error {
	const q = `
INSERT INTO hired_freelancers (freelancer_id, job_id, order_id, state, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id;
`
	if h.OrderID == 0 {
		h.OrderID = entity.NewOrderID()
	}
	for attempt := 1; ; attempt++ {
		err := r.pool.QueryRow(ctx, q,
			h.FreelancerID, h.JobID, h.OrderID, string(h.State), h.StartedAt, h.FinishedAt,
		).Scan(&h.ID)
		switch {
		case err == nil:
			return nil
		case isUniqueViolation(err, constraintHiredJob):
			return entity.ErrAlreadyHired
		case isUniqueViolation(err, constraintHiredOrder) && attempt < orderIDAttempts:
			h.OrderID = entity.NewOrderID()
		default:
			return fmt.Errorf("insert hired freelancer: %w", err)
		}
	}
}

func scanHired(row pgx.Row) (*entity.HiredFreelancer, error) {
	var (
		h     entity.HiredFreelancer
		state string
	)
	if err := row.Scan(&h.ID, &h.FreelancerID, &h.JobID, &h.OrderID, &state, &h.StartedAt, &h.FinishedAt); err != nil {
		return nil, err
	}
	h.State = entity.EngagementState(state)
	return &h, nil
}

func (r *HiredFreelancerRepository) GetByJob(ctx context.Context, jobID uuid.UUID) (*entity.HiredFreelancer, error) {
	const q = `
SELECT id, freelancer_id, job_id, order_id, state, started_at, finished_at
FROM hired_freelancers
WHERE job_id = $1;
`
	h, err := scanHired(r.pool.QueryRow(ctx, q, jobID))
	if err != nil {
		return nil, notFound(err)
	}
	return h, nil
}

// Save writes h back only while the row is still in state from.
func (r *HiredFreelancerRepository) Save(ctx context.Context, h *entity.HiredFreelancer, from entity.EngagementState) error {
	const q = `
UPDATE hired_freelancers
SET state       = $3,
    started_at  = $4,
    finished_at = $5
WHERE id = $1 AND state = $2;
`
	tag, err := r.pool.Exec(ctx, q, h.ID, string(from), string(h.State), h.StartedAt, h.FinishedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// ничего не обновили: либо строки нет, либо состояние уже другое
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM hired_freelancers WHERE id = $1);`, h.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return entity.ErrStateConflict
}

func (r *HiredFreelancerRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, states []entity.EngagementState) ([]entity.HiredFreelancer, error) {
	w := &where{}
	w.add("freelancer_id = " + w.arg(freelancerID))
	if len(states) > 0 {
		ss := make([]string, len(states))
		for i, s := range states {
			ss[i] = string(s)
		}
		w.add("state = ANY(" + w.arg(ss) + "::text[])")
	}
	q := `
SELECT id, freelancer_id, job_id, order_id, state, started_at, finished_at
FROM hired_freelancers` + w.sql() + "\nORDER BY started_at DESC;"

	rows, err := r.pool.Query(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.HiredFreelancer{}
	for rows.Next() {
		h, err := scanHired(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}
