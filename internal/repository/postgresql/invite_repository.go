package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

type InviteRepository struct {
	pool *pgxpool.Pool
}

func NewInviteRepository(pool *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{pool: pool}
}

const inviteSelect = `
SELECT id, client_id, freelancer_id, job_id, message, sent_at, accepted, declined,
       declined_reason, viewed, viewed_at
FROM invites`

func scanInvite(row pgx.Row) (*entity.Invite, error) {
	var i entity.Invite
	if err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.FreelancerID,
		&i.JobID,
		&i.Message,
		&i.SentAt,
		&i.Accepted,
		&i.Declined,
		&i.DeclinedReason,
		&i.Viewed,
		&i.ViewedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &i, nil
}

func (r *InviteRepository) Create(ctx context.Context, i *entity.Invite) error {
	const q = `
INSERT INTO invites (client_id, freelancer_id, job_id, message, sent_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;
`
	return r.pool.QueryRow(ctx, q, i.ClientID, i.FreelancerID, i.JobID, i.Message, i.SentAt).Scan(&i.ID)
}

func (r *InviteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invite, error) {
	return scanInvite(r.pool.QueryRow(ctx, inviteSelect+"\nWHERE id = $1;", id))
}

func (r *InviteRepository) Update(ctx context.Context, i *entity.Invite) error {
	const q = `
UPDATE invites
SET message         = $2,
    accepted        = $3,
    declined        = $4,
    declined_reason = $5,
    viewed          = $6,
    viewed_at       = $7
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, q, i.ID, i.Message, i.Accepted, i.Declined, i.DeclinedReason, i.Viewed, i.ViewedAt)
	if err != nil {
		return err
	}
	return affected(tag)
}

// Find returns the most recent invite matching f.
func (r *InviteRepository) Find(ctx context.Context, f entity.InviteFilter) (*entity.Invite, error) {
	w := &where{}
	w.add("job_id = " + w.arg(f.JobID))
	if f.ClientID != nil {
		w.add("client_id = " + w.arg(*f.ClientID))
	}
	if f.FreelancerID != nil {
		w.add("freelancer_id = " + w.arg(*f.FreelancerID))
	}
	if f.Accepted != nil {
		w.add("accepted = " + w.arg(*f.Accepted))
	}
	if f.Declined != nil {
		w.add("declined = " + w.arg(*f.Declined))
	}
	q := inviteSelect + w.sql() + "\nORDER BY sent_at DESC\nLIMIT 1;"
	return scanInvite(r.pool.QueryRow(ctx, q, w.args...))
}
