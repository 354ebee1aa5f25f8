package postgresql

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

type ProposalRepository struct {
	pool *pgxpool.Pool
}

func NewProposalRepository(pool *pgxpool.Pool) *ProposalRepository {
	return &ProposalRepository{pool: pool}
}

const proposalColumns = `id, freelancer_id, job_id, cover_letter, bid_amount::text, files,
       viewed, viewed_at, accepted, declined, submitted_at`

func scanProposal(row pgx.Row) (entity.Proposal, error) {
	var p entity.Proposal
	err := row.Scan(
		&p.ID,
		&p.FreelancerID,
		&p.JobID,
		&p.CoverLetter,
		&p.BidAmount,
		&p.Files,
		&p.Viewed,
		&p.ViewedAt,
		&p.Accepted,
		&p.Declined,
		&p.SubmittedAt,
	)
	return p, err
}

func collectProposals(rows pgx.Rows) ([]entity.Proposal, error) {
	defer rows.Close()
	out := []entity.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProposalRepository) Create(ctx context.Context, p *entity.Proposal) error {
	const q = `
INSERT INTO proposals (freelancer_id, job_id, cover_letter, bid_amount, files, submitted_at)
VALUES ($1, $2, $3, $4::text::numeric, $5, $6)
RETURNING id;
`
	if p.Files == nil {
		p.Files = []string{}
	}
	return r.pool.QueryRow(ctx, q,
		p.FreelancerID, p.JobID, p.CoverLetter, p.BidAmount, p.Files, p.SubmittedAt,
	).Scan(&p.ID)
}

func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	p, err := scanProposal(r.pool.QueryRow(ctx, "SELECT "+proposalColumns+"\nFROM proposals WHERE id = $1;", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProposalRepository) Update(ctx context.Context, p *entity.Proposal) error {
	const q = `
UPDATE proposals
SET cover_letter = $2,
    bid_amount   = $3::text::numeric,
    files        = $4,
    viewed       = $5,
    viewed_at    = $6,
    accepted     = $7,
    declined     = $8
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, q,
		p.ID, p.CoverLetter, p.BidAmount, p.Files, p.Viewed, p.ViewedAt, p.Accepted, p.Declined,
	)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *ProposalRepository) MarkViewed(ctx context.Context, id uuid.UUID, at time.Time) (*entity.Proposal, error) {
	q := `
UPDATE proposals
SET viewed    = TRUE,
    viewed_at = COALESCE(viewed_at, $2)
WHERE id = $1
RETURNING ` + proposalColumns + ";"
	p, err := scanProposal(r.pool.QueryRow(ctx, q, id, at))
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM proposals WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *ProposalRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Proposal, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+proposalColumns+"\nFROM proposals WHERE job_id = $1 ORDER BY submitted_at;", jobID)
	if err != nil {
		return nil, err
	}
	return collectProposals(rows)
}

func (r *ProposalRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, excludeStarted bool) ([]entity.Proposal, error) {
	q := "SELECT " + proposalColumns + "\nFROM proposals p WHERE p.freelancer_id = $1"
	if excludeStarted {
		q += `
  AND NOT EXISTS (SELECT 1 FROM hired_freelancers h
                  WHERE h.job_id = p.job_id AND h.freelancer_id = p.freelancer_id
                    AND h.state <> 'not_started')`
	}
	rows, err := r.pool.Query(ctx, q+"\nORDER BY p.submitted_at;", freelancerID)
	if err != nil {
		return nil, err
	}
	return collectProposals(rows)
}

func (r *ProposalRepository) Withdraw(ctx context.Context, d *entity.DeclinedJob) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM proposals WHERE id = $1;`, d.ProposalID)
	if err != nil {
		return err
	}
	if err := affected(tag); err != nil {
		return err
	}

	const q = `
INSERT INTO declined_jobs (freelancer_id, proposal_id, job_id, reason, declined_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;
`
	if err := tx.QueryRow(ctx, q, d.FreelancerID, d.ProposalID, d.JobID, d.Reason, d.DeclinedAt).Scan(&d.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
