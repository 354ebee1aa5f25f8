package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

// SubmissionRepository stores deliverables, revisions and revision reasons.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

func (r *SubmissionRepository) CreateSubmission(ctx context.Context, s *entity.JobSubmission) error {
	const q = `
INSERT INTO job_submissions (job_id, freelancer_id, files, notes, satisfied, need_revision, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id;
`
	if s.Files == nil {
		s.Files = []string{}
	}
	return r.pool.QueryRow(ctx, q,
		s.JobID, s.FreelancerID, s.Files, s.Notes, s.Satisfied, s.NeedRevision, s.SubmittedAt,
	).Scan(&s.ID)
}

const submissionSelect = `
SELECT id, job_id, freelancer_id, files, notes, satisfied, need_revision, submitted_at
FROM job_submissions`

func (r *SubmissionRepository) ListSubmissions(ctx context.Context, jobID uuid.UUID) ([]entity.JobSubmission, error) {
	rows, err := r.pool.Query(ctx, submissionSelect+"\nWHERE job_id = $1\nORDER BY submitted_at;", jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.JobSubmission{}
	for rows.Next() {
		var s entity.JobSubmission
		if err := rows.Scan(&s.ID, &s.JobID, &s.FreelancerID, &s.Files, &s.Notes, &s.Satisfied, &s.NeedRevision, &s.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LatestSubmission returns the newest submission for the job, optionally only freelancerID's.
func (r *SubmissionRepository) LatestSubmission(ctx context.Context, jobID uuid.UUID, freelancerID *uuid.UUID) (*entity.JobSubmission, error) {
	q := submissionSelect + `
WHERE job_id = $1 AND ($2::uuid IS NULL OR freelancer_id = $2)
ORDER BY submitted_at DESC
LIMIT 1;
`
	var s entity.JobSubmission
	if err := r.pool.QueryRow(ctx, q, jobID, freelancerID).Scan(
		&s.ID, &s.JobID, &s.FreelancerID, &s.Files, &s.Notes, &s.Satisfied, &s.NeedRevision, &s.SubmittedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *SubmissionRepository) MarkAllSatisfied(ctx context.Context, jobID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE job_submissions SET satisfied = TRUE WHERE job_id = $1;`, jobID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *SubmissionRepository) SetNeedRevision(ctx context.Context, submissionID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE job_submissions SET need_revision = TRUE WHERE id = $1;`, submissionID)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *SubmissionRepository) CreateRevision(ctx context.Context, rev *entity.Revision) error {
	const q = `
INSERT INTO revisions (job_id, freelancer_id, files, notes, submitted_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;
`
	if rev.Files == nil {
		rev.Files = []string{}
	}
	return r.pool.QueryRow(ctx, q, rev.JobID, rev.FreelancerID, rev.Files, rev.Notes, rev.SubmittedAt).Scan(&rev.ID)
}

func (r *SubmissionRepository) ListRevisions(ctx context.Context, jobID uuid.UUID) ([]entity.Revision, error) {
	const q = `
SELECT id, job_id, freelancer_id, files, notes, submitted_at
FROM revisions
WHERE job_id = $1
ORDER BY submitted_at;
`
	rows, err := r.pool.Query(ctx, q, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Revision{}
	for rows.Next() {
		var rev entity.Revision
		if err := rows.Scan(&rev.ID, &rev.JobID, &rev.FreelancerID, &rev.Files, &rev.Notes, &rev.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (r *SubmissionRepository) CreateRevisionReason(ctx context.Context, rr *entity.RevisionReason) error {
	const q = `
INSERT INTO revision_reasons (job_id, reason, created_at)
VALUES ($1, $2, $3)
RETURNING id;
`
	return r.pool.QueryRow(ctx, q, rr.JobID, rr.Reason, rr.CreatedAt).Scan(&rr.ID)
}

func (r *SubmissionRepository) LatestRevisionReason(ctx context.Context, jobID uuid.UUID) (*entity.RevisionReason, error) {
	const q = `
SELECT id, job_id, reason, created_at
FROM revision_reasons
WHERE job_id = $1
ORDER BY created_at DESC
LIMIT 1;
`
	var rr entity.RevisionReason
	if err := r.pool.QueryRow(ctx, q, jobID).Scan(&rr.ID, &rr.JobID, &rr.Reason, &rr.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &rr, nil
}
