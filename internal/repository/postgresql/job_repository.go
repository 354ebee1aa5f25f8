package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

// Create inserts the job and its taxonomy links in one transaction.
// Term ids that do not belong to the declared kind are ignored.
func (r *JobRepository) Create(ctx context.Context, j *entity.Job) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `
INSERT INTO jobs (client_id, title, description, due_date, num_pages, words, project_cost,
                  assignment_topic, citation_style, page_abstract, printable_sources,
                  detailed_outline, paid)
VALUES ($1, $2, $3, $4, $5, $6, $7::text::numeric, $8, $9, $10, $11, $12, $13)
RETURNING id, created_at;
`
	if err := tx.QueryRow(ctx, q,
		j.ClientID,
		j.Title,
		j.Description,
		j.DueDate,
		j.NumPages,
		j.Words,
		j.ProjectCost,
		j.AssignmentTopic,
		j.CitationStyle,
		j.PageAbstract,
		j.PrintableSources,
		j.DetailedOutline,
		j.Paid,
	).Scan(&j.ID, &j.CreatedAt); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	const link = `
INSERT INTO job_terms (job_id, term_id)
SELECT $1, t.id FROM taxonomy_terms t
WHERE t.kind = $2 AND t.id = ANY($3::bigint[])
ON CONFLICT DO NOTHING;
`
	for kind, ids := range j.Taxonomy {
		if len(ids) == 0 {
			continue
		}
		if _, err := tx.Exec(ctx, link, j.ID, string(kind), ids); err != nil {
			return fmt.Errorf("link %s terms: %w", kind, err)
		}
	}

	if j.Taxonomy == nil {
		j.Taxonomy = entity.Taxonomy{}
	}
	return tx.Commit(ctx)
}

const jobSelect = `
SELECT j.id, j.client_id, j.title, j.description, j.due_date, j.num_pages, j.words,
       j.project_cost::text, j.assignment_topic, j.citation_style, j.page_abstract,
       j.printable_sources, j.detailed_outline, j.paid, j.created_at
FROM jobs j`

func scanJob(row pgx.Row) (entity.Job, error) {
	var j entity.Job
	err := row.Scan(
		&j.ID,
		&j.ClientID,
		&j.Title,
		&j.Description,
		&j.DueDate,
		&j.NumPages,
		&j.Words,
		&j.ProjectCost,
		&j.AssignmentTopic,
		&j.CitationStyle,
		&j.PageAbstract,
		&j.PrintableSources,
		&j.DetailedOutline,
		&j.Paid,
		&j.CreatedAt,
	)
	return j, err
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx, jobSelect+"\nWHERE j.id = $1;", id))
	if err != nil {
		return nil, notFound(err)
	}
	tax, err := r.taxonomy(ctx, []uuid.UUID{j.ID})
	if err != nil {
		return nil, err
	}
	j.Taxonomy = tax[j.ID]
	return &j, nil
}

// List returns matching jobs, newest first.
func (r *JobRepository) List(ctx context.Context, f entity.JobFilter) ([]entity.Job, error) {
	w := jobWhere(f)
	rows, err := r.pool.Query(ctx, jobSelect+w.sql()+"\nORDER BY j.created_at DESC;", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	tax, err := r.taxonomy(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Taxonomy = tax[out[i].ID]
	}
	return out, nil
}

func jobWhere(f entity.JobFilter) *where {
	w := &where{}
	if f.ClientID != nil {
		w.add("j.client_id = " + w.arg(*f.ClientID))
	}
	if f.TitleQuery != "" {
		w.add("j.title ILIKE '%' || " + w.arg(f.TitleQuery) + " || '%'")
	}
	if f.Text != "" {
		p := w.arg(f.Text)
		w.add(`(j.title ILIKE '%' || ` + p + ` || '%'
       OR j.description ILIKE '%' || ` + p + ` || '%'
       OR EXISTS (SELECT 1 FROM job_terms jt JOIN taxonomy_terms t ON t.id = jt.term_id
                  WHERE jt.job_id = j.id AND t.kind IN ('skill', 'expertise')
                    AND t.name ILIKE '%' || ` + p + ` || '%'))`)
	}
	if f.ExcludeHired {
		w.add("NOT EXISTS (SELECT 1 FROM hired_freelancers h WHERE h.job_id = j.id)")
	}
	if f.ExcludeStarted {
		w.add("NOT EXISTS (SELECT 1 FROM hired_freelancers h WHERE h.job_id = j.id AND h.state <> 'not_started')")
	}
	if f.ExcludeProposedBy != nil {
		w.add("NOT EXISTS (SELECT 1 FROM proposals p WHERE p.job_id = j.id AND p.freelancer_id = " + w.arg(*f.ExcludeProposedBy) + ")")
	}
	if f.ExcludeInvitedFor != nil {
		w.add("NOT EXISTS (SELECT 1 FROM invites i WHERE i.job_id = j.id AND NOT i.declined AND i.freelancer_id = " + w.arg(*f.ExcludeInvitedFor) + ")")
	}
	if f.InvitedFor != nil {
		w.add("EXISTS (SELECT 1 FROM invites i WHERE i.job_id = j.id AND NOT i.declined AND i.freelancer_id = " + w.arg(*f.InvitedFor) + ")")
	}
	if f.HasProposals {
		w.add("EXISTS (SELECT 1 FROM proposals p WHERE p.job_id = j.id)")
	}
	if f.HasInvites {
		w.add("EXISTS (SELECT 1 FROM invites i WHERE i.job_id = j.id)")
	}
	if len(f.EngagementStates) > 0 {
		states := make([]string, len(f.EngagementStates))
		for i, s := range f.EngagementStates {
			states[i] = string(s)
		}
		w.add("EXISTS (SELECT 1 FROM hired_freelancers h WHERE h.job_id = j.id AND h.state = ANY(" + w.arg(states) + "::text[]))")
	}
	if f.MatchTaxonomy != nil {
		for _, kind := range entity.MatchingKinds {
			ids := f.MatchTaxonomy[kind]
			if len(ids) == 0 {
				w.add("FALSE")
				continue
			}
			w.add(`EXISTS (SELECT 1 FROM job_terms jt JOIN taxonomy_terms t ON t.id = jt.term_id
               WHERE jt.job_id = j.id AND t.kind = ` + w.arg(string(kind)) + `
                 AND jt.term_id = ANY(` + w.arg(ids) + `::bigint[]))`)
		}
	}
	return w
}

// taxonomy loads term links for the given jobs. Every requested id gets a non-nil map.
func (r *JobRepository) taxonomy(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.Taxonomy, error) {
	const q = `
SELECT jt.job_id, t.kind, t.id
FROM job_terms jt
JOIN taxonomy_terms t ON t.id = jt.term_id
WHERE jt.job_id = ANY($1::uuid[])
ORDER BY t.id;
`
	out := make(map[uuid.UUID]entity.Taxonomy, len(ids))
	for _, id := range ids {
		out[id] = entity.Taxonomy{}
	}

	rows, err := r.pool.Query(ctx, q, uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			jobID uuid.UUID
			kind  string
			term  int64
		)
		if err := rows.Scan(&jobID, &kind, &term); err != nil {
			return nil, err
		}
		k := entity.TaxonomyKind(kind)
		out[jobID][k] = append(out[jobID][k], term)
	}
	return out, rows.Err()
}

func (r *JobRepository) CountsForClient(ctx context.Context, clientID uuid.UUID) (entity.JobCounts, error) {
	const q = `
SELECT
    (SELECT count(*) FROM proposals p JOIN jobs j ON j.id = p.job_id WHERE j.client_id = $1),
    (SELECT count(*) FROM hired_freelancers h JOIN jobs j ON j.id = h.job_id
      WHERE j.client_id = $1 AND h.state = 'completed'),
    (SELECT count(*) FROM hired_freelancers h JOIN jobs j ON j.id = h.job_id
      WHERE j.client_id = $1 AND h.state IN ('started', 'submitted', 'revision_requested')),
    (SELECT count(*) FROM jobs WHERE client_id = $1),
    (SELECT count(*) FROM invites i JOIN jobs j ON j.id = i.job_id WHERE j.client_id = $1);
`
	var c entity.JobCounts
	err := r.pool.QueryRow(ctx, q, clientID).Scan(
		&c.Proposals,
		&c.Completed,
		&c.InProgress,
		&c.All,
		&c.Invites,
	)
	return c, err
}
