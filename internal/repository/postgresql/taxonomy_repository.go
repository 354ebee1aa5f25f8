package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

type TaxonomyRepository struct {
	pool *pgxpool.Pool
}

func NewTaxonomyRepository(pool *pgxpool.Pool) *TaxonomyRepository {
	return &TaxonomyRepository{pool: pool}
}

func (r *TaxonomyRepository) ListTerms(ctx context.Context, kind entity.TaxonomyKind) ([]entity.Term, error) {
	const q = `
SELECT id, kind, name
FROM taxonomy_terms
WHERE kind = $1
ORDER BY name;
`
	rows, err := r.pool.Query(ctx, q, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Term{}
	for rows.Next() {
		var (
			t entity.Term
			k string
		)
		if err := rows.Scan(&t.ID, &k, &t.Name); err != nil {
			return nil, err
		}
		t.Kind = entity.TaxonomyKind(k)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TaxonomyRepository) ListPagePrices(ctx context.Context) ([]entity.PagePrice, error) {
	rows, err := r.pool.Query(ctx, `SELECT amount FROM amount_per_page ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.PagePrice{}
	for rows.Next() {
		var p entity.PagePrice
		if err := rows.Scan(&p.Amount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
