package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

// PaymentRepository covers transactions, wallets and saved payment methods.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) CreateTransaction(ctx context.Context, t *entity.Transaction) error {
	const q = `
INSERT INTO transactions (user_id, job_id, invoice_id, amount, method, status, draft)
VALUES ($1, $2, $3, $4::text::numeric, $5, $6, $7)
RETURNING id, created_at, updated_at;
`
	var draft []byte
	if len(t.Draft) > 0 {
		draft = t.Draft
	}
	return r.pool.QueryRow(ctx, q,
		t.UserID, t.JobID, t.InvoiceID, t.Amount, string(t.Method), string(t.Status), draft,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

const transactionSelect = `
SELECT id, user_id, job_id, invoice_id, amount::text, method, status, draft, created_at, updated_at
FROM transactions`

func scanTransaction(row pgx.Row) (entity.Transaction, error) {
	var (
		t              entity.Transaction
		method, status string
		draft          []byte
	)
	err := row.Scan(&t.ID, &t.UserID, &t.JobID, &t.InvoiceID, &t.Amount, &method, &status, &draft, &t.CreatedAt, &t.UpdatedAt)
	t.Method = entity.PaymentMethod(method)
	t.Status = entity.TransactionStatus(status)
	t.Draft = draft
	return t, err
}

func (r *PaymentRepository) GetTransactionByInvoice(ctx context.Context, invoiceID string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx, transactionSelect+"\nWHERE invoice_id = $1;", invoiceID))
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *PaymentRepository) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status entity.TransactionStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE transactions SET status = $2, updated_at = now() WHERE id = $1;`, id, string(status))
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *PaymentRepository) LinkTransactionJob(ctx context.Context, id, jobID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE transactions SET job_id = $2, updated_at = now() WHERE id = $1;`, id, jobID)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *PaymentRepository) ListTransactions(ctx context.Context, userID uuid.UUID) ([]entity.Transaction, error) {
	rows, err := r.pool.Query(ctx, transactionSelect+"\nWHERE user_id = $1\nORDER BY created_at DESC;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PaymentRepository) GetWallet(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	var w entity.Wallet
	if err := r.pool.QueryRow(ctx, `SELECT user_id, balance::text FROM wallets WHERE user_id = $1;`, userID).
		Scan(&w.UserID, &w.Balance); err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

// CreateMpesa is idempotent per (user, phone): re-linking returns the existing row.
func (r *PaymentRepository) CreateMpesa(ctx context.Context, a *entity.MpesaAccount) error {
	const q = `
INSERT INTO mpesa_accounts (user_id, phone_number)
VALUES ($1, $2)
ON CONFLICT (user_id, phone_number) DO UPDATE SET phone_number = EXCLUDED.phone_number
RETURNING id, created_at;
`
	return r.pool.QueryRow(ctx, q, a.UserID, a.PhoneNumber).Scan(&a.ID, &a.CreatedAt)
}

func (r *PaymentRepository) ListMpesa(ctx context.Context, userID uuid.UUID) ([]entity.MpesaAccount, error) {
	const q = `
SELECT id, user_id, phone_number, created_at
FROM mpesa_accounts
WHERE user_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.MpesaAccount{}
	for rows.Next() {
		var a entity.MpesaAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.PhoneNumber, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PaymentRepository) FindMpesa(ctx context.Context, userID uuid.UUID, phone string) (*entity.MpesaAccount, error) {
	const q = `
SELECT id, user_id, phone_number, created_at
FROM mpesa_accounts
WHERE user_id = $1 AND phone_number = $2;
`
	var a entity.MpesaAccount
	if err := r.pool.QueryRow(ctx, q, userID, phone).Scan(&a.ID, &a.UserID, &a.PhoneNumber, &a.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *PaymentRepository) DeleteMpesa(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM mpesa_accounts WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *PaymentRepository) CreatePayPal(ctx context.Context, a *entity.PayPalAccount) error {
	const q = `
INSERT INTO paypal_accounts (user_id, email)
VALUES ($1, $2)
RETURNING id, created_at;
`
	return r.pool.QueryRow(ctx, q, a.UserID, a.Email).Scan(&a.ID, &a.CreatedAt)
}

func (r *PaymentRepository) ListPayPal(ctx context.Context, userID uuid.UUID) ([]entity.PayPalAccount, error) {
	const q = `
SELECT id, user_id, email, created_at
FROM paypal_accounts
WHERE user_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.PayPalAccount{}
	for rows.Next() {
		var a entity.PayPalAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.Email, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PaymentRepository) DeletePayPal(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM paypal_accounts WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *PaymentRepository) CreateCard(ctx context.Context, c *entity.Card) error {
	const q = `
INSERT INTO cards (user_id, cardholder_name, last4, expiration_date, card_type)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at;
`
	return r.pool.QueryRow(ctx, q, c.UserID, c.CardholderName, c.Last4, c.ExpirationDate, c.CardType).
		Scan(&c.ID, &c.CreatedAt)
}

const cardSelect = `
SELECT id, user_id, cardholder_name, last4, expiration_date, card_type, created_at
FROM cards`

func scanCard(row pgx.Row) (entity.Card, error) {
	var c entity.Card
	err := row.Scan(&c.ID, &c.UserID, &c.CardholderName, &c.Last4, &c.ExpirationDate, &c.CardType, &c.CreatedAt)
	return c, err
}

func (r *PaymentRepository) ListCards(ctx context.Context, userID uuid.UUID) ([]entity.Card, error) {
	rows, err := r.pool.Query(ctx, cardSelect+"\nWHERE user_id = $1\nORDER BY created_at DESC;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PaymentRepository) GetCard(ctx context.Context, userID, id uuid.UUID) (*entity.Card, error) {
	c, err := scanCard(r.pool.QueryRow(ctx, cardSelect+"\nWHERE id = $1 AND user_id = $2;", id, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *PaymentRepository) DeleteCard(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return err
	}
	return affected(tag)
}
