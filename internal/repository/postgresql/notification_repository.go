package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

// NotificationRepository is also the outbox read by the push worker.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	const q = `
INSERT INTO notifications (user_id, title, message, url, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;
`
	return r.pool.QueryRow(ctx, q, n.UserID, n.Title, n.Message, n.URL, n.CreatedAt).Scan(&n.ID)
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	const q = `
SELECT id, user_id, title, message, url, is_read, created_at
FROM notifications
WHERE id = $1;
`
	var n entity.Notification
	if err := r.pool.QueryRow(ctx, q, id).Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.URL, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (r *NotificationRepository) ListUnread(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	const q = `
SELECT id, user_id, title, message, url, is_read, created_at
FROM notifications
WHERE user_id = $1 AND NOT is_read
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Notification{}
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.URL, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead only touches notifications owned by userID.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	const q = `
UPDATE notifications SET is_read = TRUE
WHERE user_id = $1 AND id = ANY($2::uuid[]);
`
	tag, err := r.pool.Exec(ctx, q, userID, uuidStrings(ids))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read;`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
