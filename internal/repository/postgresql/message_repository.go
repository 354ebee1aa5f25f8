package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-service/internal/entity"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, m *entity.Message) error {
	const q = `
INSERT INTO messages (sender_id, receiver_id, text, files, sent_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;
`
	if m.Files == nil {
		m.Files = []string{}
	}
	return r.pool.QueryRow(ctx, q, m.SenderID, m.ReceiverID, m.Text, m.Files, m.SentAt).Scan(&m.ID)
}

func scanMessage(row pgx.Row, m *entity.Message) error {
	return row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Files, &m.IsRead, &m.SentAt)
}

// Thread returns both directions of the conversation between a and b, oldest first.
func (r *MessageRepository) Thread(ctx context.Context, a, b uuid.UUID) ([]entity.Message, error) {
	const q = `
SELECT id, sender_id, receiver_id, text, files, is_read, sent_at
FROM messages
WHERE (sender_id = $1 AND receiver_id = $2)
   OR (sender_id = $2 AND receiver_id = $1)
ORDER BY sent_at;
`
	rows, err := r.pool.Query(ctx, q, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Message{}
	for rows.Next() {
		var m entity.Message
		if err := scanMessage(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MessageRepository) MarkThreadRead(ctx context.Context, sender, receiver uuid.UUID) (int64, error) {
	const q = `
UPDATE messages SET is_read = TRUE
WHERE sender_id = $1 AND receiver_id = $2 AND NOT is_read;
`
	tag, err := r.pool.Exec(ctx, q, sender, receiver)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Conversations lists one row per counterpart with the latest message, most recent first.
func (r *MessageRepository) Conversations(ctx context.Context, userID uuid.UUID) ([]entity.Conversation, error) {
	const q = `
-- DISTINCT ON needs partner_id first in ORDER BY, the outer query re-sorts by time
WITH mine AS (
    SELECT m.*,
           CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS partner_id
    FROM messages m
    WHERE m.sender_id = $1 OR m.receiver_id = $1
)
SELECT * FROM (
    SELECT DISTINCT ON (partner_id)
           partner_id, id, sender_id, receiver_id, text, files, is_read, sent_at,
           (SELECT count(*) FROM messages u
             WHERE u.sender_id = mine.partner_id AND u.receiver_id = $1 AND NOT u.is_read) AS unread
    FROM mine
    ORDER BY partner_id, sent_at DESC
) latest
ORDER BY sent_at DESC;
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Conversation{}
	for rows.Next() {
		var c entity.Conversation
		m := &c.LastMessage
		if err := rows.Scan(&c.PartnerID, &m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Files, &m.IsRead, &m.SentAt, &c.UnreadCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *MessageRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM messages WHERE receiver_id = $1 AND NOT is_read;`, userID).Scan(&n)
	return n, err
}
