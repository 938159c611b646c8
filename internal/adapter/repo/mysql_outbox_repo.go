package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// OutboxRow is a pending event awaiting publication.
type OutboxRow struct {
	ID         int64
	RoutingKey string
	Payload    json.RawMessage
	RetryCount int
}

// MySQLOutboxRepo is the relay side of the transactional outbox. Rows are
// written by MySQLOrderRepo.Save inside the save transaction; the relay
// fetches pending rows, publishes them, and marks the result here.
type MySQLOutboxRepo struct{ db *sql.DB }

func NewMySQLOutboxRepo(db *sql.DB) *MySQLOutboxRepo { return &MySQLOutboxRepo{db: db} }

func (r *MySQLOutboxRepo) FetchPending(ctx context.Context, limit int) ([]OutboxRow, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, routing_key, payload, retry_count
FROM outbox
WHERE status='PENDING' AND next_attempt_at <= NOW()
ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.RoutingKey, &row.Payload, &row.RetryCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *MySQLOutboxRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE outbox SET status='SENT', sent_at=NOW() WHERE id=?`, id)
	return err
}

// MarkFailed backs the next attempt off; delivery stays at-least-once.
func (r *MySQLOutboxRepo) MarkFailed(ctx context.Context, id int64, backoff time.Duration) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE outbox SET retry_count=retry_count+1, next_attempt_at=DATE_ADD(NOW(), INTERVAL ? SECOND)
WHERE id=?`, int(backoff.Seconds()), id)
	return err
}
