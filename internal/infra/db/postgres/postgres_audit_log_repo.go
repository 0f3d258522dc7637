package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"gamebot-panel/internal/domain"
	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/domain/ports/repository"
)

// The log tables are append-only; there are no UPDATE or DELETE statements
// in this file on purpose.

var _ repository.ConnectionLogRepository = (*connectionLogRepo)(nil)

type connectionLogRepo struct {
	pool *pgxpool.Pool
}

func NewConnectionLogRepo(pool *pgxpool.Pool) repository.ConnectionLogRepository {
	return &connectionLogRepo{pool: pool}
}

func (r *connectionLogRepo) Append(ctx context.Context, tx repository.Tx, e *model.ConnectionLog) error {
	const q = `
INSERT INTO connection_logs (id, user_id, ip_address, action, details, ts)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.UserID, e.IPAddress, e.Action, e.Details, e.Timestamp)
	if err != nil {
		return fmt.Errorf("postgres: appending connection log: %w", err)
	}
	return nil
}

func (r *connectionLogRepo) RecentByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.ConnectionLog, error) {
	const q = `
SELECT id, user_id, ip_address, action, details, ts
  FROM connection_logs
 WHERE user_id = $1
 ORDER BY ts DESC
 LIMIT $2;`
	return r.query(ctx, tx, q, userID, limit)
}

func (r *connectionLogRepo) Recent(ctx context.Context, tx repository.Tx, limit int) ([]*model.ConnectionLog, error) {
	const q = `
SELECT id, user_id, ip_address, action, details, ts
  FROM connection_logs
 ORDER BY ts DESC
 LIMIT $1;`
	return r.query(ctx, tx, q, limit)
}

func (r *connectionLogRepo) query(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.ConnectionLog, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.ConnectionLog
	for rows.Next() {
		var e model.ConnectionLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.IPAddress, &e.Action, &e.Details, &e.Timestamp); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

var _ repository.SystemLogRepository = (*systemLogRepo)(nil)

type systemLogRepo struct {
	pool *pgxpool.Pool
}

func NewSystemLogRepo(pool *pgxpool.Pool) repository.SystemLogRepository {
	return &systemLogRepo{pool: pool}
}

func (r *systemLogRepo) Append(ctx context.Context, tx repository.Tx, e *model.SystemLog) error {
	const q = `
INSERT INTO system_logs (id, log_type, message, details, ts)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.LogType, e.Message, e.Details, e.Timestamp)
	if err != nil {
		return fmt.Errorf("postgres: appending system log: %w", err)
	}
	return nil
}

func (r *systemLogRepo) Recent(ctx context.Context, tx repository.Tx, limit int) ([]*model.SystemLog, error) {
	const q = `
SELECT id, log_type, message, details, ts
  FROM system_logs
 ORDER BY ts DESC
 LIMIT $1;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.SystemLog
	for rows.Next() {
		var e model.SystemLog
		if err := rows.Scan(&e.ID, &e.LogType, &e.Message, &e.Details, &e.Timestamp); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
