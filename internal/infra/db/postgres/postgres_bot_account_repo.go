package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gamebot-panel/internal/domain"
	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.BotAccountRepository = (*botAccountRepo)(nil)

type botAccountRepo struct {
	pool *pgxpool.Pool
}

func NewBotAccountRepo(pool *pgxpool.Pool) repository.BotAccountRepository {
	return &botAccountRepo{pool: pool}
}

const botColumns = `id, user_id, uid, password, nickname, status, created_at, last_activity_at, connection_data`

func (r *botAccountRepo) Save(ctx context.Context, tx repository.Tx, b *model.BotAccount) error {
	const q = `
INSERT INTO bot_accounts (id, user_id, uid, password, nickname, status, created_at, last_activity_at, connection_data)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  password         = EXCLUDED.password,
  nickname         = EXCLUDED.nickname,
  status           = EXCLUDED.status,
  last_activity_at = EXCLUDED.last_activity_at,
  connection_data  = EXCLUDED.connection_data;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		b.ID, b.UserID, b.UID, b.Password, b.Nickname, b.Status, b.CreatedAt, b.LastActivityAt, b.ConnectionData,
	)
	if err != nil {
		return fmt.Errorf("postgres: saving bot account: %w", err)
	}
	return nil
}

func (r *botAccountRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.BotAccount, error) {
	const q = `SELECT ` + botColumns + ` FROM bot_accounts WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	b, err := scanBot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return b, nil
}

func (r *botAccountRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.BotAccount, error) {
	const q = `SELECT ` + botColumns + ` FROM bot_accounts WHERE user_id = $1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.BotAccount
	for rows.Next() {
		b, err := scanBot(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

// Delete removes the record. Bot accounts are the one entity the panel hard
// deletes; everything else is soft-disabled.
func (r *botAccountRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM bot_accounts WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *botAccountRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string, status model.BotStatus) (int, error) {
	var (
		q    string
		args []interface{}
	)
	if status == "" {
		q = `SELECT COUNT(*) FROM bot_accounts WHERE user_id = $1;`
		args = []interface{}{userID}
	} else {
		q = `SELECT COUNT(*) FROM bot_accounts WHERE user_id = $1 AND status = $2;`
		args = []interface{}{userID, status}
	}
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *botAccountRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM bot_accounts;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func scanBot(row pgx.Row) (*model.BotAccount, error) {
	var b model.BotAccount
	err := row.Scan(&b.ID, &b.UserID, &b.UID, &b.Password, &b.Nickname, &b.Status, &b.CreatedAt, &b.LastActivityAt, &b.ConnectionData)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
