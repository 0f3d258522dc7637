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
var _ repository.ActivationCodeRepository = (*activationCodeRepo)(nil)

type activationCodeRepo struct {
	pool *pgxpool.Pool
}

func NewActivationCodeRepo(pool *pgxpool.Pool) repository.ActivationCodeRepository {
	return &activationCodeRepo{pool: pool}
}

const codeColumns = `id, code, duration_days, max_users, creator_id, status, notes, created_at, expires_at`

// Save inserts a new code. Codes are never upserted: issuance retries on a
// collision instead, so a 23505 here must surface as ErrCodeExists.
func (r *activationCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.ActivationCode) error {
	const q = `
INSERT INTO activation_codes (id, code, duration_days, max_users, creator_id, status, notes, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.Code, c.DurationDays, c.MaxUsers, c.CreatorID, c.Status, c.Notes, c.CreatedAt, c.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeExists
		}
		return fmt.Errorf("postgres: saving activation code: %w", err)
	}
	return nil
}

func (r *activationCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ActivationCode, error) {
	const q = `SELECT ` + codeColumns + ` FROM activation_codes WHERE id = $1;`
	return r.queryOne(ctx, tx, q, id)
}

// FindActiveByCode is the lookup used during redemption: text match plus
// status filter, so deactivated codes read as not found.
func (r *activationCodeRepo) FindActiveByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error) {
	const q = `SELECT ` + codeColumns + ` FROM activation_codes WHERE code = $1 AND status = 'active';`
	return r.queryOne(ctx, tx, q, code)
}

func (r *activationCodeRepo) SetStatus(ctx context.Context, tx repository.Tx, id string, status model.CodeStatus) error {
	const q = `UPDATE activation_codes SET status = $2 WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, status)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *activationCodeRepo) List(ctx context.Context, tx repository.Tx) ([]*model.ActivationCode, error) {
	const q = `SELECT ` + codeColumns + ` FROM activation_codes ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.ActivationCode
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *activationCodeRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM activation_codes WHERE status = 'active';`
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

func (r *activationCodeRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.ActivationCode, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	c, err := scanCode(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func scanCode(row pgx.Row) (*model.ActivationCode, error) {
	var c model.ActivationCode
	err := row.Scan(&c.ID, &c.Code, &c.DurationDays, &c.MaxUsers, &c.CreatorID, &c.Status, &c.Notes, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
