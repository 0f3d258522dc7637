package postgres

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gamebot-panel/internal/domain"
	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.ActivationRepository = (*activationRepo)(nil)

type activationRepo struct {
	pool *pgxpool.Pool
}

func NewActivationRepo(pool *pgxpool.Pool) repository.ActivationRepository {
	return &activationRepo{pool: pool}
}

const activationColumns = `id, user_id, code_id, activated_at, expires_at, status`

func (r *activationRepo) Save(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	const q = `
INSERT INTO activations (id, user_id, code_id, activated_at, expires_at, status)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status;
`
	_, err := execSQL(ctx, r.pool, tx, q, a.ID, a.UserID, a.CodeID, a.ActivatedAt, a.ExpiresAt, a.Status)
	if err != nil {
		return fmt.Errorf("postgres: saving activation: %w", err)
	}
	return nil
}

func hashToInt64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() & ((1 << 63) - 1))
}

// LockCode takes a transaction-scoped advisory lock keyed by the code ID.
// Concurrent redemptions of the same code queue up here, which makes the
// seat count check and the subsequent insert one critical section.
func (r *activationRepo) LockCode(ctx context.Context, tx repository.Tx, codeID string) error {
	if tx == nil {
		return domain.ErrInvalidExecContext
	}
	_, err := execSQL(ctx, r.pool, tx, "SELECT pg_advisory_xact_lock($1)", hashToInt64(codeID))
	return err
}

func (r *activationRepo) CountActiveByCode(ctx context.Context, tx repository.Tx, codeID string) (int, error) {
	const q = `SELECT COUNT(*) FROM activations WHERE code_id = $1 AND status = 'active';`
	return r.scanCount(ctx, tx, q, codeID)
}

func (r *activationRepo) FindValidByUserAndCode(ctx context.Context, tx repository.Tx, userID, codeID string) (*model.Activation, error) {
	const q = `
SELECT ` + activationColumns + `
  FROM activations
 WHERE user_id = $1 AND code_id = $2 AND status = 'active' AND expires_at > NOW()
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, userID, codeID)
}

func (r *activationRepo) FindValidByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Activation, error) {
	const q = `
SELECT ` + activationColumns + `
  FROM activations
 WHERE user_id = $1 AND status = 'active' AND expires_at > NOW()
 ORDER BY expires_at DESC
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, userID)
}

func (r *activationRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM activations WHERE user_id = $1;`
	return r.scanCount(ctx, tx, q, userID)
}

func (r *activationRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM activations;`
	return r.scanCount(ctx, tx, q)
}

func (r *activationRepo) Recent(ctx context.Context, tx repository.Tx, limit int) ([]*model.Activation, error) {
	const q = `SELECT ` + activationColumns + ` FROM activations ORDER BY activated_at DESC LIMIT $1;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Activation
	for rows.Next() {
		a, err := scanActivation(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

// ExpireDue flips all due grants in one statement and returns them joined
// with the usernames and code texts the sweep logs. Rows already expired
// do not match the WHERE clause, so re-running is a no-op.
func (r *activationRepo) ExpireDue(ctx context.Context, tx repository.Tx, now time.Time) ([]repository.ExpiredGrant, error) {
	const q = `
UPDATE activations a
   SET status = 'expired'
  FROM users u, activation_codes c
 WHERE a.user_id = u.id
   AND a.code_id = c.id
   AND a.status = 'active'
   AND a.expires_at <= $1
RETURNING a.id, u.id, u.username, c.code;`
	rows, err := queryRows(ctx, r.pool, tx, q, now)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []repository.ExpiredGrant
	for rows.Next() {
		var g repository.ExpiredGrant
		if err := rows.Scan(&g.ActivationID, &g.UserID, &g.Username, &g.Code); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *activationRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Activation, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	a, err := scanActivation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return a, nil
}

func (r *activationRepo) scanCount(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (int, error) {
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

func scanActivation(row pgx.Row) (*model.Activation, error) {
	var a model.Activation
	err := row.Scan(&a.ID, &a.UserID, &a.CodeID, &a.ActivatedAt, &a.ExpiresAt, &a.Status)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
