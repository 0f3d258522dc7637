package repository

import (
	"context"
	"time"

	"gamebot-panel/internal/domain/model"
)

// ExpiredGrant is one row flipped by ExpireDue, joined with the names the
// sweep needs for its audit entries.
type ExpiredGrant struct {
	ActivationID string
	UserID       string
	Username     string
	Code         string
}

// ActivationRepository is the port for redemption grants.
type ActivationRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Activation) error
	// LockCode serializes redemptions of one code for the duration of the
	// surrounding transaction. Callers must hold a transaction.
	LockCode(ctx context.Context, tx Tx, codeID string) error
	// CountActiveByCode counts grants with status 'active' for a code,
	// regardless of their expiry instant. This is the seat count.
	CountActiveByCode(ctx context.Context, tx Tx, codeID string) (int, error)
	// FindValidByUserAndCode finds an active, unexpired grant binding the
	// user to the code, or domain.ErrNotFound.
	FindValidByUserAndCode(ctx context.Context, tx Tx, userID, codeID string) (*model.Activation, error)
	// FindValidByUser finds any active, unexpired grant held by the user.
	FindValidByUser(ctx context.Context, tx Tx, userID string) (*model.Activation, error)
	CountByUser(ctx context.Context, tx Tx, userID string) (int, error)
	Count(ctx context.Context, tx Tx) (int, error)
	// Recent returns the newest grants first, up to limit.
	Recent(ctx context.Context, tx Tx, limit int) ([]*model.Activation, error)
	// ExpireDue flips every grant with status 'active' and expires_at <= now
	// to 'expired' and returns the affected rows. Running it again
	// immediately matches nothing.
	ExpireDue(ctx context.Context, tx Tx, now time.Time) ([]ExpiredGrant, error)
}
