package repository

import (
	"context"

	"gamebot-panel/internal/domain/model"
)

// ConnectionLogRepository is append-only; entries are never updated or deleted.
type ConnectionLogRepository interface {
	Append(ctx context.Context, tx Tx, e *model.ConnectionLog) error
	// RecentByUser returns the user's newest entries first, up to limit.
	RecentByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.ConnectionLog, error)
	Recent(ctx context.Context, tx Tx, limit int) ([]*model.ConnectionLog, error)
}

// SystemLogRepository is append-only; entries are never updated or deleted.
type SystemLogRepository interface {
	Append(ctx context.Context, tx Tx, e *model.SystemLog) error
	Recent(ctx context.Context, tx Tx, limit int) ([]*model.SystemLog, error)
}
