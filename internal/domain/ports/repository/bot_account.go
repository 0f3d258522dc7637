package repository

import (
	"context"

	"gamebot-panel/internal/domain/model"
)

// BotAccountRepository is the port for per-user game account records.
type BotAccountRepository interface {
	Save(ctx context.Context, tx Tx, b *model.BotAccount) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.BotAccount, error)
	// ListByUser returns the owner's bots, newest first.
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.BotAccount, error)
	Delete(ctx context.Context, tx Tx, id string) error
	CountByUser(ctx context.Context, tx Tx, userID string, status model.BotStatus) (int, error)
	Count(ctx context.Context, tx Tx) (int, error)
}
