package repository

import (
	"context"

	"gamebot-panel/internal/domain/model"
)

// ActivationCodeRepository is the port for managing activation codes.
type ActivationCodeRepository interface {
	// Save inserts a new code. Returns domain.ErrCodeExists when the code
	// string collides with an already issued one.
	Save(ctx context.Context, tx Tx, code *model.ActivationCode) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ActivationCode, error)
	// FindActiveByCode finds a code by its normalized text, status 'active' only.
	FindActiveByCode(ctx context.Context, tx Tx, code string) (*model.ActivationCode, error)
	// SetStatus updates the lifecycle status regardless of prior state.
	SetStatus(ctx context.Context, tx Tx, id string, status model.CodeStatus) error
	// List returns all codes, newest first.
	List(ctx context.Context, tx Tx) ([]*model.ActivationCode, error)
	CountActive(ctx context.Context, tx Tx) (int, error)
}
