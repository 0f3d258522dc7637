package repository

import (
	"context"

	"gamebot-panel/internal/domain/model"
)

// UserRepository is the port for panel account persistence.
type UserRepository interface {
	// Save inserts or updates a user.
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.User, error)
	// List returns all users, newest first.
	List(ctx context.Context, tx Tx) ([]*model.User, error)
	Count(ctx context.Context, tx Tx) (int, error)
}
