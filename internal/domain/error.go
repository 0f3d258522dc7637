package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthorized       = errors.New("not authorized for this operation")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Licensing errors
	ErrInvalidCode       = errors.New("activation code not valid")
	ErrSeatLimitExceeded = errors.New("activation code seat limit reached")
	ErrAlreadyRedeemed   = errors.New("code already redeemed by this user")
	ErrCodeExists        = errors.New("activation code already exists")

	// Infrastructure errors surfaced by repositories
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
