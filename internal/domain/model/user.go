package model

import (
	"time"

	"gamebot-panel/internal/domain"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBanned  UserStatus = "banned"
	UserStatusDormant UserStatus = "dormant"
)

// User is a panel account. The password hash is an encoded argon2id string,
// never the raw secret.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Email        string
	IsDeveloper  bool
	Status       UserStatus
	CreatedAt    time.Time
	LastLoginAt  *time.Time // nil until first login
}

func NewUser(id, username, passwordHash, email string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if username == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		IsDeveloper:  false,
		Status:       UserStatusActive,
		CreatedAt:    time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// TouchLogin records a successful login.
func (u *User) TouchLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}
