package model

import (
	"time"

	"gamebot-panel/internal/domain"

	"github.com/google/uuid"
)

type ActivationStatus string

const (
	ActivationStatusActive  ActivationStatus = "active"
	ActivationStatusExpired ActivationStatus = "expired"
)

// Activation binds one user to one code at redemption time. ExpiresAt is
// fixed at creation; only Status moves, one way, active -> expired.
type Activation struct {
	ID          string
	UserID      string
	CodeID      string
	ActivatedAt time.Time
	ExpiresAt   time.Time
	Status      ActivationStatus
}

// NewActivation creates the grant for a redemption of code by userID.
// The grant expiry is now + the code's duration.
func NewActivation(userID string, code *ActivationCode) (*Activation, error) {
	if userID == "" || code == nil {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Activation{
		ID:          uuid.NewString(),
		UserID:      userID,
		CodeID:      code.ID,
		ActivatedAt: now,
		ExpiresAt:   now.Add(time.Duration(code.DurationDays) * 24 * time.Hour),
		Status:      ActivationStatusActive,
	}, nil
}

// Valid reports whether the grant confers access at instant t.
func (a *Activation) Valid(t time.Time) bool {
	return a != nil && a.Status == ActivationStatusActive && a.ExpiresAt.After(t)
}
