package model

import (
	"time"

	"gamebot-panel/internal/domain"

	"github.com/google/uuid"
)

type CodeStatus string

const (
	CodeStatusActive   CodeStatus = "active"
	CodeStatusInactive CodeStatus = "inactive"
)

// codeValidity is how long a freshly issued code can be redeemed,
// independent of the grant length it produces.
const codeValidity = 365 * 24 * time.Hour

// ActivationCode is a reusable license token. Up to MaxUsers distinct users
// can hold a concurrently active grant obtained from it; each grant lasts
// DurationDays from its own redemption.
type ActivationCode struct {
	ID           string
	Code         string
	DurationDays int
	MaxUsers     int
	CreatorID    *string // nil for codes issued before creators were tracked
	Status       CodeStatus
	Notes        string
	CreatedAt    time.Time
	ExpiresAt    time.Time // the code's own redemption window
}

func NewActivationCode(code string, durationDays, maxUsers int, creatorID, notes string) (*ActivationCode, error) {
	if code == "" || durationDays <= 0 || maxUsers <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	ac := &ActivationCode{
		ID:           uuid.NewString(),
		Code:         code,
		DurationDays: durationDays,
		MaxUsers:     maxUsers,
		Status:       CodeStatusActive,
		Notes:        notes,
		CreatedAt:    now,
		ExpiresAt:    now.Add(codeValidity),
	}
	if creatorID != "" {
		ac.CreatorID = &creatorID
	}
	return ac, nil
}
