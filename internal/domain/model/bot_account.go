package model

import (
	"time"

	"gamebot-panel/internal/domain"

	"github.com/google/uuid"
)

type BotStatus string

const (
	BotStatusActive   BotStatus = "active"
	BotStatusInactive BotStatus = "inactive"
)

// BotAccount is one external game account owned by a single panel user.
// ConnectionData carries free-form JSON written by the automation client.
type BotAccount struct {
	ID             string
	UserID         string
	UID            string // in-game account identifier
	Password       string
	Nickname       string
	Status         BotStatus
	CreatedAt      time.Time
	LastActivityAt *time.Time
	ConnectionData string
}

func NewBotAccount(userID, botUID, password, nickname string) (*BotAccount, error) {
	if userID == "" || botUID == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &BotAccount{
		ID:        uuid.NewString(),
		UserID:    userID,
		UID:       botUID,
		Password:  password,
		Nickname:  nickname,
		Status:    BotStatusInactive,
		CreatedAt: time.Now(),
	}, nil
}
