package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type UserStats struct {
	TotalBots        int        `json:"total_bots"`
	ActiveBots       int        `json:"active_bots"`
	TotalActivations int        `json:"total_activations"`
	ActiveUntil      *time.Time `json:"active_until,omitempty"`
}

type DeveloperStats struct {
	TotalUsers       int `json:"total_users"`
	TotalActivations int `json:"total_activations"`
	ActiveCodes      int `json:"active_codes"`
	TotalBots        int `json:"total_bots"`
}

// StatsUseCase aggregates the numbers shown on the two dashboards.
type StatsUseCase interface {
	UserDashboard(ctx context.Context, userID string) (*UserStats, error)
	DeveloperDashboard(ctx context.Context) (*DeveloperStats, error)
}

type statsUC struct {
	users       repository.UserRepository
	codes       repository.ActivationCodeRepository
	activations repository.ActivationRepository
	bots        repository.BotAccountRepository
	log         *zerolog.Logger
}

func NewStatsUseCase(
	users repository.UserRepository,
	codes repository.ActivationCodeRepository,
	activations repository.ActivationRepository,
	bots repository.BotAccountRepository,
	logger *zerolog.Logger,
) *statsUC {
	l := logger.With().Str("component", "StatsUC").Logger()
	return &statsUC{users: users, codes: codes, activations: activations, bots: bots, log: &l}
}

func (uc *statsUC) UserDashboard(ctx context.Context, userID string) (*UserStats, error) {
	total, err := uc.bots.CountByUser(ctx, repository.NoTX, userID, "")
	if err != nil {
		return nil, err
	}
	active, err := uc.bots.CountByUser(ctx, repository.NoTX, userID, model.BotStatusActive)
	if err != nil {
		return nil, err
	}
	redeemed, err := uc.activations.CountByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{TotalBots: total, ActiveBots: active, TotalActivations: redeemed}
	if a, err := uc.activations.FindValidByUser(ctx, repository.NoTX, userID); err == nil {
		stats.ActiveUntil = &a.ExpiresAt
	}
	return stats, nil
}

func (uc *statsUC) DeveloperDashboard(ctx context.Context) (*DeveloperStats, error) {
	users, err := uc.users.Count(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	activations, err := uc.activations.Count(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	codes, err := uc.codes.CountActive(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	bots, err := uc.bots.Count(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	return &DeveloperStats{
		TotalUsers:       users,
		TotalActivations: activations,
		ActiveCodes:      codes,
		TotalBots:        bots,
	}, nil
}
