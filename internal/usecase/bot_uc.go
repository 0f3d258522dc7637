package usecase

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gamebot-panel/internal/domain"
	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/domain/ports/repository"
	"gamebot-panel/internal/infra/logging"
)

// Compile-time check
var _ BotUseCase = (*botUC)(nil)

// BotUseCase manages per-user game account records.
type BotUseCase interface {
	Add(ctx context.Context, owner *model.User, botUID, password, nickname, ip string) (*model.BotAccount, error)
	List(ctx context.Context, owner *model.User) ([]*model.BotAccount, error)
	// Delete removes a bot. Only the owner or a developer may delete it.
	Delete(ctx context.Context, actor *model.User, botID, ip string) error
}

type botUC struct {
	bots     repository.BotAccountRepository
	connLogs repository.ConnectionLogRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewBotUseCase(
	bots repository.BotAccountRepository,
	connLogs repository.ConnectionLogRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *botUC {
	l := logger.With().Str("component", "BotUC").Logger()
	return &botUC{bots: bots, connLogs: connLogs, tm: tm, log: &l}
}

func (uc *botUC) Add(ctx context.Context, owner *model.User, botUID, password, nickname, ip string) (*model.BotAccount, error) {
	defer logging.TraceDuration(uc.log, "BotUC.Add")()

	if owner.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	bot, err := model.NewBotAccount(owner.ID, botUID, password, nickname)
	if err != nil {
		return nil, err
	}

	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.bots.Save(ctx, tx, bot); err != nil {
			return err
		}
		entry := model.NewConnectionLog(owner.ID, ip, "bot_add", fmt.Sprintf("uid: %s", botUID))
		return uc.connLogs.Append(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return bot, nil
}

func (uc *botUC) List(ctx context.Context, owner *model.User) ([]*model.BotAccount, error) {
	if owner.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return uc.bots.ListByUser(ctx, repository.NoTX, owner.ID)
}

func (uc *botUC) Delete(ctx context.Context, actor *model.User, botID, ip string) error {
	defer logging.TraceDuration(uc.log, "BotUC.Delete")()

	if actor.IsZero() {
		return domain.ErrInvalidArgument
	}
	return uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		bot, err := uc.bots.FindByID(ctx, tx, botID)
		if err != nil {
			return err
		}
		if bot.UserID != actor.ID && !actor.IsDeveloper {
			return domain.ErrUnauthorized
		}
		if err := uc.bots.Delete(ctx, tx, bot.ID); err != nil {
			return err
		}
		entry := model.NewConnectionLog(actor.ID, ip, "bot_delete", fmt.Sprintf("uid: %s", bot.UID))
		return uc.connLogs.Append(ctx, tx, entry)
	})
}
