package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gamebot-panel/internal/domain"
	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/domain/ports/repository"
	"gamebot-panel/internal/infra/logging"
	"gamebot-panel/internal/infra/security"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

// AccountUseCase exposes account operations used by the web layer.
type AccountUseCase interface {
	Register(ctx context.Context, username, password, email string) (*model.User, error)
	// Authenticate verifies credentials and requires status 'active'.
	// Wrong username, wrong password and disabled account are deliberately
	// indistinguishable to the caller.
	Authenticate(ctx context.Context, username, password, ip string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	// EnsureDeveloper creates the bootstrap developer account when missing.
	EnsureDeveloper(ctx context.Context, username, password string) error
}

type accountUC struct {
	users    repository.UserRepository
	connLogs repository.ConnectionLogRepository
	sysLogs  repository.SystemLogRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewAccountUseCase(
	users repository.UserRepository,
	connLogs repository.ConnectionLogRepository,
	sysLogs repository.SystemLogRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *accountUC {
	l := logger.With().Str("component", "AccountUC").Logger()
	return &accountUC{users: users, connLogs: connLogs, sysLogs: sysLogs, tm: tm, log: &l}
}

func (uc *accountUC) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	defer logging.TraceDuration(uc.log, "AccountUC.Register")()

	if username == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var user *model.User
	// Find and save run in one transaction; the unique index on username
	// backstops the check under concurrent registration.
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		_, err := uc.users.FindByUsername(ctx, tx, username)
		if err == nil {
			return domain.ErrUsernameTaken
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		nu, err := model.NewUser("", username, hash, email)
		if err != nil {
			return err
		}
		if err := uc.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		sys := model.NewSystemLog("register", fmt.Sprintf("new user %s registered", username), "")
		if err := uc.sysLogs.Append(ctx, tx, sys); err != nil {
			return err
		}
		user = nu
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("user_id", user.ID).Str("username", username).Msg("user registered")
	return user, nil
}

func (uc *accountUC) Authenticate(ctx context.Context, username, password, ip string) (*model.User, error) {
	defer logging.TraceDuration(uc.log, "AccountUC.Authenticate")()

	user, err := uc.users.FindByUsername(ctx, repository.NoTX, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status != model.UserStatusActive {
		return nil, domain.ErrInvalidCredentials
	}

	user.TouchLogin()
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.users.Save(ctx, tx, user); err != nil {
			return err
		}
		entry := model.NewConnectionLog(user.ID, ip, "login",
			fmt.Sprintf("user %s logged in", username))
		return uc.connLogs.Append(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *accountUC) GetByID(ctx context.Context, id string) (*model.User, error) {
	return uc.users.FindByID(ctx, repository.NoTX, id)
}

func (uc *accountUC) List(ctx context.Context) ([]*model.User, error) {
	return uc.users.List(ctx, repository.NoTX)
}

func (uc *accountUC) EnsureDeveloper(ctx context.Context, username, password string) error {
	_, err := uc.users.FindByUsername(ctx, repository.NoTX, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	dev, err := model.NewUser("", username, hash, "")
	if err != nil {
		return err
	}
	dev.IsDeveloper = true
	if err := uc.users.Save(ctx, repository.NoTX, dev); err != nil {
		return err
	}
	uc.log.Warn().Str("username", username).
		Msg("bootstrap developer account created; change its password immediately")
	return nil
}
