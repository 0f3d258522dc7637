package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gamebot-panel/internal/domain"
	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/domain/ports/repository"
	"gamebot-panel/internal/infra/logging"
	"gamebot-panel/internal/infra/metrics"
)

// Compile-time check
var _ LicensingUseCase = (*licensingUC)(nil)

// LicensingUseCase is the activation/licensing core: code issuance,
// redemption, deactivation, access checks and the expiry sweep.
type LicensingUseCase interface {
	// Redeem exchanges a code for a grant. Fails with ErrInvalidCode,
	// ErrSeatLimitExceeded or ErrAlreadyRedeemed; creates nothing on failure.
	Redeem(ctx context.Context, user *model.User, codeText, ip string) (*model.Activation, error)
	// IssueCode mints a fresh unique code. The caller is responsible for
	// having verified that creator holds the developer role.
	IssueCode(ctx context.Context, creator *model.User, durationDays, maxUsers int, notes string) (*model.ActivationCode, error)
	// DeactivateCode soft-disables a code. Idempotent; grants already issued
	// under it keep running until their own expiry.
	DeactivateCode(ctx context.Context, actor *model.User, codeID string) error
	// HasValidAccess reports whether the user may reach gated features right
	// now. Computed live on every call; never cached.
	HasValidAccess(ctx context.Context, user *model.User) (bool, error)
	// ActiveUntil returns the expiry of the user's current grant, or nil.
	ActiveUntil(ctx context.Context, userID string) (*time.Time, error)
	// SweepExpired flips every overdue grant to expired and returns how many
	// it touched. Safe to re-run at any time.
	SweepExpired(ctx context.Context) (int, error)
	ListCodes(ctx context.Context) ([]*model.ActivationCode, error)
	RecentActivations(ctx context.Context, limit int) ([]*model.Activation, error)
}

type licensingUC struct {
	codes       repository.ActivationCodeRepository
	activations repository.ActivationRepository
	connLogs    repository.ConnectionLogRepository
	sysLogs     repository.SystemLogRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewLicensingUseCase(
	codes repository.ActivationCodeRepository,
	activations repository.ActivationRepository,
	connLogs repository.ConnectionLogRepository,
	sysLogs repository.SystemLogRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *licensingUC {
	l := logger.With().Str("component", "LicensingUC").Logger()
	return &licensingUC{
		codes:       codes,
		activations: activations,
		connLogs:    connLogs,
		sysLogs:     sysLogs,
		tm:          tm,
		log:         &l,
	}
}

// Redeem runs the whole check-and-insert inside one transaction holding a
// per-code advisory lock, so concurrent redemptions of the same code cannot
// jointly exceed the seat cap.
func (uc *licensingUC) Redeem(ctx context.Context, user *model.User, codeText, ip string) (*model.Activation, error) {
	defer logging.TraceDuration(uc.log, "LicensingUC.Redeem")()

	if user.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	norm := normalizeCode(codeText)
	if norm == "" {
		metrics.IncRedemption("invalid_code")
		return nil, domain.ErrInvalidCode
	}

	var grant *model.Activation
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		code, err := uc.codes.FindActiveByCode(ctx, tx, norm)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidCode
			}
			return err
		}

		if err := uc.activations.LockCode(ctx, tx, code.ID); err != nil {
			return err
		}

		seats, err := uc.activations.CountActiveByCode(ctx, tx, code.ID)
		if err != nil {
			return err
		}
		if seats >= code.MaxUsers {
			return domain.ErrSeatLimitExceeded
		}

		existing, err := uc.activations.FindValidByUserAndCode(ctx, tx, user.ID, code.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyRedeemed
		}

		a, err := model.NewActivation(user.ID, code)
		if err != nil {
			return err
		}
		if err := uc.activations.Save(ctx, tx, a); err != nil {
			return err
		}

		// Audit entries commit or roll back with the grant itself.
		entry := model.NewConnectionLog(user.ID, ip, "redeem",
			fmt.Sprintf("code: %s - duration: %d days", code.Code, code.DurationDays))
		if err := uc.connLogs.Append(ctx, tx, entry); err != nil {
			return err
		}
		sys := model.NewSystemLog("activation",
			fmt.Sprintf("user %s redeemed code %s", user.Username, code.Code), "")
		if err := uc.sysLogs.Append(ctx, tx, sys); err != nil {
			return err
		}

		grant = a
		return nil
	})
	if err != nil {
		metrics.IncRedemption(redeemOutcome(err))
		return nil, err
	}

	metrics.IncRedemption("ok")
	uc.log.Info().Str("user_id", user.ID).Str("code", norm).
		Time("expires_at", grant.ExpiresAt).Msg("code redeemed")
	return grant, nil
}

func redeemOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, domain.ErrSeatLimitExceeded):
		return "seat_limit"
	case errors.Is(err, domain.ErrAlreadyRedeemed):
		return "already_redeemed"
	default:
		return "error"
	}
}

// issueAttempts bounds collision retries. Collisions on 8 random bytes are
// effectively impossible; the bound exists so a broken store cannot loop us.
const issueAttempts = 5

func (uc *licensingUC) IssueCode(ctx context.Context, creator *model.User, durationDays, maxUsers int, notes string) (*model.ActivationCode, error) {
	defer logging.TraceDuration(uc.log, "LicensingUC.IssueCode")()

	if creator.IsZero() || durationDays <= 0 || maxUsers <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	var issued *model.ActivationCode
	for i := 0; i < issueAttempts; i++ {
		text, err := generateActivationCode()
		if err != nil {
			return nil, err
		}
		code, err := model.NewActivationCode(text, durationDays, maxUsers, creator.ID, notes)
		if err != nil {
			return nil, err
		}
		err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			if err := uc.codes.Save(ctx, tx, code); err != nil {
				return err
			}
			sys := model.NewSystemLog("code_creation",
				fmt.Sprintf("developer %s issued code %s", creator.Username, code.Code), notes)
			return uc.sysLogs.Append(ctx, tx, sys)
		})
		if errors.Is(err, domain.ErrCodeExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		issued = code
		break
	}
	if issued == nil {
		return nil, domain.ErrCodeExists
	}

	metrics.IncCodesIssued()
	uc.log.Info().Str("code", issued.Code).Int("duration_days", durationDays).
		Int("max_users", maxUsers).Msg("activation code issued")
	return issued, nil
}

func (uc *licensingUC) DeactivateCode(ctx context.Context, actor *model.User, codeID string) error {
	defer logging.TraceDuration(uc.log, "LicensingUC.DeactivateCode")()

	return uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		code, err := uc.codes.FindByID(ctx, tx, codeID)
		if err != nil {
			return err
		}
		if err := uc.codes.SetStatus(ctx, tx, code.ID, model.CodeStatusInactive); err != nil {
			return err
		}
		sys := model.NewSystemLog("code_deactivation",
			fmt.Sprintf("developer %s deactivated code %s", actor.Username, code.Code), "")
		return uc.sysLogs.Append(ctx, tx, sys)
	})
}

func (uc *licensingUC) HasValidAccess(ctx context.Context, user *model.User) (bool, error) {
	if user.IsZero() {
		return false, domain.ErrInvalidArgument
	}
	if user.IsDeveloper {
		return true, nil
	}
	_, err := uc.activations.FindValidByUser(ctx, repository.NoTX, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (uc *licensingUC) ActiveUntil(ctx context.Context, userID string) (*time.Time, error) {
	a, err := uc.activations.FindValidByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a.ExpiresAt, nil
}

// SweepExpired commits all transitions and their audit entries as one batch.
func (uc *licensingUC) SweepExpired(ctx context.Context) (int, error) {
	defer logging.TraceDuration(uc.log, "LicensingUC.SweepExpired")()

	var n int
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		expired, err := uc.activations.ExpireDue(ctx, tx, time.Now())
		if err != nil {
			return err
		}
		for _, g := range expired {
			sys := model.NewSystemLog("expiration",
				fmt.Sprintf("grant expired for user %s", g.Username),
				fmt.Sprintf("code: %s", g.Code))
			if err := uc.sysLogs.Append(ctx, tx, sys); err != nil {
				return err
			}
		}
		n = len(expired)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (uc *licensingUC) ListCodes(ctx context.Context) ([]*model.ActivationCode, error) {
	return uc.codes.List(ctx, repository.NoTX)
}

func (uc *licensingUC) RecentActivations(ctx context.Context, limit int) ([]*model.Activation, error) {
	return uc.activations.Recent(ctx, repository.NoTX, limit)
}
