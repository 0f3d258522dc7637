//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"

	"gamebot-panel/internal/domain"
	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/domain/ports/repository"
)

func seedUserAndCode(t *testing.T, ctx context.Context) (*model.User, *model.ActivationCode) {
	t.Helper()
	users := NewUserRepo(testPool)
	codes := NewActivationCodeRepo(testPool)

	u, err := model.NewUser("", "grant_holder", "x-hash", "")
	if err != nil {
		t.Fatalf("model.NewUser() failed: %v", err)
	}
	if err := users.Save(ctx, nil, u); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}
	c, err := model.NewActivationCode("FF-0011223344556677", 30, 3, "", "")
	if err != nil {
		t.Fatalf("model.NewActivationCode() failed: %v", err)
	}
	if err := codes.Save(ctx, nil, c); err != nil {
		t.Fatalf("Failed to save code: %v", err)
	}
	return u, c
}

func TestActivationRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewActivationRepo(testPool)
	tm := NewTxManager(testPool)
	ctx := context.Background()

	t.Run("should save and count active grants", func(t *testing.T) {
		cleanup(t)
		user, code := seedUserAndCode(t, ctx)

		grant, err := model.NewActivation(user.ID, code)
		if err != nil {
			t.Fatalf("model.NewActivation() failed: %v", err)
		}
		if err := repo.Save(ctx, nil, grant); err != nil {
			t.Fatalf("Failed to save grant: %v", err)
		}

		n, err := repo.CountActiveByCode(ctx, nil, code.ID)
		if err != nil {
			t.Fatalf("CountActiveByCode failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 active grant, got %d", n)
		}

		found, err := repo.FindValidByUserAndCode(ctx, nil, user.ID, code.ID)
		if err != nil {
			t.Fatalf("FindValidByUserAndCode failed: %v", err)
		}
		if found.ID != grant.ID {
			t.Errorf("Expected grant ID %s, got %s", grant.ID, found.ID)
		}
	})

	t.Run("LockCode requires a transaction", func(t *testing.T) {
		cleanup(t)
		_, code := seedUserAndCode(t, ctx)

		if err := repo.LockCode(ctx, nil, code.ID); !errors.Is(err, domain.ErrInvalidExecContext) {
			t.Fatalf("Expected ErrInvalidExecContext outside a tx, got %v", err)
		}
		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			return repo.LockCode(ctx, tx, code.ID)
		})
		if err != nil {
			t.Fatalf("LockCode inside a tx failed: %v", err)
		}
	})

	t.Run("ExpireDue flips overdue grants exactly once", func(t *testing.T) {
		cleanup(t)
		user, code := seedUserAndCode(t, ctx)

		grant, _ := model.NewActivation(user.ID, code)
		grant.ExpiresAt = time.Now().Add(-time.Hour)
		if err := repo.Save(ctx, nil, grant); err != nil {
			t.Fatalf("Failed to save grant: %v", err)
		}

		expired, err := repo.ExpireDue(ctx, nil, time.Now())
		if err != nil {
			t.Fatalf("ExpireDue failed: %v", err)
		}
		if len(expired) != 1 {
			t.Fatalf("Expected 1 expired grant, got %d", len(expired))
		}
		if expired[0].Username != user.Username || expired[0].Code != code.Code {
			t.Errorf("Join returned %q/%q, want %q/%q",
				expired[0].Username, expired[0].Code, user.Username, code.Code)
		}

		// The second pass matches nothing.
		again, err := repo.ExpireDue(ctx, nil, time.Now())
		if err != nil {
			t.Fatalf("Second ExpireDue failed: %v", err)
		}
		if len(again) != 0 {
			t.Errorf("Expected no rows on the second pass, got %d", len(again))
		}

		// The flipped grant is no longer valid nor seat-holding.
		if _, err := repo.FindValidByUser(ctx, nil, user.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound after expiry, got %v", err)
		}
		if n, _ := repo.CountActiveByCode(ctx, nil, code.ID); n != 0 {
			t.Errorf("Expected 0 active grants after expiry, got %d", n)
		}
	})
}

func TestActivationCodeRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewActivationCodeRepo(testPool)
	ctx := context.Background()

	t.Run("should insert, find and deactivate codes", func(t *testing.T) {
		cleanup(t)

		code, err := model.NewActivationCode("FF-AABBCCDDEEFF0011", 7, 1, "", "smoke test")
		if err != nil {
			t.Fatalf("model.NewActivationCode() failed: %v", err)
		}
		if err := repo.Save(ctx, nil, code); err != nil {
			t.Fatalf("Failed to save code: %v", err)
		}

		found, err := repo.FindActiveByCode(ctx, nil, code.Code)
		if err != nil {
			t.Fatalf("FindActiveByCode failed: %v", err)
		}
		if found.ID != code.ID || found.DurationDays != 7 || found.MaxUsers != 1 {
			t.Errorf("Round trip mismatch: %+v", found)
		}

		if err := repo.SetStatus(ctx, nil, code.ID, model.CodeStatusInactive); err != nil {
			t.Fatalf("SetStatus failed: %v", err)
		}
		if _, err := repo.FindActiveByCode(ctx, nil, code.Code); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound for deactivated code, got %v", err)
		}
	})

	t.Run("should reject duplicate code text", func(t *testing.T) {
		cleanup(t)

		first, _ := model.NewActivationCode("FF-AABBCCDDEEFF0011", 7, 1, "", "")
		if err := repo.Save(ctx, nil, first); err != nil {
			t.Fatalf("Failed to save first code: %v", err)
		}
		dup, _ := model.NewActivationCode("FF-AABBCCDDEEFF0011", 30, 5, "", "")
		if err := repo.Save(ctx, nil, dup); !errors.Is(err, domain.ErrCodeExists) {
			t.Fatalf("Expected ErrCodeExists, got %v", err)
		}
	})
}
