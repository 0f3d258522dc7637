//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"gamebot-panel/internal/domain"
	"gamebot-panel/internal/domain/model"
)

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewUserRepo(testPool)
	ctx := context.Background()

	t.Run("should perform full CRUD cycle", func(t *testing.T) {
		cleanup(t)

		newUser, err := model.NewUser("", "integration_user", "x-hash", "it@example.com")
		if err != nil {
			t.Fatalf("model.NewUser() failed: %v", err)
		}
		if err := repo.Save(ctx, nil, newUser); err != nil {
			t.Fatalf("Failed to save new user: %v", err)
		}

		found, err := repo.FindByUsername(ctx, nil, "integration_user")
		if err != nil {
			t.Fatalf("Failed to find user by username: %v", err)
		}
		if found.ID != newUser.ID {
			t.Errorf("Expected user ID %s, got %s", newUser.ID, found.ID)
		}
		if found.Status != model.UserStatusActive {
			t.Errorf("Expected status active, got %s", found.Status)
		}

		found.TouchLogin()
		found.Status = model.UserStatusBanned
		if err := repo.Save(ctx, nil, found); err != nil {
			t.Fatalf("Failed to update user: %v", err)
		}

		updated, err := repo.FindByID(ctx, nil, found.ID)
		if err != nil {
			t.Fatalf("Failed to find user by ID: %v", err)
		}
		if updated.Status != model.UserStatusBanned {
			t.Errorf("Expected status banned, got %s", updated.Status)
		}
		if updated.LastLoginAt == nil {
			t.Error("Expected LastLoginAt to be set after update")
		}
	})

	t.Run("should reject duplicate usernames", func(t *testing.T) {
		cleanup(t)

		first, _ := model.NewUser("", "taken", "x-hash", "")
		if err := repo.Save(ctx, nil, first); err != nil {
			t.Fatalf("Failed to save first user: %v", err)
		}
		second, _ := model.NewUser("", "taken", "y-hash", "")
		if err := repo.Save(ctx, nil, second); !errors.Is(err, domain.ErrUsernameTaken) {
			t.Fatalf("Expected ErrUsernameTaken, got %v", err)
		}
	})

	t.Run("should return ErrNotFound for missing users", func(t *testing.T) {
		cleanup(t)

		if _, err := repo.FindByUsername(ctx, nil, "ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})
}
