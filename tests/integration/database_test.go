package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/sundinlabs/multibot/internal/adapter/storage/postgres"
	"github.com/sundinlabs/multibot/internal/domain"
)

// TestDatabase_UserRepository exercises the operator account store
// against a real Postgres.
func TestDatabase_UserRepository(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	CleanDatabase(t, env.DB)

	ctx := context.Background()
	repo := postgres.NewUserRepository(env.DB, env.Logger)
	userID := uuid.New().String()

	t.Run("Save", func(t *testing.T) {
		user := &domain.User{
			ID:       userID,
			Name:     "Test Operator",
			Email:    "operator@example.com",
			Password: "hashed-password",
			Role:     domain.UserRoleOperator,
			Status:   "Active",
			BotScope: "demo,clinic",
		}

		if err := repo.Save(ctx, user); err != nil {
			t.Fatalf("Failed to save user: %v", err)
		}
	})

	t.Run("FindByID", func(t *testing.T) {
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			t.Fatalf("Failed to find user: %v", err)
		}
		if user == nil {
			t.Fatal("Expected user, got nil")
		}
		if user.Email != "operator@example.com" {
			t.Errorf("Expected email 'operator@example.com', got '%s'", user.Email)
		}
		if user.Role != domain.UserRoleOperator {
			t.Errorf("Expected role operator, got '%s'", user.Role)
		}
		if user.CanManage("clinic") != true {
			t.Error("Expected scope to cover 'clinic'")
		}
		if user.CanManage("other") {
			t.Error("Expected scope to exclude 'other'")
		}
	})

	t.Run("FindByEmail", func(t *testing.T) {
		user, err := repo.FindByEmail(ctx, "operator@example.com")
		if err != nil {
			t.Fatalf("Failed to find user by email: %v", err)
		}
		if user == nil {
			t.Fatal("Expected user, got nil")
		}
		if user.ID != userID {
			t.Errorf("Expected id '%s', got '%s'", userID, user.ID)
		}
	})

	t.Run("Update", func(t *testing.T) {
		user, err := repo.FindByID(ctx, userID)
		if err != nil || user == nil {
			t.Fatalf("Failed to load user: %v", err)
		}

		user.Name = "Renamed Operator"
		user.Status = "Blocked"
		if err := repo.Save(ctx, user); err != nil {
			t.Fatalf("Failed to update user: %v", err)
		}

		updated, err := repo.FindByID(ctx, userID)
		if err != nil || updated == nil {
			t.Fatalf("Failed to reload user: %v", err)
		}
		if updated.Name != "Renamed Operator" {
			t.Errorf("Expected updated name, got '%s'", updated.Name)
		}
		if updated.Status != "Blocked" {
			t.Errorf("Expected status 'Blocked', got '%s'", updated.Status)
		}
	})

	t.Run("NotFoundIsNil", func(t *testing.T) {
		user, err := repo.FindByID(ctx, uuid.New().String())
		if err != nil {
			t.Fatalf("Expected no error for missing user, got %v", err)
		}
		if user != nil {
			t.Errorf("Expected nil for missing user, got %+v", user)
		}

		user, err = repo.FindByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("Expected no error for missing email, got %v", err)
		}
		if user != nil {
			t.Errorf("Expected nil for missing email, got %+v", user)
		}
	})
}

// TestDatabase_UserRepository_ScopeDefault verifies the scope column
// default lands on freshly created accounts.
func TestDatabase_UserRepository_ScopeDefault(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	CleanDatabase(t, env.DB)

	ctx := context.Background()
	repo := postgres.NewUserRepository(env.DB, env.Logger)

	user := &domain.User{
		ID:       uuid.New().String(),
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: "hashed",
		Role:     domain.UserRoleAdmin,
		Status:   "Active",
		BotScope: "*",
	}
	if err := repo.Save(ctx, user); err != nil {
		t.Fatalf("Failed to save admin: %v", err)
	}

	loaded, err := repo.FindByID(ctx, user.ID)
	if err != nil || loaded == nil {
		t.Fatalf("Failed to reload admin: %v", err)
	}
	if !loaded.CanManage("anything") {
		t.Error("Expected wildcard scope to cover every bot")
	}
}
