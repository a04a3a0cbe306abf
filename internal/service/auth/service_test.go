package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func newTestJWTService() *JWTService {
	return NewJWTService("test-secret-key", 15*time.Minute, 7*24*time.Hour, mocks.NewMockCache(), newTestLogger())
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	password := "password123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	mockUser := &domain.User{
		ID:       "user-123",
		Email:    "test@example.com",
		Password: string(hashedPassword),
		Role:     domain.UserRoleOperator,
		BotScope: "clinica",
		Status:   "Active",
	}

	mockRepo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			if email == "test@example.com" {
				return mockUser, nil
			}
			return nil, nil
		},
	}

	service := NewService(mockRepo, newTestJWTService(), newTestLogger())

	// Act
	accessToken, refreshToken, err := service.Login(ctx, "test@example.com", password)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if accessToken == "" {
		t.Error("expected access token, got empty string")
	}
	if refreshToken == "" {
		t.Error("expected refresh token, got empty string")
	}
}

func TestLogin_InvalidEmail(t *testing.T) {
	// Arrange
	ctx := context.Background()

	mockRepo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return nil, nil // User not found
		},
	}

	service := NewService(mockRepo, newTestJWTService(), newTestLogger())

	// Act
	_, _, err := service.Login(ctx, "notfound@example.com", "password")

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "invalid credentials" {
		t.Errorf("expected 'invalid credentials', got '%s'", err.Error())
	}
}

func TestLogin_InvalidPassword(t *testing.T) {
	// Arrange
	ctx := context.Background()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correctpassword"), bcrypt.DefaultCost)

	mockUser := &domain.User{
		ID:       "user-123",
		Email:    "test@example.com",
		Password: string(hashedPassword),
		Status:   "Active",
	}

	mockRepo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return mockUser, nil
		},
	}

	service := NewService(mockRepo, newTestJWTService(), newTestLogger())

	// Act
	_, _, err := service.Login(ctx, "test@example.com", "wrongpassword")

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "invalid credentials" {
		t.Errorf("expected 'invalid credentials', got '%s'", err.Error())
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	// Arrange
	ctx := context.Background()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	mockUser := &domain.User{
		ID:       "user-123",
		Email:    "test@example.com",
		Password: string(hashedPassword),
		Status:   "Blocked",
	}

	mockRepo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return mockUser, nil
		},
	}

	service := NewService(mockRepo, newTestJWTService(), newTestLogger())

	// Act
	_, _, err := service.Login(ctx, "test@example.com", "password123")

	// Assert
	if err == nil {
		t.Fatal("expected error for blocked account, got nil")
	}
}

func TestRegister_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	var savedUser *domain.User

	mockRepo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return nil, nil
		},
		SaveFunc: func(ctx context.Context, user *domain.User) error {
			savedUser = user
			return nil
		},
	}

	service := NewService(mockRepo, newTestJWTService(), newTestLogger())

	newUser := &domain.User{
		Name:     "Test User",
		Email:    "new@example.com",
		Password: "password123",
	}

	// Act
	err := service.Register(ctx, newUser)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if savedUser == nil {
		t.Fatal("expected user to be saved")
	}
	if savedUser.Password == "password123" {
		t.Error("password should be hashed, not plain text")
	}
	if savedUser.ID == "" {
		t.Error("expected generated user ID")
	}
	if savedUser.Role != domain.UserRoleOperator {
		t.Errorf("expected default role 'operator', got '%s'", savedUser.Role)
	}
	if savedUser.BotScope != "*" {
		t.Errorf("expected default bot scope '*', got '%s'", savedUser.BotScope)
	}
	if savedUser.Status != "Active" {
		t.Errorf("expected status 'Active', got '%s'", savedUser.Status)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	// Arrange
	ctx := context.Background()

	mockRepo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "existing", Email: email}, nil
		},
	}

	service := NewService(mockRepo, newTestJWTService(), newTestLogger())

	// Act
	err := service.Register(ctx, &domain.User{Email: "taken@example.com", Password: "password123"})

	// Assert
	if err == nil {
		t.Fatal("expected error for duplicate email, got nil")
	}
}

func TestRegister_RepositoryError(t *testing.T) {
	// Arrange
	ctx := context.Background()

	mockRepo := &mocks.MockUserRepository{
		SaveFunc: func(ctx context.Context, user *domain.User) error {
			return errors.New("database error")
		},
	}

	service := NewService(mockRepo, newTestJWTService(), newTestLogger())

	newUser := &domain.User{
		Email:    "new@example.com",
		Password: "password123",
	}

	// Act
	err := service.Register(ctx, newUser)

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestValidateToken_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	jwtService := newTestJWTService()

	mockUser := &domain.User{
		ID:       "user-123",
		Email:    "test@example.com",
		Role:     domain.UserRoleOperator,
		BotScope: "clinica,taller",
		Status:   "Active",
	}

	mockRepo := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			if id == "user-123" {
				return mockUser, nil
			}
			return nil, nil
		},
	}

	service := NewService(mockRepo, jwtService, newTestLogger())
	tokenStr, _ := jwtService.GenerateAccessToken(mockUser)

	// Act
	user, err := service.ValidateToken(ctx, tokenStr)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID != "user-123" {
		t.Errorf("expected user ID 'user-123', got '%s'", user.ID)
	}
}

func TestValidateToken_InvalidToken(t *testing.T) {
	// Arrange
	ctx := context.Background()

	mockRepo := &mocks.MockUserRepository{}
	service := NewService(mockRepo, newTestJWTService(), newTestLogger())

	// Act
	_, err := service.ValidateToken(ctx, "invalid-token")

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestValidateToken_RejectsRefreshToken(t *testing.T) {
	// Arrange
	ctx := context.Background()
	jwtService := newTestJWTService()

	mockRepo := &mocks.MockUserRepository{}
	service := NewService(mockRepo, jwtService, newTestLogger())

	refreshStr, _ := jwtService.GenerateRefreshToken(&domain.User{ID: "user-123"})

	// Act
	_, err := service.ValidateToken(ctx, refreshStr)

	// Assert
	if err == nil {
		t.Fatal("expected error when refresh token is used as access token, got nil")
	}
}

func TestRefreshToken_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	jwtService := newTestJWTService()

	mockUser := &domain.User{
		ID:     "user-123",
		Email:  "test@example.com",
		Role:   domain.UserRoleOperator,
		Status: "Active",
	}

	mockRepo := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			if id == "user-123" {
				return mockUser, nil
			}
			return nil, nil
		},
	}

	service := NewService(mockRepo, jwtService, newTestLogger())
	refreshStr, _ := jwtService.GenerateRefreshToken(mockUser)

	// Act
	newAccessToken, err := service.RefreshToken(ctx, refreshStr)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if newAccessToken == "" {
		t.Error("expected new access token, got empty string")
	}
}

func TestRefreshToken_InvalidToken(t *testing.T) {
	// Arrange
	ctx := context.Background()

	mockRepo := &mocks.MockUserRepository{}
	service := NewService(mockRepo, newTestJWTService(), newTestLogger())

	// Act
	_, err := service.RefreshToken(ctx, "invalid-refresh-token")

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	// Arrange
	ctx := context.Background()
	jwtService := newTestJWTService()

	mockRepo := &mocks.MockUserRepository{}
	service := NewService(mockRepo, jwtService, newTestLogger())

	accessStr, _ := jwtService.GenerateAccessToken(&domain.User{ID: "user-123"})

	// Act
	_, err := service.RefreshToken(ctx, accessStr)

	// Assert
	if err == nil {
		t.Fatal("expected error when access token is used as refresh token, got nil")
	}
}

func TestRefreshToken_UserNotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	jwtService := newTestJWTService()

	mockRepo := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return nil, nil // User not found
		},
	}

	service := NewService(mockRepo, jwtService, newTestLogger())
	refreshStr, _ := jwtService.GenerateRefreshToken(&domain.User{ID: "ghost-user"})

	// Act
	_, err := service.RefreshToken(ctx, refreshStr)

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRefreshToken_RevokedToken(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cache := mocks.NewMockCache()
	jwtService := NewJWTService("test-secret-key", 15*time.Minute, 7*24*time.Hour, cache, newTestLogger())

	mockUser := &domain.User{ID: "user-123", Status: "Active"}
	mockRepo := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return mockUser, nil
		},
	}

	service := NewService(mockRepo, jwtService, newTestLogger())
	refreshStr, _ := jwtService.GenerateRefreshToken(mockUser)

	claims, err := jwtService.ValidateToken(refreshStr)
	if err != nil {
		t.Fatalf("failed to parse refresh token: %v", err)
	}
	if err := jwtService.RevokeToken(ctx, claims.ID); err != nil {
		t.Fatalf("failed to revoke token: %v", err)
	}

	// Act
	_, err = service.RefreshToken(ctx, refreshStr)

	// Assert
	if err == nil {
		t.Fatal("expected error for revoked refresh token, got nil")
	}
}
