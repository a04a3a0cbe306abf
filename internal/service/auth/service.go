package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
)

var errInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	userRepo ports.UserRepository
	jwt      *JWTService
	log      *zap.Logger
}

func NewService(userRepo ports.UserRepository, jwt *JWTService, log *zap.Logger) ports.AuthService {
	return &Service{
		userRepo: userRepo,
		jwt:      jwt,
		log:      log,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil || user == nil {
		return "", "", errInvalidCredentials
	}
	if user.Status != "Active" {
		return "", "", errors.New("account is not active")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", errInvalidCredentials
	}

	access, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return "", "", err
	}

	s.log.Info("operator logged in", zap.String("user_id", user.ID))
	return access, refresh, nil
}

func (s *Service) Register(ctx context.Context, user *domain.User) error {
	if user.Email == "" || user.Password == "" {
		return errors.New("email and password are required")
	}
	if existing, _ := s.userRepo.FindByEmail(ctx, user.Email); existing != nil {
		return errors.New("email already registered")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPwd)
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = domain.UserRoleOperator
	}
	if user.BotScope == "" {
		user.BotScope = "*"
	}
	user.Status = "Active"
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	return s.userRepo.Save(ctx, user)
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil {
		return "", errors.New("invalid refresh token")
	}
	if claims.Type != "refresh" {
		return "", errors.New("not a refresh token")
	}
	if s.jwt.IsTokenRevoked(ctx, claims.ID) {
		return "", errors.New("refresh token revoked")
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil || user == nil {
		return "", errors.New("user not found")
	}
	if user.Status != "Active" {
		return "", errors.New("account is not active")
	}

	return s.jwt.GenerateAccessToken(user)
}

func (s *Service) ValidateToken(ctx context.Context, tokenStr string) (*domain.User, error) {
	claims, err := s.jwt.ValidateToken(tokenStr)
	if err != nil {
		return nil, errors.New("invalid token")
	}
	if claims.Type != "access" {
		return nil, errors.New("not an access token")
	}
	if s.jwt.IsTokenRevoked(ctx, claims.ID) {
		return nil, errors.New("token revoked")
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	return user, nil
}
