package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shophub/shop-api/internal/domain/models"
	security "github.com/shophub/shop-api/internal/jwt-new"
	"github.com/shophub/shop-api/internal/lib/apperr"
	"github.com/shophub/shop-api/internal/storage"
)

// AuthResult - профиль пользователя вместе с выданным токеном
type AuthResult struct {
	ID      uuid.UUID `json:"_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone"`
	IsAdmin bool      `json:"isAdmin"`
	Token   string    `json:"token"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type AuthServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type AuthService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:       log,
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register создает пользователя с bcrypt-хэшем пароля и сразу выдает токен.
func (a *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	const op = "service.AuthService.Register"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", in.Email),
	)
	logger.Info("registering user")

	_, err := a.userRepo.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		logger.Warn("user already exists")
		return nil, fmt.Errorf("%s: %w", op, apperr.Conflict("User already exists"))
	case !errors.Is(err, storage.ErrUserNotFound):
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Internal server error", err))
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, apperr.Internal("Internal server error", err))
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		PassHash: passHash,
	})
	if err != nil {
		// параллельная регистрация с тем же email
		if errors.Is(err, storage.ErrUserExists) {
			return nil, fmt.Errorf("%s: %w", op, apperr.Conflict("User already exists"))
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, apperr.Internal("Internal server error", err))
	}

	result, err := a.issue(user)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("user registered", slog.String("userID", user.ID.String()))
	return result, nil
}

// Login проверяет пароль и выдает токен.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (a *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "service.AuthService.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Internal server error", err))
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrInvalidCredentials)
	}

	result, err := a.issue(user)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.String("userID", user.ID.String()))
	return result, nil
}

func (a *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := security.NewToken(user, a.jwtSecret, a.tokenTTL)
	if err != nil {
		return nil, apperr.Internal("Internal server error", err)
	}
	return &AuthResult{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Phone:   user.Phone,
		IsAdmin: user.IsAdmin,
		Token:   token,
	}, nil
}
