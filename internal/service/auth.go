package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bereketg/artisan-market/internal/auth"
	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

type AuthServiceInterface interface {
	Register(ctx context.Context, email, password, name, phone string, role models.Role) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	tokenTTL time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:      log,
		userRepo: userRepo,
		tokenTTL: tokenTTL,
	}
}

// Register creates an account with the requested role. The role is fixed
// here and never changes afterwards.
func (a *AuthService) Register(ctx context.Context, email, password, name, phone string, role models.Role) (*models.User, error) {
	const op = "auth.Register"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
		slog.String("role", string(role)),
	)

	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrInvalidRole, role)
	}

	// bcrypt adds its own salt
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Email:    email,
		PassHash: passHash,
		Name:     name,
		Phone:    phone,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			logger.Warn("email already registered")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, nil
}

// Login checks the password against the stored hash and issues a JWT whose
// claims carry the account role.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	// auth.NewToken reads the signing secret from JWT_SECRET itself
	token, err := auth.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}
