package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/storage"
)

// SessionService resolves the account behind a session token. The role
// itself travels in the token; this exists for the /api/session/user view.
type SessionService interface {
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
}

type sessionService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
}

func NewSessionService(log *slog.Logger, userRepo storage.UserStorage) SessionService {
	return &sessionService{log: log, userRepo: userRepo}
}

func (s *sessionService) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	const op = "service.SessionService.CurrentUser"

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get user", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
