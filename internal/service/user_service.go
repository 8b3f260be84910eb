package service

import (
	"context"
	"fmt"

	"telegram_docbot/internal/domain"

	"github.com/google/uuid"
)

type UserRepo interface {
	GetByTelegramID(ctx context.Context, tgID int64) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Upsert(ctx context.Context, u *domain.User) (*domain.User, error)
}

type UserService struct {
	users UserRepo
}

func NewUserService(users UserRepo) *UserService {
	return &UserService{users: users}
}

// Ensure returns the stored user for the sender, creating it on first contact
func (s *UserService) Ensure(ctx context.Context, sender domain.User) (*domain.User, error) {
	if sender.TelegramID == 0 {
		return nil, fmt.Errorf("ensure user: empty telegram id")
	}
	u, err := s.users.Upsert(ctx, &sender)
	if err != nil {
		return nil, fmt.Errorf("ensure user %d: %w", sender.TelegramID, err)
	}
	return u, nil
}

func (s *UserService) GetByTelegramID(ctx context.Context, tgID int64) (*domain.User, error) {
	u, err := s.users.GetByTelegramID(ctx, tgID)
	return u, mapLedgerErr(err)
}
