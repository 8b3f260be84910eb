package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/repository"

	"github.com/google/uuid"
)

const (
	referralCodeLength = 8
	referralPrefix     = "ref"
)

type ReferralRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.ReferralCode, error)
	GetByCode(ctx context.Context, code string) (*domain.ReferralCode, error)
	Create(ctx context.Context, c *domain.ReferralCode) (*domain.ReferralCode, error)
	Stats(ctx context.Context, userID uuid.UUID) (domain.ReferralStats, error)
}

type ReferralService struct {
	repo  ReferralRepo
	token func(n int) (string, error)
}

func NewReferralService(repo ReferralRepo) *ReferralService {
	return &ReferralService{repo: repo, token: randomToken}
}

// GetOrCreateCode returns the user's referral code, creating it on first use.
// Repeated and concurrent calls return the same code.
func (s *ReferralService) GetOrCreateCode(ctx context.Context, userID uuid.UUID) (*domain.ReferralCode, error) {
	c, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	var lastErr error
	for i := 0; i < maxTokenAttempts; i++ {
		code, err := s.token(referralCodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate referral code: %w", err)
		}
		c, err := s.repo.Create(ctx, &domain.ReferralCode{UserID: userID, Code: code})
		if errors.Is(err, repository.ErrDuplicate) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("store referral code: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("store referral code: %w", lastErr)
}

// ResolveReferrer reads a /start payload of the form ref<CODE>. It returns nil
// for subscribed users, malformed payloads, unknown codes and self-referrals.
func (s *ReferralService) ResolveReferrer(ctx context.Context, payload string, user *domain.User) (*uuid.UUID, error) {
	if user.ChannelSubscriber {
		return nil, nil
	}
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, referralPrefix) {
		return nil, nil
	}
	code := strings.TrimPrefix(payload, referralPrefix)
	if code == "" {
		return nil, nil
	}

	c, err := s.repo.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.UserID == user.ID {
		return nil, nil
	}
	referrer := c.UserID
	return &referrer, nil
}

func (s *ReferralService) Stats(ctx context.Context, userID uuid.UUID) (domain.ReferralStats, error) {
	return s.repo.Stats(ctx, userID)
}

// ReferralLink builds the deep link that starts the bot with ref<CODE>
func ReferralLink(botUsername, code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%s", botUsername, referralPrefix, code)
}
