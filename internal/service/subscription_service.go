package service

import (
	"context"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/metrics"

	"github.com/google/uuid"
)

type SubscriptionRepo interface {
	ConfirmSubscription(ctx context.Context, g domain.SubscriptionGrant) (domain.SubscriptionResult, error)
}

// SubscriptionService pays the one-time channel subscription bonus and the
// pending referral reward that rides on it
type SubscriptionService struct {
	repo          SubscriptionRepo
	audit         *AuditService
	bonus         int64
	referralBonus int64
}

func NewSubscriptionService(repo SubscriptionRepo, audit *AuditService, bonus, referralBonus int64) *SubscriptionService {
	return &SubscriptionService{repo: repo, audit: audit, bonus: bonus, referralBonus: referralBonus}
}

// IsMemberStatus reports whether a chat-member status counts as subscribed
func IsMemberStatus(status string) bool {
	switch status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}

func (s *SubscriptionService) Bonus() int64 { return s.bonus }

func (s *SubscriptionService) ReferralBonus() int64 { return s.referralBonus }

// Confirm records the subscription. Only the first confirmation pays out.
func (s *SubscriptionService) Confirm(ctx context.Context, user *domain.User, pendingReferrer *uuid.UUID) (domain.SubscriptionResult, error) {
	res, err := s.repo.ConfirmSubscription(ctx, domain.SubscriptionGrant{
		UserID:        user.ID,
		Bonus:         s.bonus,
		ReferrerID:    pendingReferrer,
		ReferralBonus: s.referralBonus,
	})
	if err != nil {
		return res, mapLedgerErr(err)
	}

	if res.FirstConfirmation {
		metrics.SubscriptionBonuses.Inc()
		metrics.Coins.WithLabelValues("credit", string(domain.TxBonus)).Add(float64(s.bonus))
		if res.ReferralRewarded {
			metrics.ReferralRewards.Inc()
			metrics.Coins.WithLabelValues("credit", string(domain.TxReferral)).Add(float64(s.referralBonus))
		}
		s.audit.LogSubscription(ctx, user.TelegramID, s.bonus, res, s.referralBonus)
	}
	return res, nil
}
