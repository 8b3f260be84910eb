package service

import (
	"context"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/logger"
)

type AuditRepo interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// AuditService handles audit logging. Failures are logged and never
// propagated to the caller.
type AuditService struct {
	repo AuditRepo
}

// NewAuditService creates a new audit service
func NewAuditService(repo AuditRepo) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, tgID int64, action, category string, details map[string]interface{}) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		TelegramID: tgID,
		Action:     action,
		Category:   category,
		Details:    details,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		logger.FromContext(ctx).Error("failed to create audit log", "error", err, "action", action, "telegram_id", tgID)
	}
}

// LogCodeIssued records a new payment code for a buyer
func (s *AuditService) LogCodeIssued(ctx context.Context, buyerTgID int64, p *domain.PaymentCode) {
	s.Log(ctx, buyerTgID, domain.AuditActionCodeIssue, domain.AuditCategoryPayment, map[string]interface{}{
		"code":       p.Code,
		"coins":      p.Coins,
		"amount_usd": p.AmountUSD.StringFixed(2),
		"expires_at": p.ExpiresAt,
	})
}

// LogCodeVerified records a successful redemption by the admin
func (s *AuditService) LogCodeVerified(ctx context.Context, adminTgID int64, r *domain.Redemption) {
	s.Log(ctx, adminTgID, domain.AuditActionCodeVerify, domain.AuditCategoryPayment, map[string]interface{}{
		"code":        r.Code.Code,
		"coins":       r.Code.Coins,
		"buyer_tg_id": r.UserTelegramID,
		"new_balance": r.NewBalance,
	})
}

// LogCodeRejected keeps the precise reason the admin is not shown
func (s *AuditService) LogCodeRejected(ctx context.Context, adminTgID int64, code, reason string) {
	s.Log(ctx, adminTgID, domain.AuditActionCodeReject, domain.AuditCategoryPayment, map[string]interface{}{
		"code":   code,
		"reason": reason,
	})
}

// LogAdminDenied records a non-admin reaching an admin-only action
func (s *AuditService) LogAdminDenied(ctx context.Context, tgID int64, action string) {
	s.Log(ctx, tgID, domain.AuditActionAdminDenied, domain.AuditCategoryAdmin, map[string]interface{}{
		"action": action,
	})
}

// LogSubscription records bonus and referral payouts of a first confirmation
func (s *AuditService) LogSubscription(ctx context.Context, tgID int64, bonus int64, res domain.SubscriptionResult, referralBonus int64) {
	s.Log(ctx, tgID, domain.AuditActionSubscriptionBonus, domain.AuditCategoryBalance, map[string]interface{}{
		"bonus":   bonus,
		"balance": res.Balance,
	})
	if res.ReferralRewarded {
		s.Log(ctx, res.ReferrerTgID, domain.AuditActionReferralReward, domain.AuditCategoryReferral, map[string]interface{}{
			"referred_tg_id": tgID,
			"reward":         referralBonus,
		})
	}
}

// LogOrder records a placed content order
func (s *AuditService) LogOrder(ctx context.Context, tgID int64, o *domain.ContentOrder) {
	s.Log(ctx, tgID, domain.AuditActionOrderPlace, domain.AuditCategoryOrder, map[string]interface{}{
		"order_id":     o.ID.String(),
		"content_type": o.ContentType,
		"cost":         o.CostCoins,
		"pages":        o.Pages,
		"format":       o.Format,
	})
}
