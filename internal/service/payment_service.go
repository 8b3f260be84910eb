package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/metrics"
	"telegram_docbot/internal/repository"
)

var (
	ErrCodeNotFound   = errors.New("payment code not found")
	ErrForbidden      = errors.New("admin only")
	ErrUnknownPackage = errors.New("unknown coin package")
)

const paymentCodeLength = 6

type PaymentCodeRepo interface {
	Create(ctx context.Context, p *domain.PaymentCode) error
	GetByCode(ctx context.Context, code string) (*domain.PaymentCode, error)
	Redeem(ctx context.Context, code string, now time.Time) (*domain.Redemption, error)
}

// PaymentService issues payment codes and lets the admin redeem them
type PaymentService struct {
	codes   PaymentCodeRepo
	audit   *AuditService
	packs   []domain.CoinPack
	ttl     time.Duration
	adminID int64
	now     func() time.Time
	token   func(n int) (string, error)
}

func NewPaymentService(codes PaymentCodeRepo, audit *AuditService, packs []domain.CoinPack, ttl time.Duration, adminID int64) *PaymentService {
	return &PaymentService{
		codes:   codes,
		audit:   audit,
		packs:   packs,
		ttl:     ttl,
		adminID: adminID,
		now:     time.Now,
		token:   randomToken,
	}
}

func (s *PaymentService) Packs() []domain.CoinPack {
	return s.packs
}

func (s *PaymentService) IsAdmin(tgID int64) bool {
	return tgID == s.adminID
}

func (s *PaymentService) AdminID() int64 {
	return s.adminID
}

// IssueCode creates an active code for the pack with the given coin amount
func (s *PaymentService) IssueCode(ctx context.Context, buyer *domain.User, coins int64) (*domain.PaymentCode, error) {
	pack, ok := domain.FindCoinPack(s.packs, coins)
	if !ok {
		return nil, ErrUnknownPackage
	}

	now := s.now()
	var lastErr error
	for i := 0; i < maxTokenAttempts; i++ {
		code, err := s.token(paymentCodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate payment code: %w", err)
		}
		p := &domain.PaymentCode{
			Code:      code,
			UserID:    buyer.ID,
			AmountUSD: pack.USD,
			Coins:     pack.Coins,
			ExpiresAt: now.Add(s.ttl),
		}
		err = s.codes.Create(ctx, p)
		if errors.Is(err, repository.ErrDuplicate) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("store payment code: %w", err)
		}

		metrics.PaymentCodes.WithLabelValues("issued").Inc()
		s.audit.LogCodeIssued(ctx, buyer.TelegramID, p)
		return p, nil
	}
	return nil, fmt.Errorf("store payment code: %w", lastErr)
}

// VerifyCode redeems an active code and credits its coins exactly once.
// Absent, used and expired codes all fail with ErrCodeNotFound.
func (s *PaymentService) VerifyCode(ctx context.Context, adminTgID int64, code string) (*domain.Redemption, error) {
	if !s.IsAdmin(adminTgID) {
		s.audit.LogAdminDenied(ctx, adminTgID, domain.AuditActionCodeVerify)
		return nil, ErrForbidden
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCodeNotFound
	}

	red, err := s.codes.Redeem(ctx, code, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		metrics.PaymentCodes.WithLabelValues("rejected").Inc()
		s.audit.LogCodeRejected(ctx, adminTgID, code, s.rejectReason(ctx, code))
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redeem payment code: %w", err)
	}

	metrics.PaymentCodes.WithLabelValues("redeemed").Inc()
	metrics.Coins.WithLabelValues("credit", string(domain.TxPurchase)).Add(float64(red.Code.Coins))
	s.audit.LogCodeVerified(ctx, adminTgID, red)
	return red, nil
}

// rejectReason looks the code up again for the audit trail only
func (s *PaymentService) rejectReason(ctx context.Context, code string) string {
	p, err := s.codes.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.CodeAbsent
	}
	if err != nil {
		logger.FromContext(ctx).Warn("payment code lookup failed", "error", err)
		return "unknown"
	}
	return p.State(s.now())
}
