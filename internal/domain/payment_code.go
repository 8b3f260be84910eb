package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentCode struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Code      string          `db:"code" json:"code"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	AmountUSD decimal.Decimal `db:"amount_usd" json:"amount_usd"`
	Coins     int64           `db:"coins" json:"coins"`
	Used      bool            `db:"used" json:"used"`
	ExpiresAt time.Time       `db:"expires_at" json:"expires_at"`
	UsedAt    *time.Time      `db:"used_at" json:"used_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Code states. Expired is a predicate on expires_at, never stored.
const (
	CodeActive  = "active"
	CodeUsed    = "used"
	CodeExpired = "expired"
	CodeAbsent  = "absent"
)

// Redeemable reports whether the code can still be verified at now
func (p *PaymentCode) Redeemable(now time.Time) bool {
	return !p.Used && now.Before(p.ExpiresAt)
}

func (p *PaymentCode) State(now time.Time) string {
	switch {
	case p.Used:
		return CodeUsed
	case !now.Before(p.ExpiresAt):
		return CodeExpired
	default:
		return CodeActive
	}
}

// Redemption is the result of a successful verification
type Redemption struct {
	Code           *PaymentCode
	UserTelegramID int64
	NewBalance     int64
}
