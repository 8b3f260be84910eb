package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReferralCode struct {
	ID             uuid.UUID `db:"id" json:"id"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Code           string    `db:"code" json:"code"`
	TotalReferrals int       `db:"total_referrals" json:"total_referrals"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type ReferralUse struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ReferrerID uuid.UUID `db:"referrer_id" json:"referrer_id"`
	ReferredID uuid.UUID `db:"referred_id" json:"referred_id"`
	Reward     int64     `db:"reward" json:"reward"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type ReferralStats struct {
	TotalReferrals int   `json:"total_referrals"`
	TotalEarned    int64 `json:"total_earned"`
}

// SubscriptionGrant describes what a subscription confirmation should pay out
type SubscriptionGrant struct {
	UserID        uuid.UUID
	Bonus         int64
	ReferrerID    *uuid.UUID
	ReferralBonus int64
}

// SubscriptionResult reports what a confirmation actually did
type SubscriptionResult struct {
	FirstConfirmation bool
	Balance           int64
	ReferralRewarded  bool
	ReferrerID        uuid.UUID
	ReferrerTgID      int64
}
