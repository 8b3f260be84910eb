package domain

import "time"

// AuditLog represents an audit log entry for tracking important actions
type AuditLog struct {
	ID         int64                  `db:"id" json:"id"`
	TelegramID int64                  `db:"telegram_id" json:"telegram_id"`
	Action     string                 `db:"action" json:"action"`
	Category   string                 `db:"category" json:"category"`
	Details    map[string]interface{} `db:"details" json:"details"`
	CreatedAt  time.Time              `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryPayment  = "payment"
	AuditCategoryReferral = "referral"
	AuditCategoryBalance  = "balance"
	AuditCategoryAdmin    = "admin"
	AuditCategoryOrder    = "order"
)

// Audit actions
const (
	// Payment code actions
	AuditActionCodeIssue  = "payment_code_issue"
	AuditActionCodeVerify = "payment_code_verify"
	AuditActionCodeReject = "payment_code_reject"

	// Reward actions
	AuditActionSubscriptionBonus = "subscription_bonus"
	AuditActionReferralReward    = "referral_reward"

	// Order actions
	AuditActionOrderPlace = "order_place"

	// Admin actions
	AuditActionAdminDenied = "admin_denied"
)
