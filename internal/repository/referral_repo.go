package repository

import (
	"context"
	"errors"

	"telegram_docbot/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

func scanReferralCode(row pgx.Row) (*domain.ReferralCode, error) {
	var c domain.ReferralCode
	err := row.Scan(&c.ID, &c.UserID, &c.Code, &c.TotalReferrals, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ReferralRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.ReferralCode, error) {
	return scanReferralCode(r.db.QueryRow(ctx,
		`SELECT id, user_id, code, total_referrals, created_at FROM referral_codes WHERE user_id = $1`, userID))
}

func (r *ReferralRepository) GetByCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	return scanReferralCode(r.db.QueryRow(ctx,
		`SELECT id, user_id, code, total_referrals, created_at FROM referral_codes WHERE code = $1`, code))
}

// Create stores c unless the user already has a code, in which case the
// existing one wins. ErrDuplicate means the token itself collided.
func (r *ReferralRepository) Create(ctx context.Context, c *domain.ReferralCode) (*domain.ReferralCode, error) {
	created, err := scanReferralCode(r.db.QueryRow(ctx,
		`INSERT INTO referral_codes (user_id, code)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING
		 RETURNING id, user_id, code, total_referrals, created_at`,
		c.UserID, c.Code,
	))
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if errors.Is(err, ErrNotFound) {
		return r.GetByUserID(ctx, c.UserID)
	}
	return created, err
}

// Stats returns how many users the referrer brought in and what they earned
func (r *ReferralRepository) Stats(ctx context.Context, userID uuid.UUID) (domain.ReferralStats, error) {
	var stats domain.ReferralStats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(reward), 0) FROM referral_uses WHERE referrer_id = $1`,
		userID,
	).Scan(&stats.TotalReferrals, &stats.TotalEarned)
	return stats, err
}
