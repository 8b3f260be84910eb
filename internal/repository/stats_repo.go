package repository

import (
	"context"
	"time"

	"telegram_docbot/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Stats collects the admin overview; since marks the start of "today"
func (r *StatsRepository) Stats(ctx context.Context, since time.Time) (*domain.Stats, error) {
	s := &domain.Stats{}

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE channel_subscriber),
		       COALESCE(SUM(coin_balance), 0)
		FROM users
	`).Scan(&s.TotalUsers, &s.Subscribers, &s.CoinsInCirculation)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE NOT used AND expires_at > now()),
		       COUNT(*) FILTER (WHERE used)
		FROM payment_codes
	`).Scan(&s.ActiveCodes, &s.RedeemedCodes)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= $1)
		FROM content_orders
	`, since).Scan(&s.TotalOrders, &s.OrdersToday)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(coins), 0) FROM coin_transactions
		WHERE tx_type = 'purchase' AND created_at >= $1
	`, since).Scan(&s.CoinsPurchasedToday)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM referral_uses`).Scan(&s.TotalReferrals)
	if err != nil {
		return nil, err
	}
	return s, nil
}
