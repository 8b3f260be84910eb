package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telegram_docbot/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentCodeColumns = `id, code, user_id, amount_usd, coins, used, expires_at, used_at, created_at`

type PaymentCodeRepository struct {
	db *pgxpool.Pool
}

func NewPaymentCodeRepository(db *pgxpool.Pool) *PaymentCodeRepository {
	return &PaymentCodeRepository{db: db}
}

func scanPaymentCode(row pgx.Row) (*domain.PaymentCode, error) {
	var p domain.PaymentCode
	err := row.Scan(&p.ID, &p.Code, &p.UserID, &p.AmountUSD, &p.Coins, &p.Used, &p.ExpiresAt, &p.UsedAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create stores a freshly generated code; ErrDuplicate means the token collided
func (r *PaymentCodeRepository) Create(ctx context.Context, p *domain.PaymentCode) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO payment_codes (code, user_id, amount_usd, coins, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		p.Code, p.UserID, p.AmountUSD, p.Coins, p.ExpiresAt,
	).Scan(&p.ID, &p.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PaymentCodeRepository) GetByCode(ctx context.Context, code string) (*domain.PaymentCode, error) {
	return scanPaymentCode(r.db.QueryRow(ctx,
		`SELECT `+paymentCodeColumns+` FROM payment_codes WHERE code = $1`, code))
}

// Redeem marks an active code used and credits its coins in one transaction.
// Absent, used and expired codes all return ErrNotFound.
func (r *PaymentCodeRepository) Redeem(ctx context.Context, code string, now time.Time) (*domain.Redemption, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := scanPaymentCode(tx.QueryRow(ctx,
		`UPDATE payment_codes SET used = TRUE, used_at = $2
		 WHERE code = $1 AND used = FALSE AND expires_at > $2
		 RETURNING `+paymentCodeColumns,
		code, now,
	))
	if err != nil {
		return nil, err
	}

	red := &domain.Redemption{Code: p}
	red.NewBalance, err = credit(ctx, tx, p.UserID, p.Coins, domain.TxPurchase,
		fmt.Sprintf("%d coin sotib olindi ($%s)", p.Coins, p.AmountUSD.StringFixed(2)))
	if err != nil {
		return nil, err
	}
	if err := tx.QueryRow(ctx, `SELECT telegram_id FROM users WHERE id = $1`, p.UserID).Scan(&red.UserTelegramID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return red, nil
}
