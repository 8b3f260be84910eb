package repository

import (
	"context"
	"errors"

	"telegram_docbot/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, telegram_id, username, first_name, last_name, coin_balance, channel_subscriber, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.TelegramID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.CoinBalance,
		&u.ChannelSubscriber,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, tgID int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, tgID))
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// Upsert creates the user on first contact and refreshes the display fields
// afterwards. Balance and subscription flag are never touched here.
func (r *UserRepository) Upsert(ctx context.Context, u *domain.User) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (telegram_id, username, first_name, last_name)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (telegram_id) DO UPDATE
		 SET username = EXCLUDED.username,
		     first_name = EXCLUDED.first_name,
		     last_name = EXCLUDED.last_name,
		     updated_at = now()
		 RETURNING `+userColumns,
		u.TelegramID, u.Username, u.FirstName, u.LastName,
	))
}

// Delete removes the user and, by cascade, everything they own
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// ConfirmSubscription flips channel_subscriber false->true. Only the call that
// performs the flip pays the bonus and, when a referrer is given, the referral
// reward. Later calls report the current balance and change nothing.
func (r *UserRepository) ConfirmSubscription(ctx context.Context, g domain.SubscriptionGrant) (domain.SubscriptionResult, error) {
	var res domain.SubscriptionResult

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return res, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var flipped uuid.UUID
	err = tx.QueryRow(ctx,
		`UPDATE users SET channel_subscriber = TRUE, updated_at = now()
		 WHERE id = $1 AND channel_subscriber = FALSE
		 RETURNING id`,
		g.UserID,
	).Scan(&flipped)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx, `SELECT coin_balance FROM users WHERE id = $1`, g.UserID).Scan(&res.Balance)
		if errors.Is(err, pgx.ErrNoRows) {
			return res, ErrNotFound
		}
		return res, err
	}
	if err != nil {
		return res, err
	}

	res.FirstConfirmation = true
	res.Balance, err = credit(ctx, tx, g.UserID, g.Bonus, domain.TxBonus, "Kanalga obuna bonusi")
	if err != nil {
		return res, err
	}

	if g.ReferrerID != nil && *g.ReferrerID != g.UserID {
		if err := rewardReferrer(ctx, tx, g, &res); err != nil {
			return res, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return res, err
	}
	return res, nil
}

func rewardReferrer(ctx context.Context, tx pgx.Tx, g domain.SubscriptionGrant, res *domain.SubscriptionResult) error {
	referrerID := *g.ReferrerID

	var referrerTgID int64
	err := tx.QueryRow(ctx, `SELECT telegram_id FROM users WHERE id = $1`, referrerID).Scan(&referrerTgID)
	if errors.Is(err, pgx.ErrNoRows) {
		// referrer was deleted since attribution
		return nil
	}
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO referral_uses (referrer_id, referred_id, reward)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (referred_id) DO NOTHING`,
		referrerID, g.UserID, g.ReferralBonus,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	if _, err := credit(ctx, tx, referrerID, g.ReferralBonus, domain.TxReferral, "Referral bonus"); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE referral_codes SET total_referrals = total_referrals + 1 WHERE user_id = $1`,
		referrerID,
	); err != nil {
		return err
	}

	res.ReferralRewarded = true
	res.ReferrerID = referrerID
	res.ReferrerTgID = referrerTgID
	return nil
}
