package repository

import (
	"context"
	"errors"

	"telegram_docbot/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BalanceRepository mutates coin balances. Every mutation is a single
// conditional UPDATE plus a coin_transactions row in the same database
// transaction, so concurrent writers never lose an update.
type BalanceRepository struct {
	db *pgxpool.Pool
}

func NewBalanceRepository(db *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT coin_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return balance, err
}

// Credit adds amount and records the transaction
func (r *BalanceRepository) Credit(ctx context.Context, userID uuid.UUID, amount int64, txType domain.TxType, description string) (int64, error) {
	return r.inTx(ctx, func(tx pgx.Tx) (int64, error) {
		return credit(ctx, tx, userID, amount, txType, description)
	})
}

// Debit removes amount if the balance covers it
func (r *BalanceRepository) Debit(ctx context.Context, userID uuid.UUID, amount int64, txType domain.TxType, description string) (int64, error) {
	return r.inTx(ctx, func(tx pgx.Tx) (int64, error) {
		return debit(ctx, tx, userID, amount, txType, description)
	})
}

func (r *BalanceRepository) inTx(ctx context.Context, fn func(pgx.Tx) (int64, error)) (int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	balance, err := fn(tx)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

func credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, txType domain.TxType, description string) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx,
		`UPDATE users SET coin_balance = coin_balance + $1, updated_at = now()
		 WHERE id = $2
		 RETURNING coin_balance`,
		amount, userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	t := &domain.CoinTransaction{UserID: userID, Coins: amount, Type: txType, Description: description}
	if err := createTransaction(ctx, tx, t); err != nil {
		return 0, err
	}
	return balance, nil
}

func debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, txType domain.TxType, description string) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx,
		`UPDATE users SET coin_balance = coin_balance - $1, updated_at = now()
		 WHERE id = $2 AND coin_balance >= $1
		 RETURNING coin_balance`,
		amount, userID,
	).Scan(&balance)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, err
		}
		// no row: either the user is gone or the balance is short
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrNotFound
		}
		return 0, ErrInsufficientFunds
	}

	t := &domain.CoinTransaction{UserID: userID, Coins: -amount, Type: txType, Description: description}
	if err := createTransaction(ctx, tx, t); err != nil {
		return 0, err
	}
	return balance, nil
}
