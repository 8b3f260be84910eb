package repository

import (
	"context"
	"errors"

	"telegram_docbot/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByUser returns recent transactions for a user, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.CoinTransaction, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, coins, tx_type, description, created_at
		 FROM coin_transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.CoinTransaction
	for rows.Next() {
		var t domain.CoinTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Coins, &t.Type, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// SumByUser adds up every delta recorded for the user
func (r *TransactionRepository) SumByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(coins), 0) FROM coin_transactions WHERE user_id = $1`,
		userID,
	).Scan(&sum)
	return sum, err
}

// createTransaction inserts a transaction using the caller's database transaction
func createTransaction(ctx context.Context, q querier, t *domain.CoinTransaction) error {
	if t.UserID == uuid.Nil {
		return errors.New("transaction without user")
	}
	return q.QueryRow(ctx,
		`INSERT INTO coin_transactions (user_id, coins, tx_type, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		t.UserID, t.Coins, t.Type, t.Description,
	).Scan(&t.ID, &t.CreatedAt)
}
