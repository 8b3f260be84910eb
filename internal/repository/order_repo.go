package repository

import (
	"context"
	"fmt"

	"telegram_docbot/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// Place debits the order cost and inserts the order atomically. The order is
// never stored unless the debit succeeded.
func (r *OrderRepository) Place(ctx context.Context, o *domain.ContentOrder) (int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	balance, err := debit(ctx, tx, o.UserID, o.CostCoins, domain.TxOrder,
		fmt.Sprintf("%s: %s", o.ContentType, o.Title))
	if err != nil {
		return 0, err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO content_orders
		   (user_id, content_type, title, institute, subject, direction, pages, format, cost_coins)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, status, created_at`,
		o.UserID, o.ContentType, o.Title, o.Institute, o.Subject, o.Direction, o.Pages, o.Format, o.CostCoins,
	).Scan(&o.ID, &o.Status, &o.CreatedAt)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ContentOrder, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, content_type, title, institute, subject, direction, pages, format, cost_coins, status, created_at
		 FROM content_orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.ContentOrder
	for rows.Next() {
		var o domain.ContentOrder
		if err := rows.Scan(&o.ID, &o.UserID, &o.ContentType, &o.Title, &o.Institute, &o.Subject,
			&o.Direction, &o.Pages, &o.Format, &o.CostCoins, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
