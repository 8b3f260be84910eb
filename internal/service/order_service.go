package service

import (
	"context"
	"errors"
	"strings"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/metrics"

	"github.com/google/uuid"
)

var ErrInvalidOrder = errors.New("invalid order")

type OrderRepo interface {
	Place(ctx context.Context, o *domain.ContentOrder) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ContentOrder, error)
}

type OrderService struct {
	orders OrderRepo
	audit  *AuditService
	prices []domain.PagePrice
}

func NewOrderService(orders OrderRepo, audit *AuditService, prices []domain.PagePrice) *OrderService {
	return &OrderService{orders: orders, audit: audit, prices: prices}
}

func (s *OrderService) Prices() []domain.PagePrice {
	return s.prices
}

// MinCost is the balance a user needs before an order flow may start
func (s *OrderService) MinCost() int64 {
	return domain.MinOrderCost(s.prices)
}

func (s *OrderService) CanStart(balance int64) bool {
	return balance >= s.MinCost()
}

// Place debits the cost and stores the order as pending. Nothing is stored
// when the balance is short.
func (s *OrderService) Place(ctx context.Context, tgID int64, o *domain.ContentOrder) (int64, error) {
	if err := validateOrder(o); err != nil {
		return 0, err
	}
	balance, err := s.orders.Place(ctx, o)
	if err != nil {
		return 0, mapLedgerErr(err)
	}

	metrics.Orders.WithLabelValues(string(o.ContentType)).Inc()
	metrics.Coins.WithLabelValues("debit", string(domain.TxOrder)).Add(float64(o.CostCoins))
	s.audit.LogOrder(ctx, tgID, o)
	return balance, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ContentOrder, error) {
	return s.orders.ListByUser(ctx, userID, limit)
}

func validateOrder(o *domain.ContentOrder) error {
	if !o.ContentType.Valid() || o.CostCoins <= 0 || o.Pages <= 0 {
		return ErrInvalidOrder
	}
	for _, f := range []string{o.Title, o.Institute, o.Subject, o.Direction} {
		if strings.TrimSpace(f) == "" {
			return ErrInvalidOrder
		}
	}
	switch o.Format {
	case domain.FormatPDF, domain.FormatDOCX, domain.FormatPPTX:
		return nil
	}
	return ErrInvalidOrder
}
