package service

import (
	"context"
	"errors"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/metrics"
	"telegram_docbot/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidAmount     = errors.New("invalid amount")
)

type BalanceRepo interface {
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	Credit(ctx context.Context, userID uuid.UUID, amount int64, txType domain.TxType, description string) (int64, error)
	Debit(ctx context.Context, userID uuid.UUID, amount int64, txType domain.TxType, description string) (int64, error)
}

type TransactionRepo interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.CoinTransaction, error)
}

// LedgerService handles all balance operations
type LedgerService struct {
	balances BalanceRepo
	txs      TransactionRepo
}

// NewLedgerService creates a new ledger service
func NewLedgerService(balances BalanceRepo, txs TransactionRepo) *LedgerService {
	return &LedgerService{balances: balances, txs: txs}
}

// Balance returns user's current balance
func (s *LedgerService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	b, err := s.balances.Balance(ctx, userID)
	return b, mapLedgerErr(err)
}

// AddCoins credits amount and appends a transaction row
func (s *LedgerService) AddCoins(ctx context.Context, userID uuid.UUID, amount int64, txType domain.TxType, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, err := s.balances.Credit(ctx, userID, amount, txType, description)
	if err != nil {
		return 0, mapLedgerErr(err)
	}
	metrics.Coins.WithLabelValues("credit", string(txType)).Add(float64(amount))
	return balance, nil
}

// RemoveCoins debits amount; a short balance fails with ErrInsufficientFunds
// and changes nothing
func (s *LedgerService) RemoveCoins(ctx context.Context, userID uuid.UUID, amount int64, txType domain.TxType, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, err := s.balances.Debit(ctx, userID, amount, txType, description)
	if err != nil {
		return 0, mapLedgerErr(err)
	}
	metrics.Coins.WithLabelValues("debit", string(txType)).Add(float64(amount))
	return balance, nil
}

// History returns the latest transactions, newest first
func (s *LedgerService) History(ctx context.Context, userID uuid.UUID, limit int) ([]domain.CoinTransaction, error) {
	return s.txs.ListByUser(ctx, userID, limit)
}

func mapLedgerErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	}
	return err
}
