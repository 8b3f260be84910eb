package domain

import (
	"time"

	"github.com/google/uuid"
)

type TxType string

const (
	TxPurchase TxType = "purchase"
	TxBonus    TxType = "bonus"
	TxReferral TxType = "referral"
	TxOrder    TxType = "order"
)

// CoinTransaction is an append-only ledger entry; Coins is the signed delta
type CoinTransaction struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Coins       int64     `db:"coins" json:"coins"`
	Type        TxType    `db:"tx_type" json:"tx_type"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
