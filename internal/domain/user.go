package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                uuid.UUID `db:"id" json:"id"`
	TelegramID        int64     `db:"telegram_id" json:"telegram_id"`
	Username          string    `db:"username" json:"username,omitempty"`
	FirstName         string    `db:"first_name" json:"first_name,omitempty"`
	LastName          string    `db:"last_name" json:"last_name,omitempty"`
	CoinBalance       int64     `db:"coin_balance" json:"coin_balance"`
	ChannelSubscriber bool      `db:"channel_subscriber" json:"channel_subscriber"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName prefers the first name, then @username
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "—"
}
