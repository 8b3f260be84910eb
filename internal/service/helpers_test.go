package service

import (
	"context"
	"testing"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, store *memory.Store, tgID int64, balance int64) *domain.User {
	t.Helper()
	u, err := store.Users().Upsert(context.Background(), &domain.User{TelegramID: tgID, FirstName: "Test"})
	require.NoError(t, err)
	if balance > 0 {
		store.SetBalance(u.ID, balance)
		u.CoinBalance = balance
	}
	return u
}

// sequenceTokens returns the given tokens in order, then repeats the last one
func sequenceTokens(tokens ...string) func(int) (string, error) {
	i := 0
	return func(int) (string, error) {
		tok := tokens[i]
		if i < len(tokens)-1 {
			i++
		}
		return tok, nil
	}
}
