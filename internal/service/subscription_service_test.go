package service

import (
	"context"
	"testing"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubscriptionService(store *memory.Store) *SubscriptionService {
	return NewSubscriptionService(store.Users(), NewAuditService(store.Audit()), 200, 50)
}

func TestConfirm_BonusOnlyOnce(t *testing.T) {
	store := memory.New()
	s := newSubscriptionService(store)
	ctx := context.Background()
	u := newUser(t, store, 1, 0)

	res, err := s.Confirm(ctx, u, nil)
	require.NoError(t, err)
	assert.True(t, res.FirstConfirmation)
	assert.Equal(t, int64(200), res.Balance)

	res, err = s.Confirm(ctx, u, nil)
	require.NoError(t, err)
	assert.False(t, res.FirstConfirmation)
	assert.Equal(t, int64(200), res.Balance)

	txs, err := store.Transactions().ListByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxBonus, txs[0].Type)

	stored, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.ChannelSubscriber)
}

func TestConfirm_RewardsReferrerOnce(t *testing.T) {
	store := memory.New()
	s := newSubscriptionService(store)
	refs := NewReferralService(store.Referrals())
	ctx := context.Background()

	referrer := newUser(t, store, 1, 0)
	_, err := refs.GetOrCreateCode(ctx, referrer.ID)
	require.NoError(t, err)
	newcomer := newUser(t, store, 2, 0)

	res, err := s.Confirm(ctx, newcomer, &referrer.ID)
	require.NoError(t, err)
	assert.True(t, res.ReferralRewarded)
	assert.Equal(t, referrer.TelegramID, res.ReferrerTgID)

	_, err = s.Confirm(ctx, newcomer, &referrer.ID)
	require.NoError(t, err)

	uses := store.ReferralUses()
	require.Len(t, uses, 1)
	assert.Equal(t, referrer.ID, uses[0].ReferrerID)
	assert.Equal(t, newcomer.ID, uses[0].ReferredID)
	assert.Equal(t, int64(50), uses[0].Reward)

	bal, err := store.Balances().Balance(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), bal)

	code, err := refs.GetOrCreateCode(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, code.TotalReferrals)

	stats, err := refs.Stats(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReferralStats{TotalReferrals: 1, TotalEarned: 50}, stats)
}

func TestConfirm_NoRewardWithoutFirstConfirmation(t *testing.T) {
	store := memory.New()
	s := newSubscriptionService(store)
	ctx := context.Background()

	referrer := newUser(t, store, 1, 0)
	newcomer := newUser(t, store, 2, 0)

	_, err := s.Confirm(ctx, newcomer, nil)
	require.NoError(t, err)

	res, err := s.Confirm(ctx, newcomer, &referrer.ID)
	require.NoError(t, err)
	assert.False(t, res.ReferralRewarded)
	assert.Empty(t, store.ReferralUses())
}

func TestConfirm_SelfReferralIgnored(t *testing.T) {
	store := memory.New()
	s := newSubscriptionService(store)
	u := newUser(t, store, 1, 0)

	res, err := s.Confirm(context.Background(), u, &u.ID)
	require.NoError(t, err)
	assert.False(t, res.ReferralRewarded)
	assert.Equal(t, int64(200), res.Balance)
}

func TestIsMemberStatus(t *testing.T) {
	for status, want := range map[string]bool{
		"member":        true,
		"administrator": true,
		"creator":       true,
		"left":          false,
		"kicked":        false,
		"restricted":    false,
		"":              false,
	} {
		assert.Equal(t, want, IsMemberStatus(status), status)
	}
}
