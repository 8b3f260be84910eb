package service

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateCode_Idempotent(t *testing.T) {
	store := memory.New()
	s := NewReferralService(store.Referrals())
	u := newUser(t, store, 1, 0)

	first, err := s.GetOrCreateCode(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), first.Code)

	second, err := s.GetOrCreateCode(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
}

func TestGetOrCreateCode_Concurrent(t *testing.T) {
	store := memory.New()
	s := NewReferralService(store.Referrals())
	u := newUser(t, store, 1, 0)

	codes := make([]string, 8)
	var wg sync.WaitGroup
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := s.GetOrCreateCode(context.Background(), u.ID)
			if err == nil {
				codes[i] = c.Code
			}
		}(i)
	}
	wg.Wait()

	for _, c := range codes {
		assert.Equal(t, codes[0], c)
	}
}

func TestGetOrCreateCode_Collision(t *testing.T) {
	store := memory.New()
	s := NewReferralService(store.Referrals())
	a := newUser(t, store, 1, 0)
	b := newUser(t, store, 2, 0)

	s.token = sequenceTokens("SAMECODE")
	_, err := s.GetOrCreateCode(context.Background(), a.ID)
	require.NoError(t, err)

	s.token = sequenceTokens("SAMECODE", "OTHERONE")
	c, err := s.GetOrCreateCode(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "OTHERONE", c.Code)
}

func TestResolveReferrer(t *testing.T) {
	store := memory.New()
	s := NewReferralService(store.Referrals())
	ctx := context.Background()

	referrer := newUser(t, store, 1, 0)
	s.token = sequenceTokens("REFCODE1")
	_, err := s.GetOrCreateCode(ctx, referrer.ID)
	require.NoError(t, err)

	newcomer := newUser(t, store, 2, 0)
	subscribed := &domain.User{ID: newcomer.ID, ChannelSubscriber: true}

	tests := []struct {
		name    string
		payload string
		user    *domain.User
		want    bool
	}{
		{"valid", "refREFCODE1", newcomer, true},
		{"unknown code", "refNOPE", newcomer, false},
		{"no prefix", "REFCODE1", newcomer, false},
		{"empty code", "ref", newcomer, false},
		{"self referral", "refREFCODE1", referrer, false},
		{"already subscribed", "refREFCODE1", subscribed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ResolveReferrer(ctx, tt.payload, tt.user)
			require.NoError(t, err)
			if tt.want {
				require.NotNil(t, got)
				assert.Equal(t, referrer.ID, *got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestReferralLink(t *testing.T) {
	assert.Equal(t, "https://t.me/docbot?start=refABCD1234", ReferralLink("docbot", "ABCD1234"))
}
