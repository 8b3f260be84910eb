package session

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"
	"time"

	"telegram_docbot/internal/domain"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepNext(t *testing.T) {
	assert.Equal(t, StepInstitute, StepTitle.Next())
	assert.Equal(t, StepSubject, StepInstitute.Next())
	assert.Equal(t, StepDirection, StepSubject.Next())
	assert.Equal(t, StepPages, StepDirection.Next())
	assert.Equal(t, StepFormat, StepPages.Next())
	assert.Equal(t, StepFormat, StepFormat.Next())
}

func TestSessionJSON_KeepsVariant(t *testing.T) {
	ref := uuid.New()
	order := NewOrderFlow(domain.ContentSlides)
	order.Step = StepPages
	order.Title = "Quantum"

	for _, flow := range []Flow{nil, PurchaseFlow{}, VerifyFlow{}, order} {
		in := &Session{UserID: 7, Flow: flow, PendingReferrer: &ref}
		b, err := json.Marshal(in)
		require.NoError(t, err)

		out := &Session{}
		require.NoError(t, json.Unmarshal(b, out))
		assert.Equal(t, flow, out.Flow)
		require.NotNil(t, out.PendingReferrer)
		assert.Equal(t, ref, *out.PendingReferrer)
	}
}

func TestSessionJSON_RejectsUnknownFlow(t *testing.T) {
	s := &Session{}
	assert.Error(t, json.Unmarshal([]byte(`{"user_id":1,"kind":"lottery"}`), s))
	assert.Error(t, json.Unmarshal([]byte(`{"user_id":1,"kind":"order"}`), s))
}

func TestReset_KeepsPendingReferrer(t *testing.T) {
	ref := uuid.New()
	s := &Session{UserID: 1, Flow: PurchaseFlow{}, PendingReferrer: &ref}
	s.Reset()
	assert.True(t, s.Idle())
	assert.NotNil(t, s.PendingReferrer)
}

func TestMemoryStore_GetSaveDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(time.Hour)

	s, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, s.Idle())

	s.Flow = NewOrderFlow(domain.ContentEssay)
	require.NoError(t, m.Save(ctx, s))

	got, err := m.Get(ctx, 1)
	require.NoError(t, err)
	f, ok := got.Order()
	require.True(t, ok)
	assert.Equal(t, StepTitle, f.Step)

	// mutations on a fetched copy are not visible until saved
	got.Reset()
	again, _ := m.Get(ctx, 1)
	assert.False(t, again.Idle())

	require.NoError(t, m.Delete(ctx, 1))
	gone, _ := m.Get(ctx, 1)
	assert.True(t, gone.Idle())
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Hour)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, &Session{UserID: 1, Flow: PurchaseFlow{}}))
	require.NoError(t, m.Save(ctx, &Session{UserID: 2, Flow: VerifyFlow{}}))

	now = now.Add(30 * time.Minute)
	require.NoError(t, m.Save(ctx, &Session{UserID: 2, Flow: VerifyFlow{}}))

	now = now.Add(45 * time.Minute)
	s, _ := m.Get(ctx, 1)
	assert.True(t, s.Idle(), "session 1 expired")
	s, _ = m.Get(ctx, 2)
	assert.False(t, s.Idle(), "session 2 refreshed")

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisStoreIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), DB: db})
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, 2*time.Second)
	userID := time.Now().UnixNano()
	defer store.Delete(ctx, userID)

	flow := NewOrderFlow(domain.ContentPresentation)
	flow.Step = StepSubject
	flow.Title = "T"
	require.NoError(t, store.Save(ctx, &Session{UserID: userID, Flow: flow}))

	got, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, flow, got.Flow)

	ttl, err := client.TTL(ctx, key(userID)).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= 2*time.Second)

	time.Sleep(2500 * time.Millisecond)
	got, err = store.Get(ctx, userID)
	require.NoError(t, err)
	assert.True(t, got.Idle())
}
