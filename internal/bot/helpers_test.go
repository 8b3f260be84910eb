package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"telegram_docbot/internal/config"
	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/repository/memory"
	"telegram_docbot/internal/scheduler"
	"telegram_docbot/internal/service"
	"telegram_docbot/internal/session"

	"github.com/stretchr/testify/require"
)

const (
	testAdminID = int64(1000)
	testChannel = "docs_channel"
)

type callbackAnswer struct {
	ID    string
	Text  string
	Alert bool
}

type fakeGateway struct {
	mu       sync.Mutex
	sent     []Message
	answers  []callbackAnswer
	statuses map[int64]string
	sendErr  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{statuses: make(map[int64]string)}
}

func (g *fakeGateway) Send(_ context.Context, msg Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, msg)
	return nil
}

func (g *fakeGateway) AnswerCallback(_ context.Context, id, text string, alert bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answers = append(g.answers, callbackAnswer{ID: id, Text: text, Alert: alert})
	return nil
}

func (g *fakeGateway) MemberStatus(_ context.Context, _ string, userID int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	status, ok := g.statuses[userID]
	if !ok {
		return "", errors.New("member lookup failed")
	}
	return status, nil
}

func (g *fakeGateway) BotUsername() string { return "docbot" }

func (g *fakeGateway) setStatus(userID int64, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[userID] = status
}

// to returns the texts sent to chatID, oldest first
func (g *fakeGateway) to(chatID int64) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, m := range g.sent {
		if m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

func (g *fakeGateway) last(chatID int64) string {
	msgs := g.to(chatID)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func (g *fakeGateway) lastAnswer() callbackAnswer {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.answers) == 0 {
		return callbackAnswer{}
	}
	return g.answers[len(g.answers)-1]
}

type harness struct {
	bot      *Bot
	gw       *fakeGateway
	store    *memory.Store
	sessions *session.MemoryStore
	sched    *scheduler.Scheduler
	svc      Services
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.New()
	audit := service.NewAuditService(store.Audit())
	svc := Services{
		Users:         service.NewUserService(store.Users()),
		Ledger:        service.NewLedgerService(store.Balances(), store.Transactions()),
		Payments:      service.NewPaymentService(store.PaymentCodes(), audit, config.DefaultCoinPacks, 24*time.Hour, testAdminID),
		Referrals:     service.NewReferralService(store.Referrals()),
		Subscriptions: service.NewSubscriptionService(store.Users(), audit, 200, 50),
		Orders:        service.NewOrderService(store.Orders(), audit, config.DefaultPagePrices),
		Admin:         service.NewAdminService(store.Stats()),
		Audit:         audit,
	}

	gw := newFakeGateway()
	sessions := session.NewMemoryStore(time.Hour)
	sched := scheduler.New()
	t.Cleanup(func() { sched.Stop(context.Background()) })

	b := New(gw, svc, sessions, sched, nil, Options{
		ChannelID:       "@" + testChannel,
		ChannelUsername: testChannel,
		Workers:         2,
		CompletionDelay: 20 * time.Millisecond,
	})
	return &harness{bot: b, gw: gw, store: store, sessions: sessions, sched: sched, svc: svc}
}

func sender(tgID int64) domain.User {
	return domain.User{TelegramID: tgID, FirstName: "Ali", Username: "ali"}
}

func (h *harness) text(tgID int64, text string) {
	ev := Event{Kind: EventText, ChatID: tgID, From: sender(tgID), Text: text}
	if strings.HasPrefix(text, "/") {
		ev.Kind = EventCommand
		cmd, args, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
		ev.Command = cmd
		ev.Args = args
	}
	h.bot.HandleEvent(context.Background(), ev)
}

func (h *harness) callback(tgID int64, data string) {
	h.bot.HandleEvent(context.Background(), Event{
		Kind:         EventCallback,
		ChatID:       tgID,
		From:         sender(tgID),
		CallbackID:   "cb-1",
		CallbackData: data,
	})
}

// user registers tgID and sets its balance
func (h *harness) user(t *testing.T, tgID int64, balance int64) *domain.User {
	t.Helper()
	u, err := h.svc.Users.Ensure(context.Background(), sender(tgID))
	require.NoError(t, err)
	h.store.SetBalance(u.ID, balance)
	return u
}

func (h *harness) balance(t *testing.T, tgID int64) int64 {
	t.Helper()
	u, err := h.svc.Users.GetByTelegramID(context.Background(), tgID)
	require.NoError(t, err)
	return u.CoinBalance
}

func (h *harness) session(t *testing.T, tgID int64) *session.Session {
	t.Helper()
	s, err := h.sessions.Get(context.Background(), tgID)
	require.NoError(t, err)
	return s
}
