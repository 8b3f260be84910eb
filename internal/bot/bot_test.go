package bot

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStart_InsufficientBalance(t *testing.T) {
	h := newHarness(t)
	h.user(t, 1, 0)

	h.text(1, btnEssay)

	assert.Contains(t, h.gw.last(1), "Coin yetmadi")
	assert.Contains(t, h.gw.last(1), "130")
	assert.Equal(t, int64(0), h.balance(t, 1))
	assert.True(t, h.session(t, 1).Idle())
}

func TestOrderFlow_Complete(t *testing.T) {
	h := newHarness(t)
	u := h.user(t, 1, 150)

	h.text(1, btnEssay)
	h.text(1, "X")
	h.text(1, "Y")
	h.text(1, "Z")
	h.text(1, "W")
	h.text(1, "9-10 (150 coin)")
	h.text(1, btnPDF)

	assert.Equal(t, int64(0), h.balance(t, 1))
	assert.True(t, h.session(t, 1).Idle())

	orders := h.store.AllOrders()
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, u.ID, o.UserID)
	assert.Equal(t, domain.ContentEssay, o.ContentType)
	assert.Equal(t, "X", o.Title)
	assert.Equal(t, "Y", o.Institute)
	assert.Equal(t, "Z", o.Subject)
	assert.Equal(t, "W", o.Direction)
	assert.Equal(t, 9, o.Pages)
	assert.Equal(t, domain.FormatPDF, o.Format)
	assert.Equal(t, int64(150), o.CostCoins)
	assert.Equal(t, domain.OrderPending, o.Status)

	assert.Contains(t, h.gw.last(1), "So'rov yuborildi")

	assert.Eventually(t, func() bool {
		return h.gw.last(1) == msgOrderCompleted
	}, time.Second, 5*time.Millisecond)
}

func TestOrderFlow_InvalidInputKeepsStep(t *testing.T) {
	h := newHarness(t)
	h.user(t, 1, 500)

	h.text(1, btnSlides)
	h.text(1, "Topic")
	h.text(1, "Inst")
	h.text(1, "Subj")
	h.text(1, "Dir")

	h.text(1, "5-7")
	assert.Equal(t, msgInvalidPage, h.gw.last(1))
	f, ok := h.session(t, 1).Order()
	require.True(t, ok)
	assert.Equal(t, session.StepPages, f.Step)

	h.text(1, "11-15")
	h.text(1, "pdf")
	assert.Equal(t, msgInvalidFormat, h.gw.last(1))
	f, ok = h.session(t, 1).Order()
	require.True(t, ok)
	assert.Equal(t, session.StepFormat, f.Step)
	assert.Equal(t, int64(200), f.Cost)

	h.text(1, btnDOCX)
	assert.Equal(t, int64(300), h.balance(t, 1))
	require.Len(t, h.store.AllOrders(), 1)
	assert.Equal(t, domain.FormatDOCX, h.store.AllOrders()[0].Format)
}

func TestOrderFlow_BalanceDrainedBeforeFinalize(t *testing.T) {
	h := newHarness(t)
	h.user(t, 1, 130)

	h.text(1, btnEssay)
	for _, s := range []string{"a", "b", "c", "d"} {
		h.text(1, s)
	}
	h.text(1, "11-15 (200 coin)")
	h.text(1, btnPDF)

	assert.Contains(t, h.gw.last(1), "Coin yetmadi")
	assert.Equal(t, int64(130), h.balance(t, 1))
	assert.Empty(t, h.store.AllOrders())
	assert.True(t, h.session(t, 1).Idle())
}

func TestBack_ClearsFlowAndCancelsNotice(t *testing.T) {
	h := newHarness(t)
	h.bot.opts.CompletionDelay = time.Hour
	h.user(t, 1, 300)

	h.text(1, btnEssay)
	for _, s := range []string{"a", "b", "c", "d", "6-8"} {
		h.text(1, s)
	}
	h.text(1, btnPDF)
	assert.Equal(t, 1, h.sched.Pending())

	h.text(1, btnPresentation)
	h.text(1, "half done")
	h.text(1, btnBack)

	assert.True(t, h.session(t, 1).Idle())
	assert.Equal(t, msgMainMenu, h.gw.last(1))
	assert.Equal(t, 0, h.sched.Pending())
	assert.Equal(t, int64(170), h.balance(t, 1))
}

func TestIdleText_Ignored(t *testing.T) {
	h := newHarness(t)
	h.user(t, 1, 0)

	h.text(1, "hello")
	h.text(1, "/unknown")

	assert.Empty(t, h.gw.to(1))
}

func TestStart_UnsubscribedUserGetsChannelPrompt(t *testing.T) {
	h := newHarness(t)

	h.text(1, "/start")

	assert.Contains(t, h.gw.last(1), "@"+testChannel)
	u, err := h.svc.Users.GetByTelegramID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, u.ChannelSubscriber)
}

func TestReferral_RewardedOnFirstSubscription(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	referrer := h.user(t, 10, 0)
	code, err := h.svc.Referrals.GetOrCreateCode(ctx, referrer.ID)
	require.NoError(t, err)

	h.text(20, "/start ref"+code.Code)
	require.NotNil(t, h.session(t, 20).PendingReferrer)
	assert.Equal(t, referrer.ID, *h.session(t, 20).PendingReferrer)

	h.gw.setStatus(20, "member")
	h.callback(20, callbackCheckSubscription)

	assert.Equal(t, int64(200), h.balance(t, 20))
	assert.Equal(t, int64(50), h.balance(t, 10))
	assert.Nil(t, h.session(t, 20).PendingReferrer)
	assert.Equal(t, msgSubscribed, h.gw.lastAnswer().Text)
	assert.Contains(t, h.gw.last(20), "https://t.me/docbot?start=ref")
	assert.Contains(t, h.gw.last(10), "+50")

	uses := h.store.ReferralUses()
	require.Len(t, uses, 1)
	assert.Equal(t, referrer.ID, uses[0].ReferrerID)

	// second confirmation pays nothing
	h.callback(20, callbackCheckSubscription)
	assert.Equal(t, int64(200), h.balance(t, 20))
	assert.Equal(t, int64(50), h.balance(t, 10))
	assert.Equal(t, msgAlreadySubscribed, h.gw.lastAnswer().Text)
	assert.Len(t, h.store.ReferralUses(), 1)
}

func TestReferral_SelfLinkIgnored(t *testing.T) {
	h := newHarness(t)
	u := h.user(t, 10, 0)
	code, err := h.svc.Referrals.GetOrCreateCode(context.Background(), u.ID)
	require.NoError(t, err)

	h.text(10, "/start ref"+code.Code)
	assert.Nil(t, h.session(t, 10).PendingReferrer)
}

func TestCheckSubscription_NotMember(t *testing.T) {
	h := newHarness(t)
	h.text(1, "/start")
	h.gw.setStatus(1, "left")

	h.callback(1, callbackCheckSubscription)

	ans := h.gw.lastAnswer()
	assert.Equal(t, msgNotSubscribed, ans.Text)
	assert.True(t, ans.Alert)
	assert.Equal(t, int64(0), h.balance(t, 1))
}

func TestCheckSubscription_GatewayErrorKeepsPendingReferrer(t *testing.T) {
	h := newHarness(t)
	referrer := h.user(t, 10, 0)
	code, err := h.svc.Referrals.GetOrCreateCode(context.Background(), referrer.ID)
	require.NoError(t, err)
	h.text(20, "/start ref"+code.Code)

	// no status registered for 20: the lookup fails
	h.callback(20, callbackCheckSubscription)

	ans := h.gw.lastAnswer()
	assert.Equal(t, msgCallbackError, ans.Text)
	assert.True(t, ans.Alert)
	assert.NotNil(t, h.session(t, 20).PendingReferrer)
}

var codePattern = regexp.MustCompile(`Kod: <code>([A-Z0-9]{6})</code>`)

func TestPurchaseAndAdminVerify(t *testing.T) {
	h := newHarness(t)
	h.user(t, 1, 0)

	h.text(1, btnPurchase)
	assert.Contains(t, h.gw.last(1), "100 coin = $10")

	h.text(1, "250")
	assert.Contains(t, h.gw.last(1), "Noto'g'ri paket")
	_, purchasing := h.session(t, 1).Flow.(session.PurchaseFlow)
	assert.True(t, purchasing)

	h.text(1, "100")
	m := codePattern.FindStringSubmatch(h.gw.last(1))
	require.Len(t, m, 2)
	code := m[1]
	assert.True(t, h.session(t, 1).Idle())
	assert.Contains(t, h.gw.last(testAdminID), code)

	h.text(testAdminID, "/admin")
	assert.Equal(t, msgAdminPanel, h.gw.last(testAdminID))
	h.text(testAdminID, btnAdminVerify)
	h.text(testAdminID, "  "+code+" ")

	assert.Contains(t, h.gw.last(testAdminID), "To'lov tasdiqlandi")
	assert.Contains(t, h.gw.last(1), "+100 coin")
	assert.Equal(t, int64(100), h.balance(t, 1))
	assert.True(t, h.session(t, testAdminID).Idle())

	u, err := h.svc.Users.GetByTelegramID(context.Background(), 1)
	require.NoError(t, err)
	history, err := h.svc.Ledger.History(context.Background(), u.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.TxPurchase, history[0].Type)

	// the code is spent; a second attempt reads as unknown
	h.text(testAdminID, btnAdminVerify)
	h.text(testAdminID, code)
	assert.Equal(t, msgCodeNotFound, h.gw.last(testAdminID))
	assert.Equal(t, int64(100), h.balance(t, 1))
	_, verifying := h.session(t, testAdminID).Flow.(session.VerifyFlow)
	assert.True(t, verifying)
}

func TestAdmin_NonAdminRejected(t *testing.T) {
	h := newHarness(t)
	h.user(t, 1, 0)

	for _, input := range []string{"/admin", btnAdminVerify, btnAdminStats} {
		h.text(1, input)
		assert.Equal(t, msgNotAdmin, h.gw.last(1), input)
	}
	assert.True(t, h.session(t, 1).Idle())

	var denied int
	for _, l := range h.store.AuditLogs() {
		if l.Action == domain.AuditActionAdminDenied {
			denied++
		}
	}
	assert.Equal(t, 3, denied)
}

func TestAdmin_Stats(t *testing.T) {
	h := newHarness(t)
	h.user(t, 1, 40)
	h.user(t, 2, 60)

	h.text(testAdminID, btnAdminStats)
	assert.Contains(t, h.gw.last(testAdminID), "Statistika")
	assert.Contains(t, h.gw.last(testAdminID), "Muomaladagi coin: 100")
}

func TestBalance_ShowsHistory(t *testing.T) {
	h := newHarness(t)
	h.text(1, "/start")
	h.gw.setStatus(1, "creator")
	h.callback(1, callbackCheckSubscription)

	h.text(1, btnBalance)
	msg := h.gw.last(1)
	assert.Contains(t, msg, "Sizning balans: 200 coin")
	assert.Contains(t, msg, "+200")
}

func TestReferralScreen(t *testing.T) {
	h := newHarness(t)
	h.user(t, 1, 0)

	h.text(1, btnReferral)
	first := h.gw.last(1)
	h.text(1, btnReferral)

	assert.Contains(t, first, "Taklif qilganlar: 0")
	assert.Equal(t, first, h.gw.last(1))
}

func TestHandleEvent_SendFailureLeavesSession(t *testing.T) {
	h := newHarness(t)
	h.user(t, 1, 300)
	h.text(1, btnEssay)

	h.gw.mu.Lock()
	h.gw.sendErr = errors.New("telegram down")
	h.gw.mu.Unlock()
	h.text(1, "Title")

	f, ok := h.session(t, 1).Order()
	require.True(t, ok)
	assert.Equal(t, session.StepTitle, f.Step)
	assert.Empty(t, f.Title)
}

func TestRun_ShardsByUser(t *testing.T) {
	h := newHarness(t)
	h.user(t, 1, 0)
	h.user(t, 2, 0)

	events := make(chan Event)
	done := make(chan struct{})
	go func() {
		h.bot.Run(context.Background(), events)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		events <- Event{Kind: EventText, ChatID: 1, From: sender(1), Text: btnBalance}
		events <- Event{Kind: EventText, ChatID: 2, From: sender(2), Text: btnBalance}
	}
	close(events)
	<-done
	h.bot.Stop(time.Second)

	assert.Len(t, h.gw.to(1), 3)
	assert.Len(t, h.gw.to(2), 3)
}

func TestShard(t *testing.T) {
	assert.Equal(t, shard(7, 4), shard(7, 4))
	for _, id := range []int64{0, 1, 99, -5} {
		s := shard(id, 3)
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, 3)
	}
}
