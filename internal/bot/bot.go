package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/metrics"
	"telegram_docbot/internal/scheduler"
	"telegram_docbot/internal/service"
	"telegram_docbot/internal/session"

	"github.com/google/uuid"
)

const (
	defaultWorkers        = 8
	defaultHandlerTimeout = 30 * time.Second
	queueSize             = 64
)

// Services are the domain operations the handlers call
type Services struct {
	Users         *service.UserService
	Ledger        *service.LedgerService
	Payments      *service.PaymentService
	Referrals     *service.ReferralService
	Subscriptions *service.SubscriptionService
	Orders        *service.OrderService
	Admin         *service.AdminService
	Audit         *service.AuditService
}

type Options struct {
	ChannelID       string // numeric id or @username
	ChannelUsername string // without @
	Workers         int
	CompletionDelay time.Duration
	HandlerTimeout  time.Duration
	HistoryLimit    int
}

// Bot routes updates to handlers. Updates are sharded to workers by user id,
// so each user's updates are handled one at a time in arrival order.
type Bot struct {
	gw       Gateway
	svc      Services
	sessions session.Store
	sched    *scheduler.Scheduler
	limiter  *RateLimiter
	opts     Options
	log      *slog.Logger

	queues []chan Event
	wg     sync.WaitGroup
	now    func() time.Time
}

func New(gw Gateway, svc Services, sessions session.Store, sched *scheduler.Scheduler, limiter *RateLimiter, opts Options) *Bot {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = defaultHandlerTimeout
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 5
	}
	return &Bot{
		gw:       gw,
		svc:      svc,
		sessions: sessions,
		sched:    sched,
		limiter:  limiter,
		opts:     opts,
		log:      logger.With("component", "bot"),
		now:      time.Now,
	}
}

// Run feeds events to the workers until events is closed or ctx is done.
// Queued events are still handled after Run returns; call Stop to wait.
func (b *Bot) Run(ctx context.Context, events <-chan Event) {
	b.queues = make([]chan Event, b.opts.Workers)
	for i := range b.queues {
		q := make(chan Event, queueSize)
		b.queues[i] = q
		b.wg.Add(1)
		go b.worker(q)
	}
	defer func() {
		for _, q := range b.queues {
			close(q)
		}
	}()

	b.log.Info("bot started", "workers", b.opts.Workers)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			q := b.queues[shard(ev.UserID(), len(b.queues))]
			select {
			case q <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func shard(userID int64, n int) int {
	return int(uint64(userID) % uint64(n))
}

func (b *Bot) worker(q <-chan Event) {
	defer b.wg.Done()
	for ev := range q {
		ctx, cancel := context.WithTimeout(context.Background(), b.opts.HandlerTimeout)
		b.HandleEvent(ctx, ev)
		cancel()
	}
}

// Stop waits for queued updates to drain, giving up after timeout
func (b *Bot) Stop(timeout time.Duration) {
	b.log.Info("stopping bot...")

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(timeout):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

// HandleEvent processes one update synchronously. Handler failures are logged
// and answered with a generic error; they never escape.
func (b *Bot) HandleEvent(ctx context.Context, ev Event) {
	log := b.log.With("trace_id", uuid.NewString(), "user_id", ev.UserID(), "update_id", ev.UpdateID)
	ctx = logger.IntoContext(ctx, log)

	metrics.UpdatesTotal.WithLabelValues(string(ev.Kind)).Inc()
	if !b.limiter.Allow(ctx, ev.UserID()) {
		log.Debug("update dropped by rate limiter")
		return
	}

	name := "unrouted"
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panicked", "handler", name, "panic", r, "stack", string(debug.Stack()))
			b.fail(ctx, ev, name)
		}
	}()

	var err error
	name, err = b.dispatch(ctx, ev)
	metrics.HandlerDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("handler failed", "handler", name, "error", err)
		b.fail(ctx, ev, name)
	}
}

func (b *Bot) fail(ctx context.Context, ev Event, name string) {
	metrics.HandlerErrors.WithLabelValues(name).Inc()

	var err error
	if ev.Kind == EventCallback {
		err = b.gw.AnswerCallback(ctx, ev.CallbackID, msgCallbackError, true)
	} else {
		err = b.gw.Send(ctx, Message{ChatID: ev.ChatID, Text: msgGenericError})
	}
	if err != nil {
		logger.FromContext(ctx).Warn("failed to report error to user", "error", err)
	}
}

// dispatch runs the routed handler and stores the session only when it
// succeeded, so a failed step can be retried from the same state.
func (b *Bot) dispatch(ctx context.Context, ev Event) (string, error) {
	sess, err := b.sessions.Get(ctx, ev.UserID())
	if err != nil {
		return "session", fmt.Errorf("load session: %w", err)
	}

	name, h := b.route(ev, sess)
	if h == nil {
		return name, nil
	}
	if err := h(ctx, ev, sess); err != nil {
		return name, err
	}

	sess.UpdatedAt = b.now()
	if err := b.sessions.Save(ctx, sess); err != nil {
		return name, fmt.Errorf("save session: %w", err)
	}
	return name, nil
}

// reply sends to the chat the event came from
func (b *Bot) reply(ctx context.Context, ev Event, text string, markup interface{}) error {
	return b.gw.Send(ctx, Message{ChatID: ev.ChatID, Text: text, Markup: markup})
}

// notify sends to another user; delivery failures are logged only
func (b *Bot) notify(ctx context.Context, chatID int64, text string, markup interface{}) {
	if err := b.gw.Send(ctx, Message{ChatID: chatID, Text: text, Markup: markup}); err != nil {
		logger.FromContext(ctx).Warn("notification not delivered", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) answer(ctx context.Context, ev Event, text string, alert bool) {
	if err := b.gw.AnswerCallback(ctx, ev.CallbackID, text, alert); err != nil {
		logger.FromContext(ctx).Warn("callback answer failed", "error", err)
	}
}
