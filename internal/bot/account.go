package bot

import (
	"context"

	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/service"
	"telegram_docbot/internal/session"
)

func (b *Bot) handleBalance(ctx context.Context, ev Event, _ *session.Session) error {
	user, err := b.currentUser(ctx, ev)
	if err != nil {
		return err
	}
	history, err := b.svc.Ledger.History(ctx, user.ID, b.opts.HistoryLimit)
	if err != nil {
		return err
	}
	return b.reply(ctx, ev, balanceMessage(user.CoinBalance, history), nil)
}

func (b *Bot) handleReferral(ctx context.Context, ev Event, _ *session.Session) error {
	user, err := b.currentUser(ctx, ev)
	if err != nil {
		return err
	}
	code, err := b.svc.Referrals.GetOrCreateCode(ctx, user.ID)
	if err != nil {
		return err
	}
	stats, err := b.svc.Referrals.Stats(ctx, user.ID)
	if err != nil {
		return err
	}

	link := service.ReferralLink(b.gw.BotUsername(), code.Code)
	return b.reply(ctx, ev, referralInfoMessage(code.Code, link, b.svc.Subscriptions.ReferralBonus(), stats), nil)
}

// handleBack abandons whatever flow is active. Nothing was debited yet, so
// there is nothing to refund. Pending completion notices are dropped too.
func (b *Bot) handleBack(ctx context.Context, ev Event, s *session.Session) error {
	s.Reset()
	if n := b.sched.CancelOwner(ev.UserID()); n > 0 {
		logger.FromContext(ctx).Info("cancelled pending notices", "count", n)
	}
	return b.reply(ctx, ev, msgMainMenu, mainMenuKeyboard())
}
