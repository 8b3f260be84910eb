package bot

import (
	"context"
	"errors"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/service"
	"telegram_docbot/internal/session"
)

// denyNonAdmin answers non-admins with a rejection; it reports whether the
// caller should stop
func (b *Bot) denyNonAdmin(ctx context.Context, ev Event, action string) (bool, error) {
	if b.svc.Payments.IsAdmin(ev.UserID()) {
		return false, nil
	}
	b.svc.Audit.LogAdminDenied(ctx, ev.UserID(), action)
	return true, b.reply(ctx, ev, msgNotAdmin, nil)
}

func (b *Bot) handleAdminPanel(ctx context.Context, ev Event, _ *session.Session) error {
	if denied, err := b.denyNonAdmin(ctx, ev, "admin_panel"); denied {
		return err
	}
	return b.reply(ctx, ev, msgAdminPanel, adminKeyboard())
}

func (b *Bot) handleAdminVerifyStart(ctx context.Context, ev Event, s *session.Session) error {
	if denied, err := b.denyNonAdmin(ctx, ev, domain.AuditActionCodeVerify); denied {
		return err
	}
	s.Flow = session.VerifyFlow{}
	return b.reply(ctx, ev, msgEnterPaymentCode, backKeyboard())
}

// handleAdminVerifyCode redeems the typed code. Unknown, used and expired
// codes get the same answer and the admin may try another code.
func (b *Bot) handleAdminVerifyCode(ctx context.Context, ev Event, s *session.Session) error {
	red, err := b.svc.Payments.VerifyCode(ctx, ev.UserID(), ev.Text)
	switch {
	case errors.Is(err, service.ErrForbidden):
		s.Reset()
		return b.reply(ctx, ev, msgNotAdmin, nil)
	case errors.Is(err, service.ErrCodeNotFound):
		return b.reply(ctx, ev, msgCodeNotFound, nil)
	case err != nil:
		return err
	}

	s.Reset()
	b.NotifyRedemption(ctx, red)
	if err := b.reply(ctx, ev, paymentVerifiedMessage(red), adminKeyboard()); err != nil {
		logger.FromContext(ctx).Warn("verification reply not delivered", "code", red.Code.Code, "error", err)
	}
	return nil
}

func (b *Bot) handleAdminStats(ctx context.Context, ev Event, _ *session.Session) error {
	if denied, err := b.denyNonAdmin(ctx, ev, "admin_stats"); denied {
		return err
	}
	stats, err := b.svc.Admin.GetStats(ctx)
	if err != nil {
		return err
	}
	return b.reply(ctx, ev, statsMessage(stats), adminKeyboard())
}

// NotifyRedemption tells the buyer their coins arrived. It is also used for
// codes verified over the admin HTTP API.
func (b *Bot) NotifyRedemption(ctx context.Context, r *domain.Redemption) {
	b.notify(ctx, r.UserTelegramID, buyerCreditedMessage(r), nil)
}
