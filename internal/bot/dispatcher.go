package bot

import (
	"context"
	"errors"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/service"
	"telegram_docbot/internal/session"
)

type handlerFunc func(ctx context.Context, ev Event, s *session.Session) error

// route picks exactly one handler. First match wins: commands, callbacks,
// button labels, then free text by the active flow. Unknown commands are
// treated as text. A nil handler means the event is ignored.
func (b *Bot) route(ev Event, s *session.Session) (string, handlerFunc) {
	switch ev.Kind {
	case EventCommand:
		switch ev.Command {
		case "start":
			return "start", b.handleStart
		case "admin":
			return "admin_panel", b.handleAdminPanel
		}
	case EventCallback:
		if ev.CallbackData == callbackCheckSubscription {
			return "check_subscription", b.handleCheckSubscription
		}
		return "unrouted", nil
	}

	if ct, ok := contentButtons[ev.Text]; ok {
		return "order_start", b.orderStart(ct)
	}
	switch ev.Text {
	case btnBalance:
		return "balance", b.handleBalance
	case btnReferral:
		return "referral", b.handleReferral
	case btnPurchase:
		return "purchase_start", b.handlePurchaseStart
	case btnBack:
		return "back", b.handleBack
	case btnAdminVerify:
		return "admin_verify_start", b.handleAdminVerifyStart
	case btnAdminStats:
		return "admin_stats", b.handleAdminStats
	}

	switch s.Flow.(type) {
	case session.VerifyFlow:
		return "admin_verify_code", b.handleAdminVerifyCode
	case session.PurchaseFlow:
		return "purchase_package", b.handlePurchasePackage
	case session.OrderFlow:
		return "order_step", b.handleOrderStep
	}
	return "unrouted", nil
}

// currentUser loads the sender, registering them if they skipped /start
func (b *Bot) currentUser(ctx context.Context, ev Event) (*domain.User, error) {
	u, err := b.svc.Users.GetByTelegramID(ctx, ev.UserID())
	if errors.Is(err, service.ErrUserNotFound) {
		return b.svc.Users.Ensure(ctx, ev.From)
	}
	return u, err
}
