package bot

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/service"
	"telegram_docbot/internal/session"
)

func (b *Bot) handlePurchaseStart(ctx context.Context, ev Event, s *session.Session) error {
	s.Flow = session.PurchaseFlow{}
	return b.reply(ctx, ev, coinPurchaseMessage(b.svc.Payments.Packs()), backKeyboard())
}

// handlePurchasePackage issues a payment code for the typed coin amount.
// Anything that is not a known pack re-prompts and keeps the flow.
func (b *Bot) handlePurchasePackage(ctx context.Context, ev Event, s *session.Session) error {
	coins, ok := leadingInt(ev.Text)
	if !ok {
		return b.reply(ctx, ev, invalidPackageMessage(b.svc.Payments.Packs()), nil)
	}

	user, err := b.currentUser(ctx, ev)
	if err != nil {
		return err
	}
	code, err := b.svc.Payments.IssueCode(ctx, user, coins)
	if errors.Is(err, service.ErrUnknownPackage) {
		return b.reply(ctx, ev, invalidPackageMessage(b.svc.Payments.Packs()), nil)
	}
	if err != nil {
		return err
	}

	s.Reset()
	b.notify(ctx, b.svc.Payments.AdminID(), adminPaymentNotification(user, code), nil)
	if err := b.reply(ctx, ev, paymentCodeMessage(code), mainMenuKeyboard()); err != nil {
		// the code exists already; keep the reset so a retry does not issue another
		logger.FromContext(ctx).Warn("payment code not delivered", "code", code.Code, "error", err)
	}
	return nil
}

var leadingDigits = regexp.MustCompile(`^\d+`)

// leadingInt reads the number at the start of s, so "100 coin" is 100
func leadingInt(s string) (int64, bool) {
	m := leadingDigits.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	return n, err == nil
}
