package bot

import (
	"context"
	"fmt"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/service"
	"telegram_docbot/internal/session"
)

// handleStart registers the user and remembers a referral deep link until
// the subscription is confirmed
func (b *Bot) handleStart(ctx context.Context, ev Event, s *session.Session) error {
	user, err := b.svc.Users.Ensure(ctx, ev.From)
	if err != nil {
		return err
	}

	referrer, err := b.svc.Referrals.ResolveReferrer(ctx, ev.Args, user)
	if err != nil {
		return fmt.Errorf("resolve referrer: %w", err)
	}
	if referrer != nil {
		s.PendingReferrer = referrer
		logger.FromContext(ctx).Info("pending referral recorded", "referrer_id", *referrer)
	}

	if !user.ChannelSubscriber {
		return b.reply(ctx, ev, subscriptionRequiredMessage(b.opts.ChannelUsername), subscriptionKeyboard(b.opts.ChannelUsername))
	}
	return b.reply(ctx, ev, welcomeMessage(firstName(user), user.CoinBalance), mainMenuKeyboard())
}

func (b *Bot) handleCheckSubscription(ctx context.Context, ev Event, s *session.Session) error {
	status, err := b.gw.MemberStatus(ctx, b.opts.ChannelID, ev.UserID())
	if err != nil {
		return err
	}
	if !service.IsMemberStatus(status) {
		b.answer(ctx, ev, msgNotSubscribed, true)
		return nil
	}

	user, err := b.svc.Users.Ensure(ctx, ev.From)
	if err != nil {
		return err
	}
	res, err := b.svc.Subscriptions.Confirm(ctx, user, s.PendingReferrer)
	if err != nil {
		return fmt.Errorf("confirm subscription: %w", err)
	}
	s.PendingReferrer = nil

	if res.FirstConfirmation {
		b.answer(ctx, ev, msgSubscribed, false)
	} else {
		b.answer(ctx, ev, msgAlreadySubscribed, false)
	}
	if res.ReferralRewarded && res.ReferrerTgID != 0 {
		b.notify(ctx, res.ReferrerTgID, referrerRewardMessage(b.svc.Subscriptions.ReferralBonus()), nil)
	}

	code, err := b.svc.Referrals.GetOrCreateCode(ctx, user.ID)
	if err != nil {
		return err
	}
	link := service.ReferralLink(b.gw.BotUsername(), code.Code)
	return b.reply(ctx, ev, subscriptionConfirmedMessage(res.Balance, link, b.svc.Subscriptions.ReferralBonus()), mainMenuKeyboard())
}

func firstName(u *domain.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.DisplayName()
}
