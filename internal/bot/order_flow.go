package bot

import (
	"context"
	"errors"
	"time"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/service"
	"telegram_docbot/internal/session"
)

// orderStart opens the order flow for ct when the balance covers the
// cheapest page range. A short balance leaves the session as it was.
func (b *Bot) orderStart(ct domain.ContentType) handlerFunc {
	return func(ctx context.Context, ev Event, s *session.Session) error {
		user, err := b.currentUser(ctx, ev)
		if err != nil {
			return err
		}
		if !b.svc.Orders.CanStart(user.CoinBalance) {
			return b.reply(ctx, ev, insufficientCoinsMessage(b.svc.Orders.MinCost()), purchaseKeyboard())
		}

		s.Flow = session.NewOrderFlow(ct)
		return b.reply(ctx, ev, stepPrompts[session.StepTitle], backKeyboard())
	}
}

// handleOrderStep stores the answer for the current step and prompts for the
// next one. Invalid page or format input re-prompts without advancing.
func (b *Bot) handleOrderStep(ctx context.Context, ev Event, s *session.Session) error {
	f, ok := s.Order()
	if !ok {
		return nil
	}
	text := ev.Text

	switch f.Step {
	case session.StepTitle, session.StepInstitute, session.StepSubject, session.StepDirection:
		if text == "" {
			return b.reply(ctx, ev, stepPrompts[f.Step], nil)
		}
		switch f.Step {
		case session.StepTitle:
			f.Title = text
		case session.StepInstitute:
			f.Institute = text
		case session.StepSubject:
			f.Subject = text
		case session.StepDirection:
			f.Direction = text
		}
		f.Step = f.Step.Next()
		s.Flow = f

		if f.Step == session.StepPages {
			return b.reply(ctx, ev, stepPrompts[f.Step], pageKeyboard(b.svc.Orders.Prices()))
		}
		return b.reply(ctx, ev, stepPrompts[f.Step], nil)

	case session.StepPages:
		price, ok := domain.FindPagePrice(b.svc.Orders.Prices(), text)
		if !ok {
			return b.reply(ctx, ev, msgInvalidPage, nil)
		}
		f.PageRange = price.Range
		f.Pages = price.Pages
		f.Cost = price.Coins
		f.Step = session.StepFormat
		s.Flow = f
		return b.reply(ctx, ev, stepPrompts[f.Step], formatKeyboard())

	case session.StepFormat:
		format, ok := domain.ParseFormat(text)
		if !ok {
			return b.reply(ctx, ev, msgInvalidFormat, nil)
		}
		return b.finalizeOrder(ctx, ev, s, f, format)
	}
	return nil
}

// finalizeOrder debits the cost and stores the order, then schedules the
// completion notice. Once the order is placed the flow is cleared even if
// the confirmation cannot be delivered.
func (b *Bot) finalizeOrder(ctx context.Context, ev Event, s *session.Session, f session.OrderFlow, format domain.Format) error {
	user, err := b.currentUser(ctx, ev)
	if err != nil {
		return err
	}

	order := &domain.ContentOrder{
		UserID:      user.ID,
		ContentType: f.ContentType,
		Title:       f.Title,
		Institute:   f.Institute,
		Subject:     f.Subject,
		Direction:   f.Direction,
		Pages:       f.Pages,
		Format:      format,
		CostCoins:   f.Cost,
	}
	_, err = b.svc.Orders.Place(ctx, ev.UserID(), order)
	if errors.Is(err, service.ErrInsufficientFunds) {
		s.Reset()
		return b.reply(ctx, ev, insufficientCoinsMessage(f.Cost), purchaseKeyboard())
	}
	if err != nil {
		return err
	}
	s.Reset()

	log := logger.FromContext(ctx)
	log.Info("order placed", "order_id", order.ID, "content_type", order.ContentType, "cost", order.CostCoins)

	if err := b.reply(ctx, ev, orderSubmittedMessage(f.Title, f.PageRange, f.Cost), nil); err != nil {
		log.Warn("order confirmation not delivered", "order_id", order.ID, "error", err)
	}
	b.scheduleCompletion(order, ev.ChatID, ev.UserID())
	return nil
}

// scheduleCompletion sends the ready notice after the configured delay.
// The notice is cancelled if the user goes back or the process stops.
func (b *Bot) scheduleCompletion(order *domain.ContentOrder, chatID, userID int64) {
	log := b.log.With("order_id", order.ID, "user_id", userID)
	b.sched.Schedule(order.ID, userID, b.opts.CompletionDelay, func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := b.gw.Send(ctx, Message{ChatID: chatID, Text: msgOrderCompleted, Markup: mainMenuKeyboard()}); err != nil {
			log.Warn("completion notice not delivered", "error", err)
			return
		}
		log.Info("completion notice sent")
	})
}
