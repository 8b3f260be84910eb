package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"telegram_docbot/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message is an outbound text. Markup is a tgbotapi reply or inline keyboard,
// or nil to leave the current keyboard in place.
type Message struct {
	ChatID int64
	Text   string
	Markup interface{}
}

// Gateway is the messaging platform as seen by the handlers
type Gateway interface {
	Send(ctx context.Context, msg Message) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	MemberStatus(ctx context.Context, channel string, userID int64) (string, error)
	BotUsername() string
}

// TelegramGateway talks to the Bot API via long polling
type TelegramGateway struct {
	api *tgbotapi.BotAPI
	log *slog.Logger
}

func NewTelegramGateway(token string) (*TelegramGateway, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "telegram")
	log.Info("bot authorized", "username", api.Self.UserName)
	return &TelegramGateway{api: api, log: log}, nil
}

func (g *TelegramGateway) BotUsername() string {
	return g.api.Self.UserName
}

func (g *TelegramGateway) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	m.ParseMode = tgbotapi.ModeHTML
	m.DisableWebPagePreview = true
	if msg.Markup != nil {
		m.ReplyMarkup = msg.Markup
	}
	if _, err := g.api.Send(m); err != nil {
		return fmt.Errorf("send message to %d: %w", msg.ChatID, err)
	}
	return nil
}

func (g *TelegramGateway) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cb := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	if _, err := g.api.Request(cb); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// MemberStatus accepts a numeric chat id or an @username
func (g *TelegramGateway) MemberStatus(ctx context.Context, channel string, userID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	chat := tgbotapi.ChatConfigWithUser{UserID: userID}
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		chat.ChatID = id
	} else {
		chat.SuperGroupUsername = "@" + strings.TrimPrefix(channel, "@")
	}

	member, err := g.api.GetChatMember(tgbotapi.GetChatMemberConfig{ChatConfigWithUser: chat})
	if err != nil {
		return "", fmt.Errorf("get chat member: %w", err)
	}
	return member.Status, nil
}

// Updates streams converted events until ctx is cancelled
func (g *TelegramGateway) Updates(ctx context.Context) <-chan Event {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := g.api.GetUpdatesChan(u)
	out := make(chan Event)

	go func() {
		defer close(out)
		g.log.Info("starting bot update loop")
		for {
			select {
			case <-ctx.Done():
				g.log.Info("stopping bot update loop")
				g.api.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := eventFromUpdate(update)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					g.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()
	return out
}
