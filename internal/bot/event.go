package bot

import (
	"strings"

	"telegram_docbot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type EventKind string

const (
	EventCommand  EventKind = "command"
	EventCallback EventKind = "callback"
	EventText     EventKind = "text"
)

// Event is one inbound update reduced to what the handlers read
type Event struct {
	Kind     EventKind
	UpdateID int
	ChatID   int64
	From     domain.User // TelegramID and display fields only

	Text    string // message text, trimmed
	Command string // without the slash
	Args    string

	CallbackID   string
	CallbackData string
}

func (e Event) UserID() int64 {
	return e.From.TelegramID
}

// eventFromUpdate converts updates the bot cares about; everything else
// (edits, channel posts, stickers) is dropped
func eventFromUpdate(u tgbotapi.Update) (Event, bool) {
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		cq := u.CallbackQuery
		ev := Event{
			Kind:         EventCallback,
			UpdateID:     u.UpdateID,
			ChatID:       cq.From.ID,
			From:         senderFrom(cq.From),
			CallbackID:   cq.ID,
			CallbackData: cq.Data,
		}
		if cq.Message != nil && cq.Message.Chat != nil {
			ev.ChatID = cq.Message.Chat.ID
		}
		return ev, true

	case u.Message != nil && u.Message.From != nil && u.Message.Chat != nil && u.Message.Text != "":
		m := u.Message
		ev := Event{
			Kind:     EventText,
			UpdateID: u.UpdateID,
			ChatID:   m.Chat.ID,
			From:     senderFrom(m.From),
			Text:     strings.TrimSpace(m.Text),
		}
		if m.IsCommand() {
			ev.Kind = EventCommand
			ev.Command = m.Command()
			ev.Args = strings.TrimSpace(m.CommandArguments())
		}
		return ev, true
	}
	return Event{}, false
}

func senderFrom(u *tgbotapi.User) domain.User {
	return domain.User{
		TelegramID: u.ID,
		Username:   u.UserName,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
}
