package bot

import (
	"testing"

	"telegram_docbot/internal/config"
	"telegram_docbot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFromUpdate_Command(t *testing.T) {
	u := tgbotapi.Update{
		UpdateID: 7,
		Message: &tgbotapi.Message{
			From:     &tgbotapi.User{ID: 42, FirstName: "Ali", UserName: "ali"},
			Chat:     &tgbotapi.Chat{ID: 42},
			Text:     "/start refABCD1234",
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
		},
	}

	ev, ok := eventFromUpdate(u)
	require.True(t, ok)
	assert.Equal(t, EventCommand, ev.Kind)
	assert.Equal(t, "start", ev.Command)
	assert.Equal(t, "refABCD1234", ev.Args)
	assert.Equal(t, int64(42), ev.UserID())
	assert.Equal(t, "ali", ev.From.Username)
}

func TestEventFromUpdate_TextIsTrimmed(t *testing.T) {
	u := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 1},
			Chat: &tgbotapi.Chat{ID: 1},
			Text: "  My topic \n",
		},
	}

	ev, ok := eventFromUpdate(u)
	require.True(t, ok)
	assert.Equal(t, EventText, ev.Kind)
	assert.Equal(t, "My topic", ev.Text)
}

func TestEventFromUpdate_Callback(t *testing.T) {
	u := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: 5},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 99}},
			Data:    callbackCheckSubscription,
		},
	}

	ev, ok := eventFromUpdate(u)
	require.True(t, ok)
	assert.Equal(t, EventCallback, ev.Kind)
	assert.Equal(t, int64(99), ev.ChatID)
	assert.Equal(t, "cb", ev.CallbackID)
}

func TestEventFromUpdate_Ignored(t *testing.T) {
	_, ok := eventFromUpdate(tgbotapi.Update{EditedMessage: &tgbotapi.Message{Text: "x"}})
	assert.False(t, ok)

	_, ok = eventFromUpdate(tgbotapi.Update{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}}})
	assert.False(t, ok, "messages without text")
}

func TestPageKeyboard_LabelsResolve(t *testing.T) {
	kb := pageKeyboard(config.DefaultPagePrices)

	var labels []string
	for _, row := range kb.Keyboard {
		for _, b := range row {
			if b.Text != btnBack {
				labels = append(labels, b.Text)
			}
		}
	}
	require.Equal(t, []string{"6-8 (130 coin)", "9-10 (150 coin)", "11-15 (200 coin)"}, labels)

	for i, l := range labels {
		p, ok := domain.FindPagePrice(config.DefaultPagePrices, l)
		require.True(t, ok, l)
		assert.Equal(t, config.DefaultPagePrices[i], p)
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"100", 100, true},
		{"500 coin", 500, true},
		{"coin 100", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
