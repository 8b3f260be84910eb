package bot

import (
	"fmt"

	"telegram_docbot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Button labels. The dispatcher matches these exactly.
const (
	btnEssay        = "📝 Referat"
	btnPresentation = "🎯 Mustaqil ish"
	btnSlides       = "🖼️ Slaydlar"
	btnPurchase     = "💰 Coin sotib olish"
	btnReferral     = "👥 Referral"
	btnBalance      = "📊 Balans"
	btnBack         = "⬅️ Orqaga"

	btnAdminVerify = "🔐 To'lov kodini kiriting"
	btnAdminStats  = "📈 Statistika"

	btnPDF  = "📄 PDF"
	btnDOCX = "📋 DOCX"

	btnJoinChannel       = "📢 Kanalga o'tish"
	btnCheckSubscription = "✅ Obuna bo'ldim"
)

const callbackCheckSubscription = "check_subscription"

// contentButtons maps order-type buttons to the content type they start
var contentButtons = map[string]domain.ContentType{
	btnEssay:        domain.ContentEssay,
	btnPresentation: domain.ContentPresentation,
	btnSlides:       domain.ContentSlides,
}

func replyKeyboard(rows ...[]string) tgbotapi.ReplyKeyboardMarkup {
	kb := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		kb = append(kb, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	markup := tgbotapi.NewReplyKeyboard(kb...)
	markup.ResizeKeyboard = true
	return markup
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard(
		[]string{btnEssay, btnPresentation},
		[]string{btnSlides, btnPurchase},
		[]string{btnReferral, btnBalance},
	)
}

func backKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard([]string{btnBack})
}

func purchaseKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard([]string{btnPurchase}, []string{btnBack})
}

func formatKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard([]string{btnPDF, btnDOCX}, []string{btnBack})
}

func adminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard([]string{btnAdminVerify}, []string{btnAdminStats}, []string{btnBack})
}

// pageKeyboard lays out the price table two buttons per row
func pageKeyboard(prices []domain.PagePrice) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]string
	for i := 0; i < len(prices); i += 2 {
		row := []string{pageLabel(prices[i])}
		if i+1 < len(prices) {
			row = append(row, pageLabel(prices[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, []string{btnBack})
	return replyKeyboard(rows...)
}

func pageLabel(p domain.PagePrice) string {
	return fmt.Sprintf("%s (%d coin)", p.Range, p.Coins)
}

func subscriptionKeyboard(channelUsername string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(btnJoinChannel, "https://t.me/"+channelUsername),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnCheckSubscription, callbackCheckSubscription),
		),
	)
}
