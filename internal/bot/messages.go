package bot

import (
	"fmt"
	"html"
	"strings"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/session"
)

// Message texts are sent with HTML parse mode, so anything typed by a user
// goes through esc.

const (
	msgGenericError      = "❌ Xato! Iltimos, keyinroq qayta urining."
	msgNotAdmin          = "❌ Siz admin emassiz!"
	msgAdminPanel        = "👨‍💼 Admin Panel"
	msgEnterPaymentCode  = "📝 To'lov kodini kiriting:"
	msgCodeNotFound      = "❌ Kod topilmadi yoki muddati o'tgan!"
	msgInvalidPackage    = "❌ Noto'g'ri paket! Iltimos, %s kiriting."
	msgInvalidPage       = "❌ Noto'g'ri tanlash! Iltimos, tugmalardan foydalaning."
	msgInvalidFormat     = "❌ Noto'g'ri format! Iltimos, tugmalardan foydalaning."
	msgMainMenu          = "Asosiy menyu:"
	msgOrderCompleted    = "✅ Hujjat tayyor!\n\n(AI integratsiya qo'shilmagan)"
	msgAlreadySubscribed = "Siz allaqachon obunachisiz!"
	msgSubscribed        = "✅ Kanalga obuna bo'ldingiz!"
	msgNotSubscribed     = "❌ Siz hali kanalga obuna bo'lmagansiz!"
	msgCallbackError     = "❌ Xato!"
)

var stepPrompts = map[session.Step]string{
	session.StepTitle:     "📝 Mavzu nomini kiriting:",
	session.StepInstitute: "🏛️ Institut nomini kiriting:",
	session.StepSubject:   "📚 Fan nomini kiriting:",
	session.StepDirection: "🎓 Yo'nalish nomini kiriting:",
	session.StepPages:     "📖 Sahifa sonini tanlang:",
	session.StepFormat:    "📄 Format tanlang:",
}

func esc(s string) string {
	return html.EscapeString(s)
}

func welcomeMessage(name string, balance int64) string {
	return fmt.Sprintf("Salom %s! 👋\n\n"+
		"Siz AI yordamida referat, mustaqil ish va slaydlar yaratish botiga xush kelibsiz!\n\n"+
		"💰 Balans: %d coin\n\n"+
		"👇 Quyidagi tugmalardan birini tanlang:", esc(name), balance)
}

func subscriptionRequiredMessage(channelUsername string) string {
	return fmt.Sprintf("📢 Kanalga obuna bo'lishingiz shart!\n\n"+
		"@%s kanalga obuna bo'ling va \"%s\" tugmasini bosing.", esc(channelUsername), btnCheckSubscription)
}

func subscriptionConfirmedMessage(balance int64, link string, referralBonus int64) string {
	return fmt.Sprintf("✅ Xush kelibsiz!\n\n"+
		"💰 Balans: %d coin\n\n"+
		"👥 Referral linkingiz:\n%s\n\n"+
		"Do'stlaringizga yuboring, har biri uchun %d coin olasiz!\n\n"+
		"Quyidagi tugmalardan birini tanlang:", balance, esc(link), referralBonus)
}

func referrerRewardMessage(bonus int64) string {
	return fmt.Sprintf("🎉 Do'stingiz obuna bo'ldi!\n\n🪙 +%d coin", bonus)
}

func referralInfoMessage(code, link string, bonus int64, stats domain.ReferralStats) string {
	return fmt.Sprintf("👥 Referral Tizimi\n\n"+
		"Har bir do'stingiz: %d coin 🪙\n\n"+
		"Sizning kodingiz: <code>%s</code>\n\n"+
		"Linkingiz:\n%s\n\n"+
		"📊 Statistika:\n"+
		"Taklif qilganlar: %d\n"+
		"Jami ishlab topgan: %d coin", bonus, esc(code), esc(link), stats.TotalReferrals, stats.TotalEarned)
}

func balanceMessage(balance int64, history []domain.CoinTransaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 Sizning balans: %d coin", balance)
	if len(history) > 0 {
		b.WriteString("\n\n🧾 Oxirgi amallar:")
		for _, tx := range history {
			fmt.Fprintf(&b, "\n%+d · %s", tx.Coins, esc(tx.Description))
		}
	}
	return b.String()
}

func coinPurchaseMessage(packs []domain.CoinPack) string {
	lines := make([]string, 0, len(packs))
	for _, p := range packs {
		lines = append(lines, fmt.Sprintf("%d coin = $%s", p.Coins, p.USD.String()))
	}
	return "💰 Coin paketlari:\n\n" + strings.Join(lines, "\n") + "\n\nPaketni kiriting (masalan: 100)"
}

func invalidPackageMessage(packs []domain.CoinPack) string {
	amounts := make([]string, 0, len(packs))
	for _, p := range packs {
		amounts = append(amounts, fmt.Sprint(p.Coins))
	}
	return fmt.Sprintf(msgInvalidPackage, strings.Join(amounts, ", "))
}

func paymentCodeMessage(p *domain.PaymentCode) string {
	return fmt.Sprintf("✅ To'lov kodingiz tayyor!\n\n"+
		"Kod: <code>%s</code>\n\n"+
		"Summa: $%s\n"+
		"Coin: %d\n"+
		"Muddati: 24 soat\n\n"+
		"Admin bilan to'lov qiling va kodni yuboring.", p.Code, p.AmountUSD.String(), p.Coins)
}

func adminPaymentNotification(buyer *domain.User, p *domain.PaymentCode) string {
	who := esc(buyer.DisplayName())
	if buyer.Username != "" && buyer.FirstName != "" {
		who += " (@" + esc(buyer.Username) + ")"
	}
	return fmt.Sprintf("🔔 Yangi to'lov so'rovi!\n\n"+
		"👤 %s\n"+
		"💰 $%s\n"+
		"🪙 %d coin\n"+
		"📝 Kod: <code>%s</code>", who, p.AmountUSD.String(), p.Coins, p.Code)
}

func paymentVerifiedMessage(r *domain.Redemption) string {
	return fmt.Sprintf("✅ To'lov tasdiqlandi!\n\n"+
		"🪙 %d coin qo'shildi\n"+
		"💵 $%s", r.Code.Coins, r.Code.AmountUSD.String())
}

func buyerCreditedMessage(r *domain.Redemption) string {
	return fmt.Sprintf("✅ To'lovingiz tasdiqlandi!\n\n"+
		"🪙 +%d coin\n"+
		"💰 Balans: %d coin", r.Code.Coins, r.NewBalance)
}

func insufficientCoinsMessage(min int64) string {
	return fmt.Sprintf("❌ Coin yetmadi! Minimal %d coin kerak.\n\nCoin sotib olishingiz mumkin.", min)
}

func orderSubmittedMessage(title, pageRange string, coins int64) string {
	return fmt.Sprintf("✅ So'rov yuborildi!\n\n"+
		"📝 %s\n"+
		"📖 %s sahifa\n"+
		"💰 %d coin sarflandi\n\n"+
		"⏳ 2-5 minut kutib turing...", esc(title), esc(pageRange), coins)
}

func statsMessage(s *domain.Stats) string {
	return fmt.Sprintf("📈 Statistika\n\n"+
		"👤 Foydalanuvchilar: %d\n"+
		"📢 Obunachilar: %d\n"+
		"🪙 Muomaladagi coin: %d\n"+
		"🔑 Faol kodlar: %d\n"+
		"✅ Tasdiqlangan kodlar: %d\n"+
		"📝 Buyurtmalar: %d (bugun %d)\n"+
		"💰 Bugun sotilgan coin: %d\n"+
		"👥 Referrallar: %d",
		s.TotalUsers, s.Subscribers, s.CoinsInCirculation, s.ActiveCodes, s.RedeemedCodes,
		s.TotalOrders, s.OrdersToday, s.CoinsPurchasedToday, s.TotalReferrals)
}
