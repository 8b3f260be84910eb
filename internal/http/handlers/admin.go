package handlers

import (
	"context"
	"errors"
	"net/http"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/service"

	"github.com/gin-gonic/gin"
)

// RedeemedFunc is called after a code is verified over HTTP, so the buyer
// hears about it the same way as after a verification in chat
type RedeemedFunc func(ctx context.Context, r *domain.Redemption)

type AdminHandler struct {
	payments   *service.PaymentService
	admin      *service.AdminService
	OnRedeemed RedeemedFunc
}

func NewAdminHandler(payments *service.PaymentService, admin *service.AdminService) *AdminHandler {
	return &AdminHandler{payments: payments, admin: admin}
}

type verifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type verifyCodeResponse struct {
	Code           string `json:"code"`
	Coins          int64  `json:"coins"`
	AmountUSD      string `json:"amount_usd"`
	UserTelegramID int64  `json:"user_telegram_id"`
	NewBalance     int64  `json:"new_balance"`
}

// VerifyCode redeems a payment code. Unknown, used and expired codes all
// answer 404.
func (h *AdminHandler) VerifyCode(c *gin.Context) {
	adminID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	ctx := c.Request.Context()
	red, err := h.payments.VerifyCode(ctx, adminID, req.Code)
	switch {
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	case errors.Is(err, service.ErrCodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "payment code not found"})
		return
	case err != nil:
		logger.Error("verify payment code failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if h.OnRedeemed != nil {
		h.OnRedeemed(ctx, red)
	}

	c.JSON(http.StatusOK, verifyCodeResponse{
		Code:           red.Code.Code,
		Coins:          red.Code.Coins,
		AmountUSD:      red.Code.AmountUSD.String(),
		UserTelegramID: red.UserTelegramID,
		NewBalance:     red.NewBalance,
	})
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.admin.GetStats(c.Request.Context())
	if err != nil {
		logger.Error("load stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// getUserID reads the telegram id set by the auth middleware
func getUserID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
