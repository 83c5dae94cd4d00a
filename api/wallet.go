package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"github.com/yashu1412/Flight-Booking/internal/service/wallet"
)

type WalletUseCase interface {
	Balance(ctx context.Context, userID uuid.UUID) (domain.Money, error)
	Check(ctx context.Context, userID uuid.UUID, amount domain.Money) (wallet.Sufficiency, error)
	Reset(ctx context.Context, userID uuid.UUID) (domain.Money, error)
}

type WalletHandler struct {
	service WalletUseCase
}

func NewWalletHandler(service WalletUseCase) *WalletHandler {
	return &WalletHandler{service: service}
}

// Register expects router to already require authentication.
func (h *WalletHandler) Register(router *gin.RouterGroup) {
	router.GET("/balance", h.balance)
	router.POST("/check", h.check)
	router.POST("/reset", h.reset)
}

type checkRequest struct {
	Amount domain.Money `json:"amount" binding:"required"`
}

type balanceResponse struct {
	Balance domain.Money `json:"balance"`
}

func (h *WalletHandler) balance(c *gin.Context) {
	balance, err := h.service.Balance(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", balanceResponse{Balance: balance})
}

func (h *WalletHandler) check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sufficiency, err := h.service.Check(c.Request.Context(), currentUser(c), req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", sufficiency)
}

func (h *WalletHandler) reset(c *gin.Context) {
	balance, err := h.service.Reset(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Wallet reset", balanceResponse{Balance: balance})
}
