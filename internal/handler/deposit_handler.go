package handler

import (
	"context"
	"net/http"

	"mealmate/internal/domain"
	"mealmate/internal/i18n"
	"mealmate/internal/middleware"
	"mealmate/internal/models"
	"mealmate/internal/service"

	"github.com/gin-gonic/gin"
)

type DepositHandler struct {
	renderer
	escrow *service.DepositEscrow
}

func NewDepositHandler(tr *i18n.Translator, escrow *service.DepositEscrow) *DepositHandler {
	return &DepositHandler{renderer: renderer{tr: tr}, escrow: escrow}
}

type payDepositRequest struct {
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

func (h *DepositHandler) Pay(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var req payDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	d, err := h.escrow.Pay(c.Request.Context(), service.PayDepositInput{
		MeetupID: id,
		UserID:   middleware.GetUserID(c),
		Amount:   req.Amount,
		Method:   req.PaymentMethod,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DepositHandler) Refund(c *gin.Context) {
	h.settle(c, h.escrow.Refund)
}

func (h *DepositHandler) Convert(c *gin.Context) {
	h.settle(c, h.escrow.ConvertToPoints)
}

// settle only lets the owner close their deposit.
func (h *DepositHandler) settle(c *gin.Context, op func(context.Context, uint) (*models.Deposit, error)) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	d, err := h.escrow.GetDeposit(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if d.UserID != middleware.GetUserID(c) {
		h.fail(c, domain.ErrNotDepositOwner)
		return
	}
	d, err = op(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DepositHandler) ListMine(c *gin.Context) {
	page, size := pageQuery(c)
	list, err := h.escrow.ListDeposits(c.Request.Context(), middleware.GetUserID(c), page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": list})
}
