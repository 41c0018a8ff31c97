package handler

import (
	"net/http"

	"mealmate/internal/i18n"
	"mealmate/internal/middleware"
	"mealmate/internal/service"

	"github.com/gin-gonic/gin"
)

type PointsHandler struct {
	renderer
	ledger *service.PointsLedger
}

func NewPointsHandler(tr *i18n.Translator, ledger *service.PointsLedger) *PointsHandler {
	return &PointsHandler{renderer: renderer{tr: tr}, ledger: ledger}
}

func (h *PointsHandler) Balance(c *gin.Context) {
	b, err := h.ledger.GetBalance(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"available_points": b.AvailablePoints,
		"total_earned":     b.TotalEarned,
		"total_used":       b.TotalUsed,
	})
}

func (h *PointsHandler) Transactions(c *gin.Context) {
	page, size := pageQuery(c)
	res, err := h.ledger.ListTransactions(c.Request.Context(), middleware.GetUserID(c), page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
