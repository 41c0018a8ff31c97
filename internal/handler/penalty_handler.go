package handler

import (
	"net/http"

	"mealmate/internal/i18n"
	"mealmate/internal/middleware"
	"mealmate/internal/service"

	"github.com/gin-gonic/gin"
)

type PenaltyHandler struct {
	renderer
	penalties *service.NoShowPenaltyProcessor
}

func NewPenaltyHandler(tr *i18n.Translator, penalties *service.NoShowPenaltyProcessor) *PenaltyHandler {
	return &PenaltyHandler{renderer: renderer{tr: tr}, penalties: penalties}
}

func (h *PenaltyHandler) Apply(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	results, err := h.penalties.Apply(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"penalized": results})
}

func (h *PenaltyHandler) List(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	list, err := h.penalties.ListPenalties(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"penalties": list})
}
