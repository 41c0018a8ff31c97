package handler

import (
	"net/http"

	"mealmate/internal/i18n"
	"mealmate/internal/middleware"
	"mealmate/internal/service"
	"mealmate/pkg/location"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	renderer
	verifier *service.AttendanceVerifier
}

func NewAttendanceHandler(tr *i18n.Translator, verifier *service.AttendanceVerifier) *AttendanceHandler {
	return &AttendanceHandler{renderer: renderer{tr: tr}, verifier: verifier}
}

type gpsCheckinRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// GPSCheckIn treats a body without both coordinates as a missing location.
func (h *AttendanceHandler) GPSCheckIn(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var req gpsCheckinRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err.Error())
			return
		}
	}
	var at *location.Point
	if req.Latitude != nil && req.Longitude != nil {
		at = &location.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	}
	res, err := h.verifier.GPSCheckIn(c.Request.Context(), id, middleware.GetUserID(c), at)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AttendanceHandler) IssueQRToken(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	res, err := h.verifier.IssueQRToken(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type qrCheckinRequest struct {
	Token string `json:"token"`
}

func (h *AttendanceHandler) QRCheckIn(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var req qrCheckinRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err.Error())
			return
		}
	}
	res, err := h.verifier.QRCheckIn(c.Request.Context(), id, middleware.GetUserID(c), req.Token)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AttendanceHandler) HostConfirm(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.uintParam(c, "user_id")
	if !ok {
		return
	}
	res, err := h.verifier.HostConfirm(c.Request.Context(), id, userID, middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AttendanceHandler) MutualConfirm(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.uintParam(c, "user_id")
	if !ok {
		return
	}
	res, err := h.verifier.MutualConfirm(c.Request.Context(), id, middleware.GetUserID(c), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AttendanceHandler) Summary(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	res, err := h.verifier.Summary(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
