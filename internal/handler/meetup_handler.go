package handler

import (
	"net/http"
	"time"

	"mealmate/internal/i18n"
	"mealmate/internal/middleware"
	"mealmate/internal/service"
	"mealmate/pkg/location"

	"github.com/gin-gonic/gin"
)

type MeetupHandler struct {
	renderer
	meetups       *service.MeetupService
	participation *service.ParticipationService
}

func NewMeetupHandler(tr *i18n.Translator, meetups *service.MeetupService, participation *service.ParticipationService) *MeetupHandler {
	return &MeetupHandler{renderer: renderer{tr: tr}, meetups: meetups, participation: participation}
}

type createMeetupRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Latitude    *float64  `json:"latitude" binding:"required"`
	Longitude   *float64  `json:"longitude" binding:"required"`
	Address     string    `json:"address"`
}

func (h *MeetupHandler) Create(c *gin.Context) {
	var req createMeetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	m, err := h.meetups.Create(c.Request.Context(), service.CreateMeetupInput{
		HostID:      middleware.GetUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Capacity:    req.Capacity,
		ScheduledAt: req.ScheduledAt,
		Location:    location.Point{Lat: *req.Latitude, Lng: *req.Longitude},
		Address:     req.Address,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MeetupHandler) Get(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	m, err := h.meetups.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type updateMeetupRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Capacity    *int       `json:"capacity"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	Address     *string    `json:"address"`
}

// Update applies a partial update; latitude and longitude travel together.
func (h *MeetupHandler) Update(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var req updateMeetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	patch := service.MeetupPatch{
		Title:       req.Title,
		Description: req.Description,
		Capacity:    req.Capacity,
		ScheduledAt: req.ScheduledAt,
		Address:     req.Address,
	}
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		patch.Location = &location.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	case req.Latitude != nil || req.Longitude != nil:
		h.badRequest(c, "latitude and longitude must be set together")
		return
	}
	m, err := h.meetups.Update(c.Request.Context(), id, middleware.GetUserID(c), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *MeetupHandler) SetStatus(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	m, err := h.meetups.SetStatus(c.Request.Context(), id, middleware.GetUserID(c), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MeetupHandler) Join(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	p, err := h.participation.Join(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *MeetupHandler) Leave(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	res, err := h.participation.Leave(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *MeetupHandler) ListParticipants(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	list, err := h.participation.ListParticipants(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": list})
}

func (h *MeetupHandler) SetParticipantStatus(c *gin.Context) {
	id, ok := h.uintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.uintParam(c, "user_id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	p, m, err := h.participation.SetStatus(c.Request.Context(), id, userID, req.Status, middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant": p, "meetup": m})
}
