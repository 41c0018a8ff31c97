package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"mealmate/internal/domain"
	"mealmate/internal/i18n"
	"mealmate/internal/middleware"

	"github.com/gin-gonic/gin"
)

// renderer turns service errors into localized JSON responses.
type renderer struct {
	tr *i18n.Translator
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInvalid:
		return http.StatusBadRequest
	case domain.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case domain.KindExpired:
		return http.StatusGone
	case domain.KindInvalidToken:
		return http.StatusUnauthorized
	default:
		return http.StatusServiceUnavailable
	}
}

func (r renderer) fail(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	code := domain.CodeOf(err)
	body := gin.H{"code": code}

	var data map[string]any
	var far *domain.TooFarError
	if errors.As(err, &far) {
		body["distance_meters"] = far.DistanceMeters
		data = map[string]any{
			"Distance": fmt.Sprintf("%.1f", far.DistanceMeters),
			"Radius":   fmt.Sprintf("%.0f", far.RadiusMeters),
		}
	}
	fallback := err.Error()
	if kind == domain.KindTransient {
		log.Printf("[http] %s %s: %v", c.Request.Method, c.FullPath(), err)
		fallback = "service unavailable"
	}
	body["error"] = r.tr.T(middleware.GetLocale(c), code, fallback, data)
	c.AbortWithStatusJSON(statusFor(kind), body)
}

func (r renderer) badRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"code":   "bad_request",
		"error":  r.tr.T(middleware.GetLocale(c), "bad_request", "bad request", nil),
		"detail": detail,
	})
}

// uintParam reads a positive numeric path parameter, answering 400 otherwise.
func (r renderer) uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		r.badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func pageQuery(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, size
}
