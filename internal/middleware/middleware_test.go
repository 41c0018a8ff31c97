package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealmate/config"
	"mealmate/internal/auth"
	"mealmate/internal/i18n"
)

func init() { gin.SetMode(gin.TestMode) }

func TestRateLimiterWindow(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewInMemoryRateLimiter(2, time.Minute)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	clock = clock.Add(time.Minute + time.Second)
	assert.True(t, l.Allow("a"))

	clock = clock.Add(2 * time.Minute)
	l.Sweep()
	assert.Empty(t, l.requests)
}

func TestAuthRequired(t *testing.T) {
	cfg := config.Default()
	r := gin.New()
	r.GET("/who", AuthRequired(&cfg.JWT), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.GenerateAccessToken(&cfg.JWT, 7, "neo")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7}`, w.Body.String())
}

func TestLocale(t *testing.T) {
	r := gin.New()
	r.GET("/l", Locale(i18n.NewTranslator("ko")), func(c *gin.Context) {
		c.String(http.StatusOK, GetLocale(c))
	})
	req := httptest.NewRequest(http.MethodGet, "/l", nil)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "en", w.Body.String())
}
