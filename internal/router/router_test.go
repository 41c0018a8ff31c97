package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mealmate/config"
	"mealmate/internal/auth"
	"mealmate/internal/repository"
	"mealmate/internal/service"
	"mealmate/internal/testutil"
	"mealmate/pkg/location"
	"mealmate/pkg/payment"
)

type api struct {
	t      *testing.T
	cfg    *config.Config
	db     *gorm.DB
	engine *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Env = "test"
	db := testutil.NewDB(t)
	engine, _ := Setup(cfg, db, payment.StubRail{})
	return &api{t: t, cfg: cfg, db: db, engine: engine}
}

func (a *api) token(userID uint) string {
	tok, err := auth.GenerateAccessToken(&a.cfg.JWT, userID, "tester")
	require.NoError(a.t, err)
	return tok
}

func (a *api) do(method, path string, userID uint, body any, headers ...string) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+a.token(userID))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func id(v any) uint { return uint(v.(float64)) }

func TestRequiresAuth(t *testing.T) {
	a := newAPI(t)
	code, body := a.do(http.MethodGet, "/api/v1/me/points", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", body["code"])
}

func TestMeetupFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	host := testutil.CreateUser(t, a.db, "host")
	guest := testutil.CreateUser(t, a.db, "guest")

	code, m := a.do(http.MethodPost, "/api/v1/meetups", host.ID, map[string]any{
		"title":        "Galbi night",
		"capacity":     4,
		"scheduled_at": time.Now().Add(3 * time.Hour).UTC().Format(time.RFC3339),
		"latitude":     testutil.Venue.Lat,
		"longitude":    testutil.Venue.Lng,
	})
	require.Equal(t, http.StatusCreated, code, m)
	meetupID := id(m["id"])
	base := fmt.Sprintf("/api/v1/meetups/%d", meetupID)

	code, p := a.do(http.MethodPost, base+"/join", guest.ID, nil)
	require.Equal(t, http.StatusCreated, code, p)
	assert.Equal(t, "REQUESTED", p["status"])

	code, res := a.do(http.MethodPut, fmt.Sprintf("%s/participants/%d/status", base, guest.ID), host.ID, map[string]any{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, float64(2), res["meetup"].(map[string]any)["live_participant_count"])

	ledger := service.NewPointsLedger(a.db, repository.NewPointsRepository(a.db))
	_, err := ledger.Earn(context.Background(), guest.ID, 5000, "seed", "")
	require.NoError(t, err)

	code, d := a.do(http.MethodPost, base+"/deposits", guest.ID, map[string]any{"amount": 3000, "payment_method": "points"})
	require.Equal(t, http.StatusCreated, code, d)
	depositID := id(d["id"])

	code, dup := a.do(http.MethodPost, base+"/deposits", guest.ID, map[string]any{"amount": 3000, "payment_method": "points"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "duplicate_deposit", dup["code"])

	near := testutil.Venue.Lat + location.MetersToLatDegrees(30)
	code, ci := a.do(http.MethodPost, base+"/checkin/gps", guest.ID, map[string]any{"latitude": near, "longitude": testutil.Venue.Lng})
	require.Equal(t, http.StatusOK, code, ci)

	code, sum := a.do(http.MethodGet, base+"/attendance", guest.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), sum["total_approved"])
	assert.Equal(t, float64(1), sum["attended"])

	code, body := a.do(http.MethodPost, fmt.Sprintf("/api/v1/deposits/%d/refund", depositID), host.ID, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "not_deposit_owner", body["code"])

	code, body = a.do(http.MethodPost, fmt.Sprintf("/api/v1/deposits/%d/refund", depositID), guest.ID, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "REFUNDED", body["status"])

	code, bal := a.do(http.MethodGet, "/api/v1/me/points", guest.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(5000), bal["available_points"])

	code, pen := a.do(http.MethodPost, base+"/no-show-penalties", host.ID, nil)
	require.Equal(t, http.StatusOK, code, pen)
	assert.Empty(t, pen["penalized"])
}

func TestPenaltiesForTokenOnlyUsers(t *testing.T) {
	a := newAPI(t)
	const host, guest uint = 11, 22

	code, m := a.do(http.MethodPost, "/api/v1/meetups", host, map[string]any{
		"title":        "Hotpot",
		"capacity":     4,
		"scheduled_at": time.Now().Add(3 * time.Hour).UTC().Format(time.RFC3339),
		"latitude":     testutil.Venue.Lat,
		"longitude":    testutil.Venue.Lng,
	})
	require.Equal(t, http.StatusCreated, code, m)
	base := fmt.Sprintf("/api/v1/meetups/%d", id(m["id"]))

	code, p := a.do(http.MethodPost, base+"/join", guest, nil)
	require.Equal(t, http.StatusCreated, code, p)
	code, res := a.do(http.MethodPut, fmt.Sprintf("%s/participants/%d/status", base, guest), host, map[string]any{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, code, res)

	code, pen := a.do(http.MethodPost, base+"/no-show-penalties", host, nil)
	require.Equal(t, http.StatusOK, code, pen)
	penalized := pen["penalized"].([]any)
	require.Len(t, penalized, 1)
	entry := penalized[0].(map[string]any)
	assert.Equal(t, float64(guest), entry["user_id"])
	assert.Equal(t, float64(100), entry["previous_score"])
	assert.Equal(t, float64(90), entry["new_score"])

	code, pen = a.do(http.MethodPost, base+"/no-show-penalties", host, nil)
	require.Equal(t, http.StatusOK, code, pen)
	assert.Empty(t, pen["penalized"])
}

func TestErrorRendering(t *testing.T) {
	a := newAPI(t)
	host := testutil.CreateUser(t, a.db, "host")
	guest := testutil.CreateUser(t, a.db, "guest")
	m := testutil.CreateMeetup(t, a.db, host.ID, 4)
	testutil.AddParticipant(t, a.db, m.ID, guest.ID, "APPROVED")

	code, body := a.do(http.MethodGet, "/api/v1/meetups/424242", guest.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "meetup_not_found", body["code"])
	assert.Equal(t, "모임을 찾을 수 없습니다.", body["error"])

	code, body = a.do(http.MethodGet, "/api/v1/meetups/424242", guest.ID, nil, "Accept-Language", "en-US")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Meetup not found.", body["error"])

	code, body = a.do(http.MethodGet, "/api/v1/meetups/abc", guest.ID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "bad_request", body["code"])

	far := testutil.Venue.Lat + location.MetersToLatDegrees(150)
	code, body = a.do(http.MethodPost, fmt.Sprintf("/api/v1/meetups/%d/checkin/gps", m.ID), guest.ID,
		map[string]any{"latitude": far, "longitude": testutil.Venue.Lng})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "too_far", body["code"])
	assert.InDelta(t, 150, body["distance_meters"], 0.5)

	code, body = a.do(http.MethodPost, fmt.Sprintf("/api/v1/meetups/%d/checkin/gps", m.ID), guest.ID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "missing_location", body["code"])

	code, body = a.do(http.MethodPost, fmt.Sprintf("/api/v1/meetups/%d/checkin/qr", m.ID), guest.ID, map[string]any{"token": "forged"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_token", body["code"])

	code, body = a.do(http.MethodPost, fmt.Sprintf("/api/v1/meetups/%d/deposits", m.ID), guest.ID, map[string]any{"amount": 10, "payment_method": "points"})
	assert.Equal(t, http.StatusPaymentRequired, code)
	assert.Equal(t, "insufficient_points", body["code"])
}

func TestQRCheckInOverHTTP(t *testing.T) {
	a := newAPI(t)
	host := testutil.CreateUser(t, a.db, "host")
	guest := testutil.CreateUser(t, a.db, "guest")
	m := testutil.CreateMeetup(t, a.db, host.ID, 4)
	testutil.AddParticipant(t, a.db, m.ID, guest.ID, "APPROVED")
	base := fmt.Sprintf("/api/v1/meetups/%d", m.ID)

	code, _ := a.do(http.MethodPost, base+"/checkin/qr-token", guest.ID, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, tok := a.do(http.MethodPost, base+"/checkin/qr-token", host.ID, nil)
	require.Equal(t, http.StatusCreated, code)
	require.NotEmpty(t, tok["token"])

	code, res := a.do(http.MethodPost, base+"/checkin/qr", guest.ID, map[string]any{"token": tok["token"]})
	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, "QR", res["attendance"].(map[string]any)["method"])
}
