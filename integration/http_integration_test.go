package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chargeslot/internal/auth"
	"chargeslot/internal/booking"
	"chargeslot/internal/config"
	"chargeslot/internal/db"
	"chargeslot/internal/profile"
	"chargeslot/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHTTPBookingFlow(t *testing.T) {
	database := setupTestDB(t)
	gin.SetMode(gin.TestMode)
	loc := time.UTC

	profiles := profile.NewRepository(database)
	bookings := booking.NewRepository(database)
	cfg := &config.Config{Port: "0", JWTSecret: testSecret, RateLimitRPS: 1000, RateLimitBurst: 1000}
	srv := server.New(cfg,
		server.Handlers{
			Bookings: booking.NewHandler(newBookingService(database, loc), loc),
			Profiles: profile.NewHandler(profile.NewService(profiles, bookings, testSecret)),
		},
		server.HealthCheck{Name: "database", Check: db.Ping(database)},
	)
	h := srv.Handler()

	w := do(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	register := func(email, name string) string {
		w := do(t, h, http.MethodPost, "/auth/register", "", profile.RegisterRequest{
			Email: email, Password: "password123", FirstName: name,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp profile.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.AccessToken
	}
	anna := register("anna@example.com", "Anna")
	ben := register("ben@example.com", "Ben")

	w = do(t, h, http.MethodPost, "/auth/register", "", profile.RegisterRequest{
		Email: "anna@example.com", Password: "password123", FirstName: "Anna",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	date := tomorrow(loc).Format("2006-01-02")
	req := booking.CreateBookingRequest{Date: date, SlotID: 1, Notes: "bis 11"}

	w = do(t, h, http.MethodPost, "/bookings", anna, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created booking.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, h, http.MethodPost, "/bookings", ben, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "slot already booked, refresh the calendar")

	w = do(t, h, http.MethodPost, "/bookings/"+created.ID.String()+"/cancel", ben, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, h, http.MethodPost, "/bookings/"+created.ID.String()+"/report", ben, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/bookings", anna, booking.CreateBookingRequest{Date: date, SlotID: 2})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "banned_until")

	w = do(t, h, http.MethodDelete, "/bookings/"+created.ID.String()+"/report", ben, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/bookings/"+created.ID.String()+"/cancel", anna, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/bookings", ben, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodGet, "/calendar?from="+date+"&days=7", ben, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var days []booking.CalendarDay
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &days))
	require.Len(t, days, 7)
	assert.Equal(t, booking.StateOwn, days[0].Slots[0].State)

	w = do(t, h, http.MethodGet, "/bookings", anna, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine booking.MyBookings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Empty(t, mine.Upcoming)
	assert.Len(t, mine.History, 1)
}

func TestHTTPAdminCancel(t *testing.T) {
	database := setupTestDB(t)
	gin.SetMode(gin.TestMode)
	loc := time.UTC

	owner := createTestProfile(t, database, "owner@example.com", "Otto", auth.RoleMember)
	adminID := createTestProfile(t, database, "admin@example.com", "Ada", auth.RoleAdmin)

	svc := newBookingService(database, loc)
	b, err := svc.BookSlot(t.Context(), owner, tomorrow(loc), 2, "")
	require.NoError(t, err)

	cfg := &config.Config{Port: "0", JWTSecret: testSecret, RateLimitRPS: 1000, RateLimitBurst: 1000}
	srv := server.New(cfg, server.Handlers{
		Bookings: booking.NewHandler(svc, loc),
		Profiles: profile.NewHandler(profile.NewService(profile.NewRepository(database), booking.NewRepository(database), testSecret)),
	})

	token, err := auth.GenerateAccessToken(adminID, "admin@example.com", auth.RoleAdmin, testSecret)
	require.NoError(t, err)

	w := do(t, srv.Handler(), http.MethodPost, "/admin/bookings/"+b.ID.String()+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
}
