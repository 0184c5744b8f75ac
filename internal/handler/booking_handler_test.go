package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yafafa-lodge/service-booking/internal/domain/booking"
)

func bookingPayload() map[string]interface{} {
	return map[string]interface{}{
		"guestName":     "Ama Mensah",
		"room":          "Garden Room",
		"date":          "2026-03-10",
		"time":          "14:00",
		"phone":         "0240000000",
		"customerEmail": guestEmail,
		"network":       "MTN",
		"amount":        150,
		"transactionId": "ref-1",
	}
}

func TestCreateBooking(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/bookings", mustJSON(t, bookingPayload()), bearer(s.token(t, guestEmail)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "Booking created successfully", body["message"])
	b := body["booking"].(map[string]interface{})
	assert.Equal(t, "pending", b["status"])
	assert.Equal(t, "ref-1", b["transactionId"])
	assert.Equal(t, 1, s.repo.Len())

	w = s.do(t, http.MethodPost, "/api/bookings", mustJSON(t, bookingPayload()), bearer(s.token(t, guestEmail)))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateBooking_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p map[string]interface{})
		wantField string
	}{
		{name: "missing transactionId", mutate: func(p map[string]interface{}) { delete(p, "transactionId") }, wantField: "transactionId"},
		{name: "missing guestName", mutate: func(p map[string]interface{}) { delete(p, "guestName") }, wantField: "guestName"},
		{name: "bad email", mutate: func(p map[string]interface{}) { p["customerEmail"] = "nope" }, wantField: "customerEmail"},
		{name: "zero amount", mutate: func(p map[string]interface{}) { p["amount"] = 0 }, wantField: "amount"},
		{name: "amount over cap", mutate: func(p map[string]interface{}) { p["amount"] = 1e20 }, wantField: "amount"},
		{name: "client cannot complete", mutate: func(p map[string]interface{}) { p["status"] = "completed" }, wantField: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			p := bookingPayload()
			tt.mutate(p)

			w := s.do(t, http.MethodPost, "/api/bookings", mustJSON(t, p), bearer(s.token(t, guestEmail)))
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			fields, ok := decode(t, w)["fields"].(map[string]interface{})
			require.True(t, ok)
			assert.Contains(t, fields, tt.wantField)
			assert.Zero(t, s.repo.Writes())
		})
	}
}

func TestBookings_AuthGate(t *testing.T) {
	s := newTestServer(t)
	valid, err := s.jwt.GenerateAccessToken("user-1", guestEmail, "Ama", "user")
	require.NoError(t, err)

	tests := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
		want    int
	}{
		{name: "create without token", method: http.MethodPost, path: "/api/bookings", want: http.StatusUnauthorized},
		{name: "create with garbage token", method: http.MethodPost, path: "/api/bookings", headers: bearer("not-a-jwt"), want: http.StatusForbidden},
		{name: "create with tampered token", method: http.MethodPost, path: "/api/bookings", headers: bearer(valid + "x"), want: http.StatusForbidden},
		{name: "list without token", method: http.MethodGet, path: "/api/bookings/all", want: http.StatusUnauthorized},
		{name: "list as guest", method: http.MethodGet, path: "/api/bookings/all", headers: bearer(s.token(t, guestEmail)), want: http.StatusForbidden},
		{name: "stats as guest", method: http.MethodGet, path: "/api/admin/stats/bookings", headers: bearer(s.token(t, guestEmail)), want: http.StatusForbidden},
		{name: "cancel as guest", method: http.MethodDelete, path: "/api/bookings/" + uuid.NewString(), headers: bearer(s.token(t, guestEmail)), want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if tt.method == http.MethodPost {
				body = mustJSON(t, bookingPayload())
			}
			w := s.do(t, tt.method, tt.path, body, tt.headers)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
	assert.Zero(t, s.repo.Writes())
}

func seedBooking(s *testServer, ref string, status booking.Status, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	s.repo.Seed(booking.Reconstitute(
		id, "Guest "+ref, guestEmail, "0240000000", "Garden Room", "2026-03-10", "14:00", "MTN",
		15000, ref, status, nil, createdAt, createdAt,
	))
	return id
}

func TestListAll_AdminNewestFirst(t *testing.T) {
	s := newTestServer(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedBooking(s, "ref-old", booking.StatusPending, base)
	seedBooking(s, "ref-new", booking.StatusCompleted, base.Add(2*time.Hour))
	seedBooking(s, "ref-mid", booking.StatusFailed, base.Add(time.Hour))

	w := s.do(t, http.MethodGet, "/api/bookings/all", nil, bearer(s.token(t, "ADMIN@yafafa.example")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decode(t, w)["data"].([]interface{})
	require.Len(t, data, 3)
	var refs []string
	for _, d := range data {
		refs = append(refs, d.(map[string]interface{})["transactionId"].(string))
	}
	assert.Equal(t, []string{"ref-new", "ref-mid", "ref-old"}, refs)
}

func TestGetByReference(t *testing.T) {
	s := newTestServer(t)
	seedBooking(s, "ref-1", booking.StatusPending, time.Now())

	w := s.do(t, http.MethodGet, "/api/bookings/reference/ref-1", nil, bearer(s.token(t, guestEmail)))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])

	w = s.do(t, http.MethodGet, "/api/bookings/reference/ref-1", nil, bearer(s.token(t, "other@example.com")))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/bookings/reference/ref-1", nil, bearer(s.token(t, adminEmail)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCancelBooking_Admin(t *testing.T) {
	s := newTestServer(t)
	id := seedBooking(s, "ref-1", booking.StatusPending, time.Now())
	adminToken := s.token(t, adminEmail)

	w := s.do(t, http.MethodDelete, "/api/bookings/"+id.String(), nil, bearer(adminToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Zero(t, s.repo.Len())

	w = s.do(t, http.MethodDelete, "/api/bookings/"+id.String(), nil, bearer(adminToken))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/bookings/not-a-uuid", nil, bearer(adminToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingStats_Admin(t *testing.T) {
	s := newTestServer(t)
	seedBooking(s, "ref-1", booking.StatusPending, time.Now())
	seedBooking(s, "ref-2", booking.StatusCompleted, time.Now())

	w := s.do(t, http.MethodGet, "/api/admin/stats/bookings", nil, bearer(s.token(t, adminEmail)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 2.0, data["totalBookings"])
	assert.Equal(t, 150.0, data["revenue"])
}
