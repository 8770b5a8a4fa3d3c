package cardlink

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cardlink/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cardlink/internal/lib/jwt"
	"github.com/magabrotheeeer/cardlink/internal/models"
	"github.com/magabrotheeeer/cardlink/internal/services/booking"
	"github.com/magabrotheeeer/cardlink/internal/services/plan"
)

// stub реализует все зависимости обработчиков минимально.
type stub struct {
	lockedCard string
}

func (stub) AvailableSlots(context.Context, string, string) ([]string, error) {
	return []string{"09:00"}, nil
}

func (stub) Book(_ context.Context, sess *booking.Session, _ string, _ models.ClientInfo) (*models.BookingResult, error) {
	return &models.BookingResult{Date: sess.Date(), Time: sess.Time()}, nil
}

func (s stub) CheckBookable(_ context.Context, cardID string) error {
	if cardID == s.lockedCard {
		return plan.ErrCardLocked
	}
	return nil
}

func (stub) CardAccess(context.Context, string) (*plan.CardList, error) {
	return &plan.CardList{}, nil
}

func (s stub) CheckCardAccess(_ context.Context, _ string, cardID string) error {
	return s.CheckBookable(context.Background(), cardID)
}

func (stub) ListLeads(context.Context, string, int, int) ([]*models.Lead, error) {
	return []*models.Lead{}, nil
}

func (stub) SetWorkingHours(context.Context, string, models.WorkingHours) error { return nil }

func (stub) ApplyPayment(context.Context, models.PaymentEvent) error { return nil }

func (stub) PingContext(context.Context) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, string) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := jwt.NewJWTMaker("secret", time.Hour)
	token, err := maker.GenerateToken("user-1", "")
	require.NoError(t, err)

	s := stub{lockedCard: "locked"}
	r := chi.NewRouter()
	RegisterRoutes(r, logger, Services{
		Slots:         s,
		Booking:       s,
		Bookable:      s,
		Cards:         s,
		CardAccess:    s,
		Leads:         s,
		WorkingHours:  s,
		Payments:      s,
		Tokens:        maker,
		DB:            s,
		Metrics:       http.NotFoundHandler(),
		BookingLimit:  middlewarectx.NewRateLimiter(logger, 100, 100),
		WebhookSecret: "whsec",
	})
	return r, token
}

func TestRoutes(t *testing.T) {
	router, token := newTestRouter(t)
	bookingBody := `{"date":"2025-03-10","time":"10:00","client":{"name":"Bob","phone":"+100"}}`
	hoursBody := `{"days":[1,2,3,4,5],"start":"09:00","end":"17:00","slot_duration_minutes":30}`

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		auth       bool
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "public slots", method: http.MethodGet, path: "/api/v1/cards/c1/slots?date=2025-03-10", wantStatus: http.StatusOK},
		{name: "locked card slots", method: http.MethodGet, path: "/api/v1/cards/locked/slots?date=2025-03-10", wantStatus: http.StatusForbidden},
		{name: "public booking", method: http.MethodPost, path: "/api/v1/cards/c1/bookings", body: bookingBody, wantStatus: http.StatusOK},
		{name: "locked card booking", method: http.MethodPost, path: "/api/v1/cards/locked/bookings", body: bookingBody, wantStatus: http.StatusForbidden},
		{name: "cards need token", method: http.MethodGet, path: "/api/v1/me/cards", wantStatus: http.StatusUnauthorized},
		{name: "cards with token", method: http.MethodGet, path: "/api/v1/me/cards", auth: true, wantStatus: http.StatusOK},
		{name: "leads of open card", method: http.MethodGet, path: "/api/v1/me/cards/c1/leads", auth: true, wantStatus: http.StatusOK},
		{name: "leads of locked card", method: http.MethodGet, path: "/api/v1/me/cards/locked/leads", auth: true, wantStatus: http.StatusForbidden},
		{name: "working hours need token", method: http.MethodPut, path: "/api/v1/me/cards/c1/working-hours", body: hoursBody, wantStatus: http.StatusUnauthorized},
		{name: "working hours of open card", method: http.MethodPut, path: "/api/v1/me/cards/c1/working-hours", body: hoursBody, auth: true, wantStatus: http.StatusOK},
		{name: "working hours of locked card", method: http.MethodPut, path: "/api/v1/me/cards/locked/working-hours", body: hoursBody, auth: true, wantStatus: http.StatusForbidden},
		{name: "unsigned webhook", method: http.MethodPost, path: "/api/v1/payments/webhook", body: `{}`, wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.auth {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}
