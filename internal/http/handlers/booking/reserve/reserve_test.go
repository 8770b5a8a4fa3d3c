package reserve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/cardlink/internal/models"
	"github.com/magabrotheeeer/cardlink/internal/services/booking"
	"github.com/magabrotheeeer/cardlink/internal/services/plan"
	"github.com/magabrotheeeer/cardlink/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Book(ctx context.Context, sess *booking.Session, cardID string, client models.ClientInfo) (*models.BookingResult, error) {
	args := m.Called(ctx, sess, cardID, client)
	res, _ := args.Get(0).(*models.BookingResult)
	return res, args.Error(1)
}

type MockGate struct {
	mock.Mock
}

func (m *MockGate) CheckBookable(ctx context.Context, cardID string) error {
	args := m.Called(ctx, cardID)
	return args.Error(0)
}

const validBody = `{"date":"2025-03-10","time":"10:30","client":{"name":"Bob","phone":"+100","interest":"demo"}}`

var client = models.ClientInfo{Name: "Bob", Phone: "+100", Interest: "demo"}

// selected проверяет, что сессия пришла в сервис с выбранными датой и временем.
func selected(date, clock string) any {
	return mock.MatchedBy(func(s *booking.Session) bool {
		return s.Date() == date && s.Time() == clock && s.State() == booking.StateSelectingTime
	})
}

func TestReserveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name         string
		body         string
		setupMocks   func(*MockService, *MockGate)
		wantStatus   int
		expectedBody string
	}{
		{
			name: "booked with meeting link",
			body: validBody,
			setupMocks: func(s *MockService, g *MockGate) {
				g.On("CheckBookable", mock.Anything, "card-1").Return(nil)
				s.On("Book", mock.Anything, selected("2025-03-10", "10:30"), "card-1", client).
					Return(&models.BookingResult{Date: "2025-03-10", Time: "10:30", MeetingLink: "https://zoom.us/j/1"}, nil)
			},
			wantStatus:   http.StatusOK,
			expectedBody: `{"status":"OK","data":{"date":"2025-03-10","time":"10:30","meeting_link":"https://zoom.us/j/1"}}`,
		},
		{
			name:         "invalid json",
			body:         `{"date":`,
			setupMocks:   func(*MockService, *MockGate) {},
			wantStatus:   http.StatusBadRequest,
			expectedBody: `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:         "missing phone",
			body:         `{"date":"2025-03-10","time":"10:30","client":{"name":"Bob"}}`,
			setupMocks:   func(*MockService, *MockGate) {},
			wantStatus:   http.StatusUnprocessableEntity,
			expectedBody: `{"status":"Error","error":"field Phone is a required field"}`,
		},
		{
			name:         "bad date format",
			body:         `{"date":"10.03.2025","time":"10:30","client":{"name":"Bob","phone":"+100"}}`,
			setupMocks:   func(*MockService, *MockGate) {},
			wantStatus:   http.StatusUnprocessableEntity,
			expectedBody: `{"status":"Error","error":"field Date must match format 2006-01-02"}`,
		},
		{
			name:         "single digit hour",
			body:         `{"date":"2025-03-10","time":"9:30","client":{"name":"Bob","phone":"+100"}}`,
			setupMocks:   func(*MockService, *MockGate) {},
			wantStatus:   http.StatusUnprocessableEntity,
			expectedBody: `{"status":"Error","error":"field Time must match format 15:04"}`,
		},
		{
			name: "locked card",
			body: validBody,
			setupMocks: func(_ *MockService, g *MockGate) {
				g.On("CheckBookable", mock.Anything, "card-1").
					Return(fmt.Errorf("plan.CheckBookable: %w", plan.ErrCardLocked))
			},
			wantStatus:   http.StatusForbidden,
			expectedBody: `{"status":"Error","error":"card does not accept bookings"}`,
		},
		{
			name: "unknown card",
			body: validBody,
			setupMocks: func(_ *MockService, g *MockGate) {
				g.On("CheckBookable", mock.Anything, "card-1").Return(repository.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "time off grid",
			body: validBody,
			setupMocks: func(s *MockService, g *MockGate) {
				g.On("CheckBookable", mock.Anything, "card-1").Return(nil)
				s.On("Book", mock.Anything, mock.Anything, "card-1", client).
					Return(nil, fmt.Errorf("booking.Book: %w", booking.ErrSlotUnavailable))
			},
			wantStatus:   http.StatusConflict,
			expectedBody: `{"status":"Error","error":"selected time is not available"}`,
		},
		{
			name: "persistence failure",
			body: validBody,
			setupMocks: func(s *MockService, g *MockGate) {
				g.On("CheckBookable", mock.Anything, "card-1").Return(nil)
				s.On("Book", mock.Anything, mock.Anything, "card-1", client).
					Return(nil, errors.New("insert reserved slot: connection reset"))
			},
			wantStatus:   http.StatusInternalServerError,
			expectedBody: `{"status":"Error","error":"could not complete booking, please try again"}`,
		},
		{
			name: "gate store failure",
			body: validBody,
			setupMocks: func(_ *MockService, g *MockGate) {
				g.On("CheckBookable", mock.Anything, "card-1").Return(errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			gate := new(MockGate)
			tt.setupMocks(service, gate)

			r := chi.NewRouter()
			r.Post("/cards/{cardID}/bookings", New(logger, service, gate).ServeHTTP)

			req := httptest.NewRequest(http.MethodPost, "/cards/card-1/bookings", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			service.AssertExpectations(t)
			gate.AssertExpectations(t)
		})
	}
}
