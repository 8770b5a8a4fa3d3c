// Package slots реализует публичный обработчик списка свободных слотов карточки.
package slots

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cardlink/internal/http/response"
	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
	"github.com/magabrotheeeer/cardlink/internal/services/booking"
	"github.com/magabrotheeeer/cardlink/internal/services/plan"
	"github.com/magabrotheeeer/cardlink/internal/storage/repository"
)

// Service описывает расчёт свободных слотов.
type Service interface {
	AvailableSlots(ctx context.Context, cardID, date string) ([]string, error)
}

// Gate проверяет, принимает ли карточка брони на тарифе владельца.
type Gate interface {
	CheckBookable(ctx context.Context, cardID string) error
}

// Handler отдаёт свободные слоты на дату. Карточка, заблокированная тарифом
// владельца, слотов не показывает.
type Handler struct {
	log     *slog.Logger
	service Service
	gate    Gate
}

// Result тело успешного ответа. Unavailable означает, что данные не удалось
// получить вовремя и список пуст не потому, что всё занято.
type Result struct {
	Date        string   `json:"date"`
	Slots       []string `json:"slots"`
	Unavailable bool     `json:"unavailable,omitempty"`
}

// New создает Handler.
func New(log *slog.Logger, service Service, gate Gate) *Handler {
	return &Handler{
		log:     log,
		service: service,
		gate:    gate,
	}
}

// ServeHTTP godoc
// @Summary Свободные слоты карточки
// @Description Возвращает свободное время на дату. При недоступности хранилища отдаёт пустой список с флагом unavailable.
// @Tags Booking
// @Produce json
// @Param cardID path string true "ID карточки"
// @Param date query string true "Дата в формате YYYY-MM-DD"
// @Success 200 {object} response.Response{data=Result}
// @Failure 400 {object} response.ErrorResponse "Некорректная дата"
// @Failure 403 {object} response.ErrorResponse "Карточка заблокирована тарифом"
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка настроек рабочего времени"
// @Router /cards/{cardID}/slots [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.slots"
	cardID := chi.URLParam(r, "cardID")
	date := r.URL.Query().Get("date")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("card_id", cardID),
		slog.String("date", date),
	)

	if cardID == "" || date == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("card id and date are required"))
		return
	}

	if err := h.gate.CheckBookable(r.Context(), cardID); err != nil {
		switch {
		case errors.Is(err, plan.ErrCardLocked):
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("card does not accept bookings"))
		case errors.Is(err, repository.ErrNotFound), errors.Is(err, plan.ErrCardNotOwned):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("card not found"))
		default:
			log.Warn("failed to check card plan", sl.Err(err))
			render.JSON(w, r, response.OKWithData(Result{Date: date, Slots: []string{}, Unavailable: true}))
		}
		return
	}

	free, err := h.service.AvailableSlots(r.Context(), cardID, date)
	switch {
	case err == nil:
		render.JSON(w, r, response.OKWithData(Result{Date: date, Slots: free}))
	case errors.Is(err, booking.ErrSlotsUnavailable):
		log.Warn("slots unavailable", sl.Err(err))
		render.JSON(w, r, response.OKWithData(Result{Date: date, Slots: []string{}, Unavailable: true}))
	case errors.Is(err, booking.ErrInvalidDate):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("date must be in format YYYY-MM-DD"))
	default:
		log.Error("failed to compute slots", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not compute available slots"))
	}
}
