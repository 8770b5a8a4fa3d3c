// Package reserve реализует публичный обработчик бронирования слота.
//
// Handler принимает дату, время и контакты посетителя, проверяет, что карточка
// не заблокирована тарифом владельца, и проводит бронь через сессию записи.
package reserve

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cardlink/internal/http/response"
	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
	"github.com/magabrotheeeer/cardlink/internal/lib/validation"
	"github.com/magabrotheeeer/cardlink/internal/models"
	"github.com/magabrotheeeer/cardlink/internal/services/booking"
	"github.com/magabrotheeeer/cardlink/internal/services/plan"
	"github.com/magabrotheeeer/cardlink/internal/storage/repository"
)

// maxBodyBytes ограничение размера тела запроса.
const maxBodyBytes = 16 << 10

// Service проводит бронь выбранного в сессии слота.
type Service interface {
	Book(ctx context.Context, sess *booking.Session, cardID string, client models.ClientInfo) (*models.BookingResult, error)
}

// Gate проверяет, принимает ли карточка брони на тарифе владельца.
type Gate interface {
	CheckBookable(ctx context.Context, cardID string) error
}

// Handler обрабатывает запросы на бронирование.
type Handler struct {
	log      *slog.Logger
	service  Service
	gate     Gate
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service, gate Gate) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		gate:     gate,
		validate: validation.New(),
	}
}

// ServeHTTP godoc
// @Summary Забронировать слот
// @Description Бронирует время на карточке. Повторная бронь с тем же телефоном обновляет лид.
// @Tags Booking
// @Accept json
// @Produce json
// @Param cardID path string true "ID карточки"
// @Param request body models.DummyBooking true "Дата, время и контакты"
// @Success 200 {object} response.Response{data=models.BookingResult}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Карточка заблокирована тарифом"
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Failure 409 {object} response.ErrorResponse "Время не входит в рабочую сетку"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Не удалось сохранить бронь"
// @Router /cards/{cardID}/bookings [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.reserve"
	cardID := chi.URLParam(r, "cardID")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("card_id", cardID),
	)

	var req models.DummyBooking
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.gate.CheckBookable(r.Context(), cardID); err != nil {
		h.renderError(w, r, log, err)
		return
	}

	sess := booking.NewSession()
	if err := sess.SelectDate(req.Date); err != nil {
		h.renderError(w, r, log, err)
		return
	}
	if err := sess.SelectTime(req.Time); err != nil {
		h.renderError(w, r, log, err)
		return
	}

	res, err := h.service.Book(r.Context(), sess, cardID, req.Client)
	if err != nil {
		h.renderError(w, r, log, err)
		return
	}

	log.Info("slot booked", slog.String("date", res.Date), slog.String("time", res.Time))
	render.JSON(w, r, response.OKWithData(res))
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
	case errors.Is(err, booking.ErrInvalidDate):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("date must be YYYY-MM-DD and time HH:MM"))
	case errors.Is(err, plan.ErrCardLocked):
		log.Info("booking rejected, card is locked")
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("card does not accept bookings"))
	case errors.Is(err, booking.ErrCardNotFound), errors.Is(err, repository.ErrNotFound),
		errors.Is(err, plan.ErrCardNotOwned):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("card not found"))
	case errors.Is(err, booking.ErrSlotUnavailable):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("selected time is not available"))
	default:
		log.Error("failed to book slot", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not complete booking, please try again"))
	}
}
