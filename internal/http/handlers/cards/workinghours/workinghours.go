// Package workinghours реализует обработчик настройки рабочего времени карточки.
package workinghours

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
	"github.com/magabrotheeeer/cardlink/internal/lib/slots"
	"github.com/magabrotheeeer/cardlink/internal/lib/validation"
	"github.com/magabrotheeeer/cardlink/internal/models"
)

const maxBodyBytes = 4 << 10

// Service сохраняет рабочее время карточки.
type Service interface {
	SetWorkingHours(ctx context.Context, cardID string, wh models.WorkingHours) error
}

// Request тело запроса PUT /me/cards/{cardID}/working-hours.
type Request struct {
	Days                []int  `json:"days" validate:"max=7,dive,min=0,max=6"`
	Start               string `json:"start" validate:"required,datetime=15:04"`
	End                 string `json:"end" validate:"required,datetime=15:04"`
	SlotDurationMinutes int    `json:"slot_duration_minutes" validate:"required,min=1,max=1440"`
}

// Handler обрабатывает изменение рабочего времени. Доступ к карточке
// проверяется middleware до вызова обработчика.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validation.New(),
	}
}

// ServeHTTP godoc
// @Summary Рабочее время карточки
// @Description Задаёт дни, часы и длительность слота для записи. Новые слоты видны сразу.
// @Tags Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param cardID path string true "ID карточки"
// @Param request body Request true "Рабочее время"
// @Success 200 {object} response.Response{data=models.WorkingHours}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Карточка заблокирована тарифом"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /me/cards/{cardID}/working-hours [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cards.workinghours"
	cardID := chi.URLParam(r, "cardID")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("card_id", cardID),
	)

	var req Request
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

	wh := models.WorkingHours{
		Days:                req.Days,
		Start:               req.Start,
		End:                 req.End,
		SlotDurationMinutes: req.SlotDurationMinutes,
	}
	if wh.Days == nil {
		wh.Days = []int{}
	}

	err := h.service.SetWorkingHours(r.Context(), cardID, wh)
	switch {
	case err == nil:
		log.Info("working hours saved")
		render.JSON(w, r, response.OKWithData(wh))
	case errors.Is(err, slots.ErrEmptyGrid):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("start must be earlier than end by at least one slot"))
	case errors.Is(err, slots.ErrInvalidDay), errors.Is(err, slots.ErrInvalidClock),
		errors.Is(err, slots.ErrInvalidSlotDuration):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid working hours"))
	default:
		log.Error("failed to save working hours", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save working hours"))
	}
}
