// Package leads реализует обработчик списка лидов карточки для её владельца.
package leads

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cardlink/internal/http/response"
	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
	"github.com/magabrotheeeer/cardlink/internal/models"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Repository читает лиды карточки.
type Repository interface {
	ListLeads(ctx context.Context, cardID string, limit, offset int) ([]*models.Lead, error)
}

// Handler обрабатывает GET /me/cards/{cardID}/leads. Доступ к карточке
// проверяется middleware до вызова обработчика.
type Handler struct {
	log  *slog.Logger
	repo Repository
}

// New создает Handler.
func New(log *slog.Logger, repo Repository) *Handler {
	return &Handler{
		log:  log,
		repo: repo,
	}
}

// ServeHTTP godoc
// @Summary Лиды карточки
// @Description Лиды карточки с историей обращений, недавно обновлённые первыми.
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Param cardID path string true "ID карточки"
// @Param limit query int false "Размер страницы (по умолчанию 50, максимум 200)"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response{data=[]models.Lead}
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры пагинации"
// @Failure 403 {object} response.ErrorResponse "Карточка заблокирована тарифом"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /me/cards/{cardID}/leads [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cards.leads"
	cardID := chi.URLParam(r, "cardID")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("card_id", cardID),
	)

	limit, err := intParam(r, "limit", defaultLimit)
	if err != nil || limit < 1 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("limit must be a positive integer"))
		return
	}
	limit = min(limit, maxLimit)
	offset, err := intParam(r, "offset", 0)
	if err != nil || offset < 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("offset must be a non-negative integer"))
		return
	}

	leads, err := h.repo.ListLeads(r.Context(), cardID, limit, offset)
	if err != nil {
		log.Error("failed to list leads", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list leads"))
		return
	}
	render.JSON(w, r, response.OKWithData(leads))
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
