// Package list реализует обработчик списка карточек владельца с отметкой блокировки.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cardlink/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cardlink/internal/http/response"
	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
	"github.com/magabrotheeeer/cardlink/internal/services/plan"
)

// Service возвращает карточки пользователя с решением о доступе.
type Service interface {
	CardAccess(ctx context.Context, userUID string) (*plan.CardList, error)
}

// Handler обрабатывает GET /me/cards.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Карточки пользователя
// @Description Карточки, новые первыми, с признаком блокировки на текущем тарифе и лимитами тарифа.
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=plan.CardList}
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /me/cards [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cards.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFrom(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	list, err := h.service.CardAccess(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list cards", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list cards"))
		return
	}
	render.JSON(w, r, response.OKWithData(list))
}
