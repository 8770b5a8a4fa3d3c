package middlewarectx

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
	"github.com/magabrotheeeer/cardlink/internal/services/plan"
)

// CardAccessChecker проверяет, доступна ли карточка пользователю на его тарифе.
type CardAccessChecker interface {
	CheckCardAccess(ctx context.Context, userUID, cardID string) error
}

// CardAccessMiddleware пропускает запрос к карточке {cardID} только её
// владельцу и только если тариф не блокирует карточку.
func CardAccessMiddleware(log *slog.Logger, checker CardAccessChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.CardAccessMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userUID, ok := UserUIDFrom(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}
			cardID := chi.URLParam(r, "cardID")

			err := checker.CheckCardAccess(r.Context(), userUID, cardID)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, plan.ErrCardLocked):
				log.Info("card is locked by plan", slog.String("card_id", cardID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("card is locked on current plan, upgrade to unlock"))
			case errors.Is(err, plan.ErrCardNotOwned):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("card not found"))
			default:
				log.Error("failed to check card access", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
			}
		})
	}
}
