// Package cardlink собирает HTTP API: маршруты, зависимости и жизненный цикл сервера.
package cardlink

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/cardlink/internal/http/handlers/booking/reserve"
	"github.com/magabrotheeeer/cardlink/internal/http/handlers/booking/slots"
	"github.com/magabrotheeeer/cardlink/internal/http/handlers/cards/leads"
	"github.com/magabrotheeeer/cardlink/internal/http/handlers/cards/list"
	"github.com/magabrotheeeer/cardlink/internal/http/handlers/cards/workinghours"
	"github.com/magabrotheeeer/cardlink/internal/http/handlers/health"
	"github.com/magabrotheeeer/cardlink/internal/http/handlers/payment/webhook"
	"github.com/magabrotheeeer/cardlink/internal/http/middlewarectx"
)

// Services зависимости обработчиков.
type Services struct {
	Slots         slots.Service
	Booking       reserve.Service
	Bookable      reserve.Gate
	Cards         list.Service
	CardAccess    middlewarectx.CardAccessChecker
	Leads         leads.Repository
	WorkingHours  workinghours.Service
	Payments      webhook.Service
	Tokens        middlewarectx.TokenParser
	DB            health.Pinger
	Metrics       http.Handler
	BookingLimit  *middlewarectx.RateLimiter
	WebhookSecret string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/health", health.New(logger, s.DB).ServeHTTP)
	r.Handle("/metrics", s.Metrics)
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// публичные страницы карточек
		r.Get("/cards/{cardID}/slots", slots.New(logger, s.Slots, s.Bookable).ServeHTTP)
		r.With(s.BookingLimit.Middleware).
			Post("/cards/{cardID}/bookings", reserve.New(logger, s.Booking, s.Bookable).ServeHTTP)

		r.Post("/payments/webhook", webhook.New(logger, s.Payments, s.WebhookSecret).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Tokens, logger))
			r.Get("/me/cards", list.New(logger, s.Cards).ServeHTTP)

			r.Route("/me/cards/{cardID}", func(r chi.Router) {
				r.Use(middlewarectx.CardAccessMiddleware(logger, s.CardAccess))
				r.Get("/leads", leads.New(logger, s.Leads).ServeHTTP)
				r.Put("/working-hours", workinghours.New(logger, s.WorkingHours).ServeHTTP)
			})
		})
	})
}
