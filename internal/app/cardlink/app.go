package cardlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/cardlink/internal/cache"
	"github.com/magabrotheeeer/cardlink/internal/config"
	"github.com/magabrotheeeer/cardlink/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cardlink/internal/lib/jwt"
	"github.com/magabrotheeeer/cardlink/internal/lib/metrics"
	"github.com/magabrotheeeer/cardlink/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
	"github.com/magabrotheeeer/cardlink/internal/meeting"
	"github.com/magabrotheeeer/cardlink/internal/migrations"
	"github.com/magabrotheeeer/cardlink/internal/models"
	"github.com/magabrotheeeer/cardlink/internal/services/booking"
	"github.com/magabrotheeeer/cardlink/internal/services/plan"
	"github.com/magabrotheeeer/cardlink/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// ErrNotifierDisabled брокер не настроен, уведомления не отправляются.
var ErrNotifierDisabled = errors.New("booking notifications are disabled")

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилище, кэш и брокер, применяет миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.cardlink.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{logger: logger, db: db, cache: redisCache}

	var notifier booking.Notifier = disabledNotifier{}
	if cfg.RabbitMQURL != "" {
		app.conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.ch, err = rabbitmq.SetupChannel(app.conn, rabbitmq.NotificationQueues())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		notifier = rabbitmq.NewBookingNotifier(app.ch)
	} else {
		logger.Warn("rabbitmq url is not set, booking notifications are disabled")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	bookingService := booking.NewService(db, redisCache, meeting.NewClient(cfg.Zoom, cfg.MeetingDuration),
		notifier, m, logger, cfg.Booking)
	planService := plan.NewService(db, redisCache, m, logger, cfg.Payment)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Slots:         bookingService,
		Booking:       bookingService,
		Bookable:      planService,
		Cards:         planService,
		CardAccess:    planService,
		Leads:         db,
		WorkingHours:  bookingService,
		Payments:      planService,
		Tokens:        jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		DB:            db.DB,
		Metrics:       promhttp.Handler(),
		BookingLimit:  middlewarectx.NewRateLimiter(logger, cfg.BookingRateLimit, cfg.BookingRateBurst),
		WebhookSecret: cfg.WebhookSecret,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер
// и закрывает соединения.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down HTTP server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}

type disabledNotifier struct{}

func (disabledNotifier) PublishBooking(context.Context, models.BookingNotification) error {
	return ErrNotifierDisabled
}
