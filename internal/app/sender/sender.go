// Package sender собирает воркер, который рассылает письма о новых бронях.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/cardlink/internal/config"
	"github.com/magabrotheeeer/cardlink/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
	"github.com/magabrotheeeer/cardlink/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/cardlink/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New подключается к брокеру и объявляет очереди уведомлений.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewService(transport, logger),
		logger:        logger,
	}, nil
}

// Run читает очередь броней до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	a.logger.Info("consuming booking notifications", slog.String("queue", rabbitmq.BookingQueue))
	err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.BookingQueue, a.senderService.SendBookingNotification, a.logger)
	if err != nil {
		a.logger.Error("failed to consume booking notifications", sl.Err(err))
		return err
	}
	a.logger.Info("sender service shutting down gracefully")
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
