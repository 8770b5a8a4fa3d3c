package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/cardlink/internal/models"
)

// Publisher часть *amqp.Channel, нужная для публикации.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublishMessage сериализует message в JSON и публикует его как постоянное сообщение.
func PublishMessage(ch Publisher, exchange, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// BookingNotifier публикует уведомления о бронях в очередь рассылки.
type BookingNotifier struct {
	ch Publisher
}

// NewBookingNotifier создаёт издателя уведомлений поверх открытого канала.
func NewBookingNotifier(ch Publisher) *BookingNotifier {
	return &BookingNotifier{ch: ch}
}

// PublishBooking ставит уведомление о брони в очередь.
// streadway/amqp не принимает контекст, поэтому ctx проверяется только до публикации.
func (n *BookingNotifier) PublishBooking(ctx context.Context, msg models.BookingNotification) error {
	const op = "rabbitmq.PublishBooking"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := PublishMessage(n.ch, NotificationsExchange, BookingRoutingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
