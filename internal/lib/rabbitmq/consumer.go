package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
)

// maxInFlight сколько сообщений обрабатывается одновременно.
const maxInFlight = 10

// ErrDeliveryClosed брокер закрыл доставку, например при потере соединения.
var ErrDeliveryClosed = errors.New("delivery channel closed")

// Consumer часть *amqp.Channel, нужная для чтения очереди.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь.
type Handler func(ctx context.Context, body []byte) error

// ConsumeMessages читает очередь queueName и передаёт сообщения в handler,
// пока не отменён ctx или брокер не закрыл доставку. Успешно обработанные
// сообщения подтверждаются, остальные возвращаются в очередь.
// Возвращается после завершения всех начатых обработчиков: nil при отмене ctx
// и ErrDeliveryClosed, если доставку закрыл брокер.
func ConsumeMessages(ctx context.Context, ch Consumer, queueName string, handler Handler, log *slog.Logger) error {
	const op = "rabbitmq.ConsumeMessages"
	log = log.With(sl.Op(op), slog.String("queue", queueName))

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	sem := make(chan struct{}, maxInFlight)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				log.Warn("delivery channel closed")
				return fmt.Errorf("%s: %w", op, ErrDeliveryClosed)
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer func() {
					<-sem
					wg.Done()
				}()
				handle(ctx, d, handler, log)
			}(d)
		}
	}
}

func handle(ctx context.Context, d amqp.Delivery, handler Handler, log *slog.Logger) {
	if err := handler(ctx, d.Body); err != nil {
		log.Error("failed to handle message", slog.Uint64("delivery_tag", d.DeliveryTag), sl.Err(err))
		// повторно доставленное сообщение второй раз не возвращаем
		if nackErr := d.Nack(false, !d.Redelivered); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
