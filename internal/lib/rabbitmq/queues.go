package rabbitmq

// QueueConfig очередь и ключ маршрутизации, с которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Очередь уведомлений о новых бронях.
const (
	BookingQueue      = "notification.booking"
	BookingRoutingKey = "booking"
)

// NotificationQueues очереди, которые объявляют и издатель, и воркер рассылки.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: BookingQueue, RoutingKey: BookingRoutingKey},
	}
}
