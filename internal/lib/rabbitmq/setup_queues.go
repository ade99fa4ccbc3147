package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// QueueConfig описывает очередь и ключ маршрутизации для нее.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди почтовых уведомлений маркетплейса.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.access-approved", RoutingKey: "access.approved"},
		{QueueName: "notification.access-rejected", RoutingKey: "access.rejected"},
	}
}

// SetupQueues объявляет exchange и очереди уведомлений с привязками.
func SetupQueues(ch *amqp.Channel, exchange string) error {
	const op = "rabbitmq.SetupQueues"
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, q := range GetNotificationQueues() {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, exchange, false, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
