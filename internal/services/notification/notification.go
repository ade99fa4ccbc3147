// Package notification отправляет уведомления о решениях по заявкам
// в очередь брокера. Доставка fire-and-forget: сбой публикации не влияет
// на исход операции, которая её вызвала.
package notification

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/template-marketplace/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
)

// Маршрутные ключи уведомлений о заявках.
const (
	routingKeyApproved = "access.approved"
	routingKeyRejected = "access.rejected"
)

// EmailMessage полезная нагрузка письма для сервиса отправки.
type EmailMessage struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Service публикует уведомления в обменник брокера.
type Service struct {
	ch       *amqp.Channel
	exchange string
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(ch *amqp.Channel, exchange string, log *slog.Logger) *Service {
	return &Service{ch: ch, exchange: exchange, log: log}
}

// NotifyApproved отправляет уведомление об одобрении заявки.
func (s *Service) NotifyApproved(_ context.Context, email, name string) {
	msg := EmailMessage{
		Email:   email,
		Name:    name,
		Subject: "Доступ к команде одобрен",
		Body:    "Ваша заявка на командный доступ одобрена. Подключите аккаунт Canva в настройках профиля.",
	}
	s.publish(routingKeyApproved, msg)
}

// NotifyRejected отправляет уведомление об отклонении заявки.
func (s *Service) NotifyRejected(_ context.Context, email, name, notes string) {
	body := "Ваша заявка на командный доступ отклонена."
	if notes != "" {
		body += " Комментарий администратора: " + notes
	}
	msg := EmailMessage{
		Email:   email,
		Name:    name,
		Subject: "Заявка на доступ отклонена",
		Body:    body,
	}
	s.publish(routingKeyRejected, msg)
}

func (s *Service) publish(routingKey string, msg EmailMessage) {
	if s.ch == nil {
		s.log.Warn("notification channel is not configured, skipping",
			slog.String("routing_key", routingKey))
		return
	}
	if err := rabbitmq.PublishMessage(s.ch, s.exchange, routingKey, msg); err != nil {
		s.log.Error("failed to publish notification",
			slog.String("routing_key", routingKey),
			slog.String("email", msg.Email), sl.Err(err))
	}
}
