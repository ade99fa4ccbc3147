// Package billing синхронизирует зеркало подписок с событиями платёжного
// провайдера. Ядро не обращается к провайдеру само: все изменения приходят
// вебхуками, остальной код читает только статус и имя тарифа.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// Типы событий провайдера, которые обрабатывает сервис. Остальные
// подтверждаются без действий.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentSucceeded    = "invoice.payment_succeeded"
	EventPaymentFailed       = "invoice.payment_failed"
)

// Event нормализованное событие вебхука после разбора полезной нагрузки.
type Event struct {
	Type                 string
	UserUID              string
	StripeCustomerID     string
	StripeSubscriptionID string
	PlanName             string
	Status               string
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
	InvoiceURL           string
	FailureReason        string
}

// SubscriptionRepository определяет методы записи зеркала подписок.
type SubscriptionRepository interface {
	// UpsertSubscription создаёт или обновляет зеркало подписки.
	UpsertSubscription(ctx context.Context, sub models.Subscription) (string, error)
	// MarkSubscriptionCanceled фиксирует отмену подписки.
	MarkSubscriptionCanceled(ctx context.Context, stripeSubscriptionID string) error
	// RecordPaymentSuccess отмечает успешную оплату.
	RecordPaymentSuccess(ctx context.Context, stripeSubscriptionID, invoiceURL string) error
	// RecordPaymentFailure отмечает неуспешную оплату.
	RecordPaymentFailure(ctx context.Context, stripeSubscriptionID, reason string) error
}

// UserRepository определяет методы привязки подписки к пользователю.
type UserRepository interface {
	// LinkSubscription привязывает запись подписки к пользователю.
	LinkSubscription(ctx context.Context, userUID, subscriptionID string) error
}

// Service обрабатывает события платёжного провайдера.
type Service struct {
	subs  SubscriptionRepository
	users UserRepository
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(subs SubscriptionRepository, users UserRepository, log *slog.Logger) *Service {
	return &Service{subs: subs, users: users, log: log}
}

// HandleEvent применяет событие к зеркалу подписок. Неизвестные типы
// событий подтверждаются без действий: провайдер шлёт больше, чем нужно.
func (s *Service) HandleEvent(ctx context.Context, event Event) error {
	const op = "services.billing.HandleEvent"

	switch event.Type {
	case EventCheckoutCompleted:
		now := time.Now()
		sub := models.Subscription{
			UserUID:              event.UserUID,
			StripeCustomerID:     event.StripeCustomerID,
			StripeSubscriptionID: event.StripeSubscriptionID,
			PlanName:             event.PlanName,
			Status:               models.SubscriptionStatusActive,
			StartDate:            &now,
			CurrentPeriodEnd:     event.CurrentPeriodEnd,
		}
		id, err := s.subs.UpsertSubscription(ctx, sub)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.users.LinkSubscription(ctx, event.UserUID, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("subscription activated",
			slog.String("user_uid", event.UserUID),
			slog.String("plan_name", event.PlanName))

	case EventSubscriptionUpdated:
		sub := models.Subscription{
			UserUID:              event.UserUID,
			StripeCustomerID:     event.StripeCustomerID,
			StripeSubscriptionID: event.StripeSubscriptionID,
			PlanName:             event.PlanName,
			Status:               event.Status,
			CurrentPeriodEnd:     event.CurrentPeriodEnd,
			CancelAtPeriodEnd:    event.CancelAtPeriodEnd,
		}
		if _, err := s.subs.UpsertSubscription(ctx, sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

	case EventSubscriptionDeleted:
		if err := s.subs.MarkSubscriptionCanceled(ctx, event.StripeSubscriptionID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("subscription canceled",
			slog.String("stripe_subscription_id", event.StripeSubscriptionID))

	case EventPaymentSucceeded:
		if err := s.subs.RecordPaymentSuccess(ctx, event.StripeSubscriptionID, event.InvoiceURL); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

	case EventPaymentFailed:
		if err := s.subs.RecordPaymentFailure(ctx, event.StripeSubscriptionID, event.FailureReason); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Warn("payment failed",
			slog.String("stripe_subscription_id", event.StripeSubscriptionID),
			slog.String("reason", event.FailureReason))

	default:
		s.log.Info("ignoring webhook event", slog.String("type", event.Type))
	}
	return nil
}
