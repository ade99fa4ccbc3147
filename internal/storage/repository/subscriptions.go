package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

const subscriptionColumns = `id, user_uid, stripe_customer_id, stripe_subscription_id,
		      plan_name, status, start_date, current_period_end, cancel_at_period_end,
		      canceled_at, latest_invoice_url, last_payment_success, last_payment_failure,
		      payment_failure_reason, created_at, updated_at`

// GetSubscriptionByUser возвращает запись подписки пользователя,
// либо nil, если подписки нет.
func (s *Storage) GetSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUser"

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_uid = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpsertSubscription создаёт или обновляет зеркало подписки по событию
// вебхука. Ключ конфликта — идентификатор подписки во внешней системе,
// поэтому повторная доставка события идемпотентна.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.UpsertSubscription"

	var id string
	query := `INSERT INTO subscriptions (user_uid, stripe_customer_id, stripe_subscription_id,
			      plan_name, status, start_date, current_period_end, cancel_at_period_end)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (stripe_subscription_id) DO UPDATE
			  SET plan_name = EXCLUDED.plan_name,
			      status = EXCLUDED.status,
			      current_period_end = EXCLUDED.current_period_end,
			      cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			      updated_at = now()
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.StripeCustomerID, sub.StripeSubscriptionID,
		sub.PlanName, sub.Status, sub.StartDate, sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// MarkSubscriptionCanceled фиксирует отмену подписки с меткой времени.
func (s *Storage) MarkSubscriptionCanceled(ctx context.Context, stripeSubscriptionID string) error {
	const op = "storage.MarkSubscriptionCanceled"

	query := `UPDATE subscriptions
			  SET status = $1, canceled_at = now(), updated_at = now()
			  WHERE stripe_subscription_id = $2`
	if _, err := s.DB.ExecContext(ctx, query,
		models.SubscriptionStatusCanceled, stripeSubscriptionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RecordPaymentSuccess отмечает успешную оплату и ссылку на счёт.
func (s *Storage) RecordPaymentSuccess(ctx context.Context, stripeSubscriptionID, invoiceURL string) error {
	const op = "storage.RecordPaymentSuccess"

	query := `UPDATE subscriptions
			  SET status = $1, last_payment_success = now(),
			      latest_invoice_url = $2, payment_failure_reason = '',
			      updated_at = now()
			  WHERE stripe_subscription_id = $3`
	if _, err := s.DB.ExecContext(ctx, query,
		models.SubscriptionStatusActive, invoiceURL, stripeSubscriptionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RecordPaymentFailure отмечает неуспешную оплату и причину.
func (s *Storage) RecordPaymentFailure(ctx context.Context, stripeSubscriptionID, reason string) error {
	const op = "storage.RecordPaymentFailure"

	query := `UPDATE subscriptions
			  SET status = $1, last_payment_failure = now(),
			      payment_failure_reason = $2, updated_at = now()
			  WHERE stripe_subscription_id = $3`
	if _, err := s.DB.ExecContext(ctx, query,
		models.SubscriptionStatusPastDue, reason, stripeSubscriptionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindPlan ищет тариф сначала по slug, затем по имени. PlanName в подписке —
// свободный текст, поэтому оба варианта допустимы. Возвращает nil, если
// тариф не найден.
func (s *Storage) FindPlan(ctx context.Context, identifier string) (*models.Plan, error) {
	const op = "storage.FindPlan"

	query := `SELECT id, name, slug, description, amount, stripe_price_id, is_active
			  FROM plans
			  WHERE slug = $1 OR name = $1
			  ORDER BY (slug = $1) DESC
			  LIMIT 1`
	p := &models.Plan{}
	err := s.DB.QueryRowContext(ctx, query, identifier).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Amount, &p.StripePriceID, &p.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var startDate, periodEnd, canceledAt, paySuccess, payFailure sql.NullTime
	var invoiceURL, failureReason sql.NullString

	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.StripeCustomerID,
		&sub.StripeSubscriptionID, &sub.PlanName, &sub.Status,
		&startDate, &periodEnd, &sub.CancelAtPeriodEnd, &canceledAt,
		&invoiceURL, &paySuccess, &payFailure, &failureReason,
		&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}

	if startDate.Valid {
		sub.StartDate = &startDate.Time
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = &periodEnd.Time
	}
	if canceledAt.Valid {
		sub.CanceledAt = &canceledAt.Time
	}
	if paySuccess.Valid {
		sub.LastPaymentSuccess = &paySuccess.Time
	}
	if payFailure.Valid {
		sub.LastPaymentFailure = &payFailure.Time
	}
	sub.LatestInvoiceURL = invoiceURL.String
	sub.PaymentFailureReason = failureReason.String
	return sub, nil
}
