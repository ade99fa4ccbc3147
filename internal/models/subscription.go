package models

import "time"

// Статусы подписки, зеркалируемые из платёжного провайдера. Для доступа
// к платным возможностям учитывается только SubscriptionStatusActive.
const (
	SubscriptionStatusIncomplete = "incomplete"
	SubscriptionStatusTrialing   = "trialing"
	SubscriptionStatusActive     = "active"
	SubscriptionStatusPastDue    = "past_due"
	SubscriptionStatusCanceled   = "canceled"
	SubscriptionStatusUnpaid     = "unpaid"
)

// Subscription зеркалирует состояние подписки во внешней биллинговой системе.
// Запись обновляется только обработчиком вебхуков; остальной код читает
// Status и PlanName для вычисления прав доступа.
type Subscription struct {
	ID                   string
	UserUID              string
	StripeCustomerID     string
	StripeSubscriptionID string
	PlanName             string // Свободный текст на момент оформления
	Status               string

	StartDate            *time.Time
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
	CanceledAt           *time.Time
	LatestInvoiceURL     string
	LastPaymentSuccess   *time.Time
	LastPaymentFailure   *time.Time
	PaymentFailureReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

/// Plan представляет тариф из каталога. Справочные данные: любой тариф
// со slug, отличным от "free", считается безлимитным.
type Plan struct {
	ID            string
	Name          string
	Slug          string
	Description   string
	Amount        int
	StripePriceID string
	IsActive      bool
}
