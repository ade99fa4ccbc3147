package billing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) UpsertSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

func (m *MockSubscriptionRepository) MarkSubscriptionCanceled(ctx context.Context, stripeSubscriptionID string) error {
	args := m.Called(ctx, stripeSubscriptionID)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) RecordPaymentSuccess(ctx context.Context, stripeSubscriptionID, invoiceURL string) error {
	args := m.Called(ctx, stripeSubscriptionID, invoiceURL)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) RecordPaymentFailure(ctx context.Context, stripeSubscriptionID, reason string) error {
	args := m.Called(ctx, stripeSubscriptionID, reason)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) LinkSubscription(ctx context.Context, userUID, subscriptionID string) error {
	args := m.Called(ctx, userUID, subscriptionID)
	return args.Error(0)
}

func newService(subs *MockSubscriptionRepository, users *MockUserRepository) *Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(subs, users, logger)
}

func TestHandleEvent(t *testing.T) {
	t.Run("Оформление активирует подписку и привязывает её к пользователю", func(t *testing.T) {
		subs := new(MockSubscriptionRepository)
		users := new(MockUserRepository)
		periodEnd := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

		subs.On("UpsertSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
			return s.UserUID == "user-1" &&
				s.StripeSubscriptionID == "sub_1" &&
				s.PlanName == "Pro" &&
				s.Status == models.SubscriptionStatusActive &&
				s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.Equal(periodEnd)
		})).Return("local-sub-1", nil)
		users.On("LinkSubscription", mock.Anything, "user-1", "local-sub-1").Return(nil)

		err := newService(subs, users).HandleEvent(context.Background(), Event{
			Type:                 EventCheckoutCompleted,
			UserUID:              "user-1",
			StripeCustomerID:     "cus_1",
			StripeSubscriptionID: "sub_1",
			PlanName:             "Pro",
			CurrentPeriodEnd:     &periodEnd,
		})

		assert.NoError(t, err)
		subs.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("Обновление подписки переносит статус и флаг отмены", func(t *testing.T) {
		subs := new(MockSubscriptionRepository)
		users := new(MockUserRepository)

		subs.On("UpsertSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
			return s.StripeSubscriptionID == "sub_1" &&
				s.Status == models.SubscriptionStatusPastDue &&
				s.CancelAtPeriodEnd
		})).Return("local-sub-1", nil)

		err := newService(subs, users).HandleEvent(context.Background(), Event{
			Type:                 EventSubscriptionUpdated,
			StripeSubscriptionID: "sub_1",
			Status:               models.SubscriptionStatusPastDue,
			CancelAtPeriodEnd:    true,
		})

		assert.NoError(t, err)
		subs.AssertExpectations(t)
		users.AssertNotCalled(t, "LinkSubscription", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Удаление подписки фиксирует отмену", func(t *testing.T) {
		subs := new(MockSubscriptionRepository)
		users := new(MockUserRepository)

		subs.On("MarkSubscriptionCanceled", mock.Anything, "sub_1").Return(nil)

		err := newService(subs, users).HandleEvent(context.Background(), Event{
			Type:                 EventSubscriptionDeleted,
			StripeSubscriptionID: "sub_1",
		})

		assert.NoError(t, err)
		subs.AssertExpectations(t)
	})

	t.Run("Успешная оплата сохраняет ссылку на счёт", func(t *testing.T) {
		subs := new(MockSubscriptionRepository)
		users := new(MockUserRepository)

		subs.On("RecordPaymentSuccess", mock.Anything, "sub_1", "https://pay.example/inv_1").Return(nil)

		err := newService(subs, users).HandleEvent(context.Background(), Event{
			Type:                 EventPaymentSucceeded,
			StripeSubscriptionID: "sub_1",
			InvoiceURL:           "https://pay.example/inv_1",
		})

		assert.NoError(t, err)
		subs.AssertExpectations(t)
	})

	t.Run("Неуспешная оплата сохраняет причину", func(t *testing.T) {
		subs := new(MockSubscriptionRepository)
		users := new(MockUserRepository)

		subs.On("RecordPaymentFailure", mock.Anything, "sub_1", "card_declined").Return(nil)

		err := newService(subs, users).HandleEvent(context.Background(), Event{
			Type:                 EventPaymentFailed,
			StripeSubscriptionID: "sub_1",
			FailureReason:        "card_declined",
		})

		assert.NoError(t, err)
		subs.AssertExpectations(t)
	})

	t.Run("Неизвестный тип события подтверждается без записи", func(t *testing.T) {
		subs := new(MockSubscriptionRepository)
		users := new(MockUserRepository)

		err := newService(subs, users).HandleEvent(context.Background(), Event{
			Type: "customer.created",
		})

		assert.NoError(t, err)
		subs.AssertNotCalled(t, "UpsertSubscription", mock.Anything, mock.Anything)
	})

	t.Run("Ошибка хранилища возвращается вызывающему", func(t *testing.T) {
		subs := new(MockSubscriptionRepository)
		users := new(MockUserRepository)
		dbErr := errors.New("connection reset")

		subs.On("MarkSubscriptionCanceled", mock.Anything, "sub_1").Return(dbErr)

		err := newService(subs, users).HandleEvent(context.Background(), Event{
			Type:                 EventSubscriptionDeleted,
			StripeSubscriptionID: "sub_1",
		})

		assert.ErrorIs(t, err, dbErr)
	})
}
