package entitlement

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

type SubsRepoMock struct{ mock.Mock }

func (m *SubsRepoMock) GetSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *SubsRepoMock) FindPlan(ctx context.Context, identifier string) (*models.Plan, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

type HistoryRepoMock struct{ mock.Mock }

func (m *HistoryRepoMock) CountViewedSince(ctx context.Context, userUID string, since time.Time) (int, error) {
	args := m.Called(ctx, userUID, since)
	return args.Int(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveAccess(t *testing.T) {
	tests := []struct {
		name      string
		sub       *models.Subscription
		plan      *models.Plan
		want      models.Entitlement
		skipPlans bool
	}{
		{
			name:      "Без подписки действует бесплатный тариф",
			sub:       nil,
			skipPlans: true,
			want: models.Entitlement{
				IsUnlimited:   false,
				TemplateLimit: models.FreeTemplateLimit,
				PlanName:      "free",
			},
		},
		{
			name:      "Неактивная подписка не даёт доступа",
			sub:       &models.Subscription{Status: models.SubscriptionStatusPastDue, PlanName: "Pro"},
			skipPlans: true,
			want: models.Entitlement{
				IsUnlimited:   false,
				TemplateLimit: models.FreeTemplateLimit,
				PlanName:      "free",
			},
		},
		{
			name: "Активная подписка на платный тариф",
			sub:  &models.Subscription{Status: models.SubscriptionStatusActive, PlanName: "pro"},
			plan: &models.Plan{Name: "Pro", Slug: "pro"},
			want: models.Entitlement{
				IsUnlimited:           true,
				TemplateLimit:         models.UnlimitedTemplates,
				PlanName:              "Pro",
				HasActiveSubscription: true,
			},
		},
		{
			name: "Активная подписка на бесплатный тариф",
			sub:  &models.Subscription{Status: models.SubscriptionStatusActive, PlanName: "free"},
			plan: &models.Plan{Name: "Free", Slug: "free"},
			want: models.Entitlement{
				IsUnlimited:           false,
				TemplateLimit:         models.FreeTemplateLimit,
				PlanName:              "Free",
				HasActiveSubscription: true,
			},
		},
		{
			name: "Тариф вне каталога трактуется как платный",
			sub:  &models.Subscription{Status: models.SubscriptionStatusActive, PlanName: "Premium Plus"},
			plan: nil,
			want: models.Entitlement{
				IsUnlimited:           true,
				TemplateLimit:         models.UnlimitedTemplates,
				PlanName:              "Premium Plus",
				HasActiveSubscription: true,
			},
		},
		{
			name: "Свободный текст FREE без учёта регистра",
			sub:  &models.Subscription{Status: models.SubscriptionStatusActive, PlanName: "FREE"},
			plan: nil,
			want: models.Entitlement{
				IsUnlimited:           false,
				TemplateLimit:         models.FreeTemplateLimit,
				PlanName:              "free",
				HasActiveSubscription: true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := new(SubsRepoMock)
			history := new(HistoryRepoMock)
			subs.On("GetSubscriptionByUser", mock.Anything, "user-1").Return(tt.sub, nil)
			if !tt.skipPlans {
				subs.On("FindPlan", mock.Anything, tt.sub.PlanName).Return(tt.plan, nil)
			}
			svc := New(subs, history, discardLogger())

			got, err := svc.ResolveAccess(context.Background(), "user-1")

			assert.NoError(t, err)
			assert.Equal(t, tt.want, *got)
			subs.AssertExpectations(t)
		})
	}
}

func TestCheckViewQuota(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		viewed      int
		wantAllowed bool
	}{
		{name: "Квота не исчерпана", viewed: 9, wantAllowed: true},
		// Квота считается по записям истории, поэтому на лимите
		// блокируется и повторное открытие уже просмотренного шаблона
		{name: "Квота исчерпана", viewed: 10, wantAllowed: false},
		{name: "Квота превышена", viewed: 14, wantAllowed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := new(SubsRepoMock)
			history := new(HistoryRepoMock)
			subs.On("GetSubscriptionByUser", mock.Anything, "user-1").Return(nil, nil)
			history.On("CountViewedSince", mock.Anything, "user-1", monthStart).
				Return(tt.viewed, nil)
			svc := New(subs, history, discardLogger())

			ent, allowed, err := svc.CheckViewQuota(context.Background(), "user-1", now)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, allowed)
			assert.False(t, ent.IsUnlimited)
		})
	}
}

func TestCheckViewQuota_UnlimitedSkipsHistory(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	subs := new(SubsRepoMock)
	history := new(HistoryRepoMock)
	subs.On("GetSubscriptionByUser", mock.Anything, "user-1").
		Return(&models.Subscription{Status: models.SubscriptionStatusActive, PlanName: "pro"}, nil)
	subs.On("FindPlan", mock.Anything, "pro").Return(&models.Plan{Name: "Pro", Slug: "pro"}, nil)
	svc := New(subs, history, discardLogger())

	_, allowed, err := svc.CheckViewQuota(context.Background(), "user-1", now)

	assert.NoError(t, err)
	assert.True(t, allowed)
	history.AssertNotCalled(t, "CountViewedSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestClampListLimit(t *testing.T) {
	free := &models.Entitlement{TemplateLimit: models.FreeTemplateLimit}
	unlimited := &models.Entitlement{IsUnlimited: true, TemplateLimit: models.UnlimitedTemplates}

	assert.Equal(t, 10, ClampListLimit(free, 50))
	assert.Equal(t, 5, ClampListLimit(free, 5))
	assert.Equal(t, 50, ClampListLimit(unlimited, 50))
}
