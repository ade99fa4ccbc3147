// Package entitlement вычисляет права доступа пользователя к каталогу
// шаблонов по состоянию его подписки и каталогу тарифов.
package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/template-marketplace/internal/lib/month"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// SubscriptionRepository определяет методы чтения зеркала подписок и тарифов.
type SubscriptionRepository interface {
	// GetSubscriptionByUser возвращает подписку пользователя, либо nil.
	GetSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error)
	// FindPlan ищет тариф по slug или имени, либо возвращает nil.
	FindPlan(ctx context.Context, identifier string) (*models.Plan, error)
}

// HistoryRepository определяет методы чтения истории просмотров.
type HistoryRepository interface {
	// CountViewedSince считает записи просмотров пользователя с момента since.
	CountViewedSince(ctx context.Context, userUID string, since time.Time) (int, error)
}

// Service вычисляет права доступа. Результат не кэшируется: смена подписки
// действует на следующий же запрос.
type Service struct {
	subs    SubscriptionRepository
	history HistoryRepository
	log     *slog.Logger
}

// New создает новый экземпляр Service.
func New(subs SubscriptionRepository, history HistoryRepository, log *slog.Logger) *Service {
	return &Service{subs: subs, history: history, log: log}
}

// ResolveAccess вычисляет права доступа пользователя. Без активной подписки
// действует бесплатный тариф с месячным лимитом. Тариф активной подписки
// сопоставляется с каталогом цепочкой правил: точный slug, точное имя, затем
// свободный текст без учёта регистра — идентификатор тарифа в подписке
// записывается как есть и может опережать каталог.
func (s *Service) ResolveAccess(ctx context.Context, userUID string) (*models.Entitlement, error) {
	const op = "services.entitlement.ResolveAccess"

	free := &models.Entitlement{
		IsUnlimited:   false,
		TemplateLimit: models.FreeTemplateLimit,
		PlanName:      "free",
	}

	sub, err := s.subs.GetSubscriptionByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub == nil || sub.Status != models.SubscriptionStatusActive {
		return free, nil
	}

	plan, err := s.subs.FindPlan(ctx, sub.PlanName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if plan != nil {
		if plan.Slug != "free" {
			return &models.Entitlement{
				IsUnlimited:           true,
				TemplateLimit:         models.UnlimitedTemplates,
				PlanName:              plan.Name,
				HasActiveSubscription: true,
			}, nil
		}
		return &models.Entitlement{
			IsUnlimited:           false,
			TemplateLimit:         models.FreeTemplateLimit,
			PlanName:              plan.Name,
			HasActiveSubscription: true,
		}, nil
	}

	// Тариф не найден в каталоге: любой непустой идентификатор, кроме
	// "free", трактуется как платный.
	if sub.PlanName != "" && !strings.EqualFold(sub.PlanName, "free") {
		s.log.Warn("plan not found in catalog, treating as unlimited",
			slog.String("plan_name", sub.PlanName))
		return &models.Entitlement{
			IsUnlimited:           true,
			TemplateLimit:         models.UnlimitedTemplates,
			PlanName:              sub.PlanName,
			HasActiveSubscription: true,
		}, nil
	}

	result := *free
	result.HasActiveSubscription = true
	return &result, nil
}

// CheckViewQuota проверяет месячную квоту просмотров перед показом
// карточки шаблона. Квота считается по записям истории: каждое открытие
// карточки расходует её, и по достижении лимита просмотры блокируются
// до конца месяца.
func (s *Service) CheckViewQuota(ctx context.Context, userUID string, now time.Time) (*models.Entitlement, bool, error) {
	const op = "services.entitlement.CheckViewQuota"

	ent, err := s.ResolveAccess(ctx, userUID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if ent.IsUnlimited {
		return ent, true, nil
	}

	viewed, err := s.history.CountViewedSince(ctx, userUID, month.StartOfCurrent(now))
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return ent, viewed < ent.TemplateLimit, nil
}

// ClampListLimit усекает запрошенный размер страницы списка до лимита
// тарифа. Просмотр списка никогда не блокируется, только укорачивается.
func ClampListLimit(ent *models.Entitlement, requested int) int {
	if ent.IsUnlimited {
		return requested
	}
	if requested > ent.TemplateLimit {
		return ent.TemplateLimit
	}
	return requested
}
