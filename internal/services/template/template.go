// Package template реализует бизнес-логику каталога шаблонов: выборку
// с учётом прав доступа, просмотр с месячной квотой, закладки и историю.
package template

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/template-marketplace/internal/errs"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
	"github.com/magabrotheeeer/template-marketplace/internal/services/entitlement"
	"github.com/magabrotheeeer/template-marketplace/internal/services/trending"
	"github.com/magabrotheeeer/template-marketplace/internal/storage/repository"
)

// TemplateRepository определяет методы хранилища шаблонов.
type TemplateRepository interface {
	// GetTemplate возвращает шаблон по ID.
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	// ListPublished возвращает опубликованные шаблоны по фильтру.
	ListPublished(ctx context.Context, filter models.TemplateListFilter) ([]*models.Template, error)
	// CountPublished возвращает количество опубликованных шаблонов.
	CountPublished(ctx context.Context) (int, error)
	// IncrementTemplateCounter атомарно меняет счётчик и возвращает снимок.
	IncrementTemplateCounter(ctx context.Context, id, column string, delta int) (*repository.CounterSnapshot, error)
	// UpdateTemplateTrending сохраняет пересчитанную trending-оценку.
	UpdateTemplateTrending(ctx context.Context, id string, score float64, isTrending bool) error
}

// HistoryRepository определяет методы хранилища истории и закладок.
type HistoryRepository interface {
	// AddHistory добавляет запись истории.
	AddHistory(ctx context.Context, entry models.HistoryEntry) error
	// ListHistory возвращает историю действий пользователя.
	ListHistory(ctx context.Context, userUID string, limit, offset int) ([]*models.HistoryEntry, error)
	// AddBookmark добавляет закладку, false — уже существовала.
	AddBookmark(ctx context.Context, userUID, templateID string) (bool, error)
	// RemoveBookmark удаляет закладку, false — не было.
	RemoveBookmark(ctx context.Context, userUID, templateID string) (bool, error)
	// ListBookmarkedTemplates возвращает шаблоны из закладок.
	ListBookmarkedTemplates(ctx context.Context, userUID string, limit, offset int) ([]*models.Template, error)
	// CountViewedSince считает записи просмотров пользователя.
	CountViewedSince(ctx context.Context, userUID string, since time.Time) (int, error)
}

// Entitlements вычисляет права доступа пользователя.
type Entitlements interface {
	// ResolveAccess возвращает права доступа пользователя.
	ResolveAccess(ctx context.Context, userUID string) (*models.Entitlement, error)
	// CheckViewQuota проверяет месячную квоту перед показом карточки.
	CheckViewQuota(ctx context.Context, userUID string, now time.Time) (*models.Entitlement, bool, error)
}

// ListResult страница каталога вместе с правами доступа пользователя.
type ListResult struct {
	Templates   []*models.Template
	Total       int
	Entitlement *models.Entitlement
}

// AccessStatus сводка квоты пользователя для клиента.
type AccessStatus struct {
	Entitlement *models.Entitlement `json:"entitlement"`
	ViewedCount int                 `json:"viewed_count"`
	Remaining   int                 `json:"remaining"` // -1 для безлимита
}

// Service реализует операции каталога шаблонов.
type Service struct {
	templates TemplateRepository
	history   HistoryRepository
	ents      Entitlements
	now       func() time.Time
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(templates TemplateRepository, history HistoryRepository, ents Entitlements, log *slog.Logger) *Service {
	return &Service{
		templates: templates,
		history:   history,
		ents:      ents,
		now:       time.Now,
		log:       log,
	}
}

// List возвращает страницу опубликованных шаблонов. Размер страницы
// усекается до лимита тарифа, сам просмотр списка не блокируется.
func (s *Service) List(ctx context.Context, userUID string, filter models.TemplateListFilter) (*ListResult, error) {
	const op = "services.template.List"

	ent, err := s.ents.ResolveAccess(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	filter.Limit = entitlement.ClampListLimit(ent, filter.Limit)

	templates, err := s.templates.ListPublished(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.templates.CountPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &ListResult{Templates: templates, Total: total, Entitlement: ent}, nil
}

// Read возвращает карточку шаблона, списывая месячную квоту просмотров.
// Шаблон сначала разыскивается: отсутствующий или неопубликованный
// отвечает NotFound и при исчерпанной квоте.
func (s *Service) Read(ctx context.Context, userUID, templateID string) (*models.Template, error) {
	const op = "services.template.Read"

	t, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if !t.IsPublished {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}

	_, allowed, err := s.ents.CheckViewQuota(ctx, userUID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !allowed {
		return nil, fmt.Errorf("%s: %w: monthly view limit reached", op, errs.ErrPermissionDenied)
	}

	if err := s.history.AddHistory(ctx, models.HistoryEntry{
		UserUID:    userUID,
		TemplateID: templateID,
		Action:     models.ActionViewed,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.bumpCounter(ctx, templateID, "view_count")

	return t, nil
}

// ShareURL возвращает ссылку на редактирование шаблона в Canva и фиксирует
// действие редактирования. Вызывается после прохождения шлюза проверки
// токена на уровне маршрутизации.
func (s *Service) ShareURL(ctx context.Context, userUID, templateID string) (string, error) {
	const op = "services.template.ShareURL"

	t, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if !t.IsPublished {
		return "", fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}

	if err := s.history.AddHistory(ctx, models.HistoryEntry{
		UserUID:          userUID,
		TemplateID:       templateID,
		Action:           models.ActionEdited,
		CanvaDesignID:    t.CanvaTemplateID,
		CanvaDesignTitle: t.Title,
	}); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.bumpCounter(ctx, templateID, "edit_count")

	if t.CanvaEditURL != "" {
		return t.CanvaEditURL, nil
	}
	return t.CanvaTemplateURL, nil
}

// Bookmark добавляет шаблон в закладки. Счётчик закладок растёт только
// при первом добавлении.
func (s *Service) Bookmark(ctx context.Context, userUID, templateID string) error {
	const op = "services.template.Bookmark"

	if _, err := s.templates.GetTemplate(ctx, templateID); err != nil {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}

	added, err := s.history.AddBookmark(ctx, userUID, templateID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !added {
		return nil
	}

	if err := s.history.AddHistory(ctx, models.HistoryEntry{
		UserUID:    userUID,
		TemplateID: templateID,
		Action:     models.ActionBookmarked,
	}); err != nil {
		s.log.Warn("failed to record bookmark history",
			slog.String("template_id", templateID), sl.Err(err))
	}
	s.bumpCounter(ctx, templateID, "bookmark_count")
	return nil
}

// Unbookmark удаляет шаблон из закладок, уменьшая счётчик.
func (s *Service) Unbookmark(ctx context.Context, userUID, templateID string) error {
	const op = "services.template.Unbookmark"

	removed, err := s.history.RemoveBookmark(ctx, userUID, templateID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !removed {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	s.bumpCounterDelta(ctx, templateID, "bookmark_count", -1)
	return nil
}

// Bookmarks возвращает шаблоны из закладок пользователя.
func (s *Service) Bookmarks(ctx context.Context, userUID string, limit, offset int) ([]*models.Template, error) {
	const op = "services.template.Bookmarks"

	result, err := s.history.ListBookmarkedTemplates(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// History возвращает историю действий пользователя.
func (s *Service) History(ctx context.Context, userUID string, limit, offset int) ([]*models.HistoryEntry, error) {
	const op = "services.template.History"

	result, err := s.history.ListHistory(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Status возвращает сводку квоты пользователя: права доступа, просмотрено
// за месяц и остаток.
func (s *Service) Status(ctx context.Context, userUID string) (*AccessStatus, error) {
	const op = "services.template.Status"

	ent, err := s.ents.ResolveAccess(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	viewed, err := s.history.CountViewedSince(ctx, userUID,
		time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	remaining := models.UnlimitedTemplates
	if !ent.IsUnlimited {
		remaining = ent.TemplateLimit - viewed
		if remaining < 0 {
			remaining = 0
		}
	}
	return &AccessStatus{Entitlement: ent, ViewedCount: viewed, Remaining: remaining}, nil
}

// bumpCounter инкрементирует счётчик и пересчитывает trending-оценку.
// Телеметрия не влияет на исход основной операции: сбои только логируются.
func (s *Service) bumpCounter(ctx context.Context, templateID, column string) {
	s.bumpCounterDelta(ctx, templateID, column, 1)
}

func (s *Service) bumpCounterDelta(ctx context.Context, templateID, column string, delta int) {
	snap, err := s.templates.IncrementTemplateCounter(ctx, templateID, column, delta)
	if err != nil {
		s.log.Warn("failed to increment counter",
			slog.String("template_id", templateID),
			slog.String("column", column), sl.Err(err))
		return
	}
	score := trending.ForTemplate(snap, s.now())
	if err := s.templates.UpdateTemplateTrending(ctx, templateID, score.Value, score.IsTrending); err != nil {
		s.log.Warn("failed to update trending score",
			slog.String("template_id", templateID), sl.Err(err))
	}
}
