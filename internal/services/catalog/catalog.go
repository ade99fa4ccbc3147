// Package catalog реализует административное наполнение каталогов:
// создание шаблонов и контент-элементов, учёт использования контента.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/template-marketplace/internal/cache"
	"github.com/magabrotheeeer/template-marketplace/internal/errs"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
	"github.com/magabrotheeeer/template-marketplace/internal/services/trending"
	"github.com/magabrotheeeer/template-marketplace/internal/storage/repository"
)

// TemplateRepository определяет методы хранилища шаблонов, нужные администратору.
type TemplateRepository interface {
	// CreateTemplate сохраняет новый шаблон.
	CreateTemplate(ctx context.Context, t models.Template) (string, error)
	// UpdateTemplate обновляет шаблон, возвращает число обновленных записей.
	UpdateTemplate(ctx context.Context, t models.Template) (int64, error)
	// GetTemplate возвращает шаблон по ID.
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
}

// ContentRepository определяет методы хранилища контент-элементов.
type ContentRepository interface {
	// CreateContentItem сохраняет новый контент-элемент.
	CreateContentItem(ctx context.Context, item models.ContentItem) (string, error)
	// UpdateContentItem обновляет контент-элемент, возвращает число обновленных записей.
	UpdateContentItem(ctx context.Context, item models.ContentItem) (int64, error)
	// GetContentItem возвращает контент-элемент по ID.
	GetContentItem(ctx context.Context, id string) (*models.ContentItem, error)
	// ListContent возвращает контент-элементы с пагинацией.
	ListContent(ctx context.Context, limit, offset int) ([]*models.ContentItem, error)
	// IncrementContentCounter атомарно меняет счётчик и возвращает снимок.
	IncrementContentCounter(ctx context.Context, id, column string, delta int) (*repository.CounterSnapshot, error)
	// UpdateContentTrending сохраняет пересчитанную trending-оценку.
	UpdateContentTrending(ctx context.Context, id string, score float64, isTrending bool) error
}

// contentListTTL ограничивает устаревание кэшированных страниц
// контент-каталога: счётчики в них отстают не больше чем на минуту.
const contentListTTL = time.Minute

// Service реализует операции наполнения каталогов.
type Service struct {
	templates TemplateRepository
	content   ContentRepository
	cache     *cache.Cache
	now       func() time.Time
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(templates TemplateRepository, content ContentRepository, cacheRedis *cache.Cache, log *slog.Logger) *Service {
	return &Service{templates: templates, content: content, cache: cacheRedis, now: time.Now, log: log}
}

// CreateTemplate создает кураторский шаблон от имени администратора.
// Публикация при создании проставляет метку публикации.
func (s *Service) CreateTemplate(ctx context.Context, adminUID string, req models.DummyTemplate) (string, error) {
	const op = "services.catalog.CreateTemplate"

	t := models.Template{
		Title:            req.Title,
		Description:      req.Description,
		Instruction:      req.Instruction,
		Caption:          req.Caption,
		Tags:             req.Tags,
		ContentType:      req.ContentType,
		CanvaTemplateID:  req.CanvaTemplateID,
		CanvaTemplateURL: req.CanvaTemplateURL,
		ThumbnailURL:     req.ThumbnailURL,
		IsPublished:      req.IsPublished,
		CreatedBy:        adminUID,
	}
	if req.IsPublished {
		now := s.now()
		t.PublishedAt = &now
	}

	id, err := s.templates.CreateTemplate(ctx, t)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("template created",
		slog.String("template_id", id), slog.String("admin_uid", adminUID))
	return id, nil
}

// PublishTemplate публикует или снимает с публикации существующий шаблон.
func (s *Service) PublishTemplate(ctx context.Context, templateID string, publish bool) error {
	const op = "services.catalog.PublishTemplate"

	t, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}

	t.IsPublished = publish
	if publish && t.PublishedAt == nil {
		now := s.now()
		t.PublishedAt = &now
	}

	// Оценка пересчитывается перед каждым сохранением сущности каталога
	score := trending.ForTemplate(&repository.CounterSnapshot{
		ViewCount:     t.ViewCount,
		EditCount:     t.EditCount,
		BookmarkCount: t.BookmarkCount,
		CreatedAt:     t.CreatedAt,
	}, s.now())
	t.TrendingScore = score.Value
	t.IsTrending = score.IsTrending

	rows, err := s.templates.UpdateTemplate(ctx, *t)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}

// CreateContentItem создает контент-элемент от имени администратора.
func (s *Service) CreateContentItem(ctx context.Context, adminUID string, req models.DummyContentItem) (string, error) {
	const op = "services.catalog.CreateContentItem"

	item := models.ContentItem{
		Title:           req.Title,
		ImageURLs:       req.ImageURLs,
		VideoURLs:       req.VideoURLs,
		Description:     req.Description,
		Instruction:     req.Instruction,
		Caption:         req.Caption,
		ContentType:     req.ContentType,
		Categories:      req.Categories,
		Tags:            req.Tags,
		CanvaTemplateID: req.CanvaTemplateID,
		CreatedBy:       adminUID,
	}

	id, err := s.content.CreateContentItem(ctx, item)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	// Сбрасывается только первая страница, остальные доживают TTL
	if s.cache != nil {
		if err := s.cache.Invalidate("content:list:20:0"); err != nil {
			s.log.Warn("content list cache invalidation failed", sl.Err(err))
		}
	}

	s.log.Info("content item created",
		slog.String("content_id", id), slog.String("admin_uid", adminUID))
	return id, nil
}

// UpdateContentItem перезаписывает редактируемые поля существующего
// контент-элемента. Счётчики при этом не трогаются, но trending-оценка
// пересчитывается по их текущим значениям, как при любом сохранении.
func (s *Service) UpdateContentItem(ctx context.Context, id string, req models.DummyContentItem) error {
	const op = "services.catalog.UpdateContentItem"

	item, err := s.content.GetContentItem(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}

	item.Title = req.Title
	item.ImageURLs = req.ImageURLs
	item.VideoURLs = req.VideoURLs
	item.Description = req.Description
	item.Instruction = req.Instruction
	item.Caption = req.Caption
	item.ContentType = req.ContentType
	item.Categories = req.Categories
	item.Tags = req.Tags
	item.CanvaTemplateID = req.CanvaTemplateID

	score := trending.ForContent(&repository.CounterSnapshot{
		UsageCount:    item.UsageCount,
		ViewCount:     item.ViewCount,
		DownloadCount: item.DownloadCount,
		CreatedAt:     item.CreatedAt,
	}, s.now())
	item.TrendingScore = score.Value
	item.IsTrending = score.IsTrending

	rows, err := s.content.UpdateContentItem(ctx, *item)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}

	// Сбрасывается только первая страница, остальные доживают TTL
	if s.cache != nil {
		if err := s.cache.Invalidate("content:list:20:0"); err != nil {
			s.log.Warn("content list cache invalidation failed", sl.Err(err))
		}
	}

	s.log.Info("content item updated", slog.String("content_id", id))
	return nil
}

// ListContent возвращает страницу контент-каталога. Страницы кэшируются
// на короткий срок: каталог наполняется редко, а читается часто.
func (s *Service) ListContent(ctx context.Context, limit, offset int) ([]*models.ContentItem, error) {
	const op = "services.catalog.ListContent"

	key := fmt.Sprintf("content:list:%d:%d", limit, offset)
	if s.cache != nil {
		var cached []*models.ContentItem
		found, err := s.cache.Get(key, &cached)
		if err != nil {
			s.log.Warn("content list cache lookup failed", sl.Err(err))
		} else if found {
			return cached, nil
		}
	}

	result, err := s.content.ListContent(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(key, result, contentListTTL); err != nil {
			s.log.Warn("content list cache store failed", sl.Err(err))
		}
	}
	return result, nil
}

// GetContentItem возвращает карточку контент-элемента, учитывая просмотр.
func (s *Service) GetContentItem(ctx context.Context, id string) (*models.ContentItem, error) {
	const op = "services.catalog.GetContentItem"

	item, err := s.content.GetContentItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	s.bumpContentCounter(ctx, id, "view_count")
	return item, nil
}

// RegisterContentUsage фиксирует использование контент-элемента.
func (s *Service) RegisterContentUsage(ctx context.Context, id string) {
	s.bumpContentCounter(ctx, id, "usage_count")
}

// RegisterContentDownload фиксирует скачивание контент-элемента.
func (s *Service) RegisterContentDownload(ctx context.Context, id string) {
	s.bumpContentCounter(ctx, id, "download_count")
}

// bumpContentCounter инкрементирует счётчик и пересчитывает trending-оценку.
// Телеметрия не влияет на исход основной операции: сбои только логируются.
func (s *Service) bumpContentCounter(ctx context.Context, id, column string) {
	snap, err := s.content.IncrementContentCounter(ctx, id, column, 1)
	if err != nil {
		s.log.Warn("failed to increment content counter",
			slog.String("content_id", id),
			slog.String("column", column), sl.Err(err))
		return
	}
	score := trending.ForContent(snap, s.now())
	if err := s.content.UpdateContentTrending(ctx, id, score.Value, score.IsTrending); err != nil {
		s.log.Warn("failed to update content trending score",
			slog.String("content_id", id), sl.Err(err))
	}
}
