package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

const templateColumns = `id, title, description, instruction, caption, tags,
		      content_type, canva_template_id, canva_template_url, canva_edit_url,
		      thumbnail_url, preview_images, is_published, published_at,
		      view_count, edit_count, bookmark_count, trending_score, is_trending,
		      created_by, created_at, updated_at`

// CounterSnapshot значения счётчиков и возраст записи после инкремента.
// Используется для пересчёта trending-оценки чистой функцией.
type CounterSnapshot struct {
	ViewCount     int
	EditCount     int
	BookmarkCount int
	UsageCount    int
	DownloadCount int
	CreatedAt     time.Time
}

// CreateTemplate сохраняет новый шаблон и возвращает его ID.
func (s *Storage) CreateTemplate(ctx context.Context, t models.Template) (string, error) {
	const op = "storage.CreateTemplate"

	tags, err := marshalStrings(t.Tags)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	previews, err := marshalStrings(t.PreviewImages)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var newID string
	query := `INSERT INTO templates (title, description, instruction, caption, tags,
			      content_type, canva_template_id, canva_template_url, canva_edit_url,
			      thumbnail_url, preview_images, is_published, published_at,
			      trending_score, is_trending, created_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		t.Title, t.Description, t.Instruction, t.Caption, tags,
		t.ContentType, t.CanvaTemplateID, t.CanvaTemplateURL, t.CanvaEditURL,
		t.ThumbnailURL, previews, t.IsPublished, t.PublishedAt,
		t.TrendingScore, t.IsTrending, t.CreatedBy).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateTemplate обновляет данные шаблона, включая пересчитанную
// trending-оценку. Возвращает количество обновленных записей.
func (s *Storage) UpdateTemplate(ctx context.Context, t models.Template) (int64, error) {
	const op = "storage.UpdateTemplate"

	tags, err := marshalStrings(t.Tags)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	previews, err := marshalStrings(t.PreviewImages)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE templates
			  SET title = $1, description = $2, instruction = $3, caption = $4,
			      tags = $5, content_type = $6, canva_template_id = $7,
			      canva_template_url = $8, canva_edit_url = $9, thumbnail_url = $10,
			      preview_images = $11, is_published = $12, published_at = $13,
			      trending_score = $14, is_trending = $15, updated_at = now()
			  WHERE id = $16`
	commandTag, err := s.DB.ExecContext(ctx, query,
		t.Title, t.Description, t.Instruction, t.Caption, tags,
		t.ContentType, t.CanvaTemplateID, t.CanvaTemplateURL, t.CanvaEditURL,
		t.ThumbnailURL, previews, t.IsPublished, t.PublishedAt,
		t.TrendingScore, t.IsTrending, t.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := commandTag.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// GetTemplate возвращает шаблон по ID.
func (s *Storage) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	const op = "storage.GetTemplate"

	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`
	t, err := scanTemplate(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ListPublished возвращает опубликованные шаблоны по фильтру с сортировкой
// и пагинацией.
func (s *Storage) ListPublished(ctx context.Context, filter models.TemplateListFilter) ([]*models.Template, error) {
	const op = "storage.ListPublished"

	where := []string{"is_published = TRUE"}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := strconv.Itoa(len(args))
		where = append(where, "(title ILIKE $"+p+" OR description ILIKE $"+p+")")
	}
	if filter.ContentType != "" {
		args = append(args, filter.ContentType)
		where = append(where, "content_type = $"+strconv.Itoa(len(args)))
	}
	if len(filter.Tags) > 0 {
		args = append(args, strings.Join(filter.Tags, ","))
		// хотя бы один из запрошенных тегов
		where = append(where, "EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) tag"+
			" WHERE tag = ANY(string_to_array($"+strconv.Itoa(len(args))+", ',')))")
	}

	var order string
	switch filter.SortBy {
	case "popular":
		order = "edit_count DESC, bookmark_count DESC"
	case "trending":
		order = "trending_score DESC"
	default:
		order = "published_at DESC NULLS LAST"
	}

	args = append(args, filter.Limit)
	limitParam := strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetParam := strconv.Itoa(len(args))

	query := `SELECT ` + templateColumns + ` FROM templates
			  WHERE ` + strings.Join(where, " AND ") + `
			  ORDER BY ` + order + `
			  LIMIT $` + limitParam + ` OFFSET $` + offsetParam

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountPublished возвращает общее количество опубликованных шаблонов.
func (s *Storage) CountPublished(ctx context.Context) (int, error) {
	const op = "storage.CountPublished"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM templates WHERE is_published = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// IncrementTemplateCounter атомарно увеличивает счётчик шаблона на delta
// и возвращает снимок счётчиков для пересчёта trending-оценки.
// column ограничен фиксированным набором, значение извне не подставляется.
func (s *Storage) IncrementTemplateCounter(ctx context.Context, id, column string, delta int) (*CounterSnapshot, error) {
	const op = "storage.IncrementTemplateCounter"

	switch column {
	case "view_count", "edit_count", "bookmark_count":
	default:
		return nil, fmt.Errorf("%s: unsupported counter %q", op, column)
	}

	query := `UPDATE templates
			  SET ` + column + ` = GREATEST(0, ` + column + ` + $1), updated_at = now()
			  WHERE id = $2
			  RETURNING view_count, edit_count, bookmark_count, created_at`
	snap := &CounterSnapshot{}
	if err := s.DB.QueryRowContext(ctx, query, delta, id).Scan(
		&snap.ViewCount, &snap.EditCount, &snap.BookmarkCount, &snap.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return snap, nil
}

// UpdateTemplateTrending сохраняет пересчитанную trending-оценку шаблона.
func (s *Storage) UpdateTemplateTrending(ctx context.Context, id string, score float64, isTrending bool) error {
	const op = "storage.UpdateTemplateTrending"

	query := `UPDATE templates SET trending_score = $1, is_trending = $2 WHERE id = $3`
	if _, err := s.DB.ExecContext(ctx, query, score, isTrending, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func scanTemplate(row rowScanner) (*models.Template, error) {
	t := &models.Template{}
	var tags, previews []byte
	var publishedAt sql.NullTime

	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Instruction, &t.Caption,
		&tags, &t.ContentType, &t.CanvaTemplateID, &t.CanvaTemplateURL, &t.CanvaEditURL,
		&t.ThumbnailURL, &previews, &t.IsPublished, &publishedAt,
		&t.ViewCount, &t.EditCount, &t.BookmarkCount, &t.TrendingScore, &t.IsTrending,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	if publishedAt.Valid {
		t.PublishedAt = &publishedAt.Time
	}
	var err error
	if t.Tags, err = unmarshalStrings(tags); err != nil {
		return nil, err
	}
	if t.PreviewImages, err = unmarshalStrings(previews); err != nil {
		return nil, err
	}
	return t, nil
}
