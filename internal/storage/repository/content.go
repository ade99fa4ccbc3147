package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

const contentColumns = `id, title, image_urls, video_urls, description, instruction,
		      caption, content_type, categories, tags, canva_template_id,
		      usage_count, view_count, download_count, trending_score, is_trending,
		      created_by, created_at, updated_at`

// CreateContentItem сохраняет новый контент-элемент и возвращает его ID.
func (s *Storage) CreateContentItem(ctx context.Context, item models.ContentItem) (string, error) {
	const op = "storage.CreateContentItem"

	images, err := marshalStrings(item.ImageURLs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	videos, err := marshalStrings(item.VideoURLs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	categories, err := marshalStrings(item.Categories)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	tags, err := marshalStrings(item.Tags)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var newID string
	query := `INSERT INTO content_items (title, image_urls, video_urls, description,
			      instruction, caption, content_type, categories, tags,
			      canva_template_id, trending_score, is_trending, created_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		item.Title, images, videos, item.Description, item.Instruction, item.Caption,
		item.ContentType, categories, tags, item.CanvaTemplateID,
		item.TrendingScore, item.IsTrending, item.CreatedBy).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateContentItem обновляет редактируемые поля контент-элемента вместе
// с пересчитанной trending-оценкой, возвращает число обновленных записей.
// Счётчики меняются только своими операциями.
func (s *Storage) UpdateContentItem(ctx context.Context, item models.ContentItem) (int64, error) {
	const op = "storage.UpdateContentItem"

	images, err := marshalStrings(item.ImageURLs)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	videos, err := marshalStrings(item.VideoURLs)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	categories, err := marshalStrings(item.Categories)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	tags, err := marshalStrings(item.Tags)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE content_items
			  SET title = $1, image_urls = $2, video_urls = $3, description = $4,
			      instruction = $5, caption = $6, content_type = $7, categories = $8,
			      tags = $9, canva_template_id = $10, trending_score = $11,
			      is_trending = $12, updated_at = now()
			  WHERE id = $13`
	result, err := s.DB.ExecContext(ctx, query,
		item.Title, images, videos, item.Description, item.Instruction, item.Caption,
		item.ContentType, categories, tags, item.CanvaTemplateID,
		item.TrendingScore, item.IsTrending, item.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// GetContentItem возвращает контент-элемент по ID.
func (s *Storage) GetContentItem(ctx context.Context, id string) (*models.ContentItem, error) {
	const op = "storage.GetContentItem"

	query := `SELECT ` + contentColumns + ` FROM content_items WHERE id = $1`
	item, err := scanContentItem(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// ListContent возвращает контент-элементы с пагинацией, сортировка по
// trending-оценке.
func (s *Storage) ListContent(ctx context.Context, limit, offset int) ([]*models.ContentItem, error) {
	const op = "storage.ListContent"

	query := `SELECT ` + contentColumns + ` FROM content_items
			  ORDER BY trending_score DESC, created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// IncrementContentCounter атомарно увеличивает счётчик контент-элемента
// и возвращает снимок счётчиков для пересчёта trending-оценки.
func (s *Storage) IncrementContentCounter(ctx context.Context, id, column string, delta int) (*CounterSnapshot, error) {
	const op = "storage.IncrementContentCounter"

	switch column {
	case "usage_count", "view_count", "download_count":
	default:
		return nil, fmt.Errorf("%s: unsupported counter %q", op, column)
	}

	query := `UPDATE content_items
			  SET ` + column + ` = GREATEST(0, ` + column + ` + $1), updated_at = now()
			  WHERE id = $2
			  RETURNING usage_count, view_count, download_count, created_at`
	snap := &CounterSnapshot{}
	if err := s.DB.QueryRowContext(ctx, query, delta, id).Scan(
		&snap.UsageCount, &snap.ViewCount, &snap.DownloadCount, &snap.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return snap, nil
}

// UpdateContentTrending сохраняет пересчитанную trending-оценку элемента.
func (s *Storage) UpdateContentTrending(ctx context.Context, id string, score float64, isTrending bool) error {
	const op = "storage.UpdateContentTrending"

	query := `UPDATE content_items SET trending_score = $1, is_trending = $2 WHERE id = $3`
	if _, err := s.DB.ExecContext(ctx, query, score, isTrending, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func scanContentItem(row rowScanner) (*models.ContentItem, error) {
	item := &models.ContentItem{}
	var images, videos, categories, tags []byte

	if err := row.Scan(&item.ID, &item.Title, &images, &videos, &item.Description,
		&item.Instruction, &item.Caption, &item.ContentType, &categories, &tags,
		&item.CanvaTemplateID, &item.UsageCount, &item.ViewCount, &item.DownloadCount,
		&item.TrendingScore, &item.IsTrending,
		&item.CreatedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if item.ImageURLs, err = unmarshalStrings(images); err != nil {
		return nil, err
	}
	if item.VideoURLs, err = unmarshalStrings(videos); err != nil {
		return nil, err
	}
	if item.Categories, err = unmarshalStrings(categories); err != nil {
		return nil, err
	}
	if item.Tags, err = unmarshalStrings(tags); err != nil {
		return nil, err
	}
	return item, nil
}
