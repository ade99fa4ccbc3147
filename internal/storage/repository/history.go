package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// AddHistory добавляет запись в историю действий пользователя.
func (s *Storage) AddHistory(ctx context.Context, entry models.HistoryEntry) error {
	const op = "storage.AddHistory"

	query := `INSERT INTO usage_history (user_uid, template_id, action,
			      canva_design_id, canva_design_title)
			  VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.DB.ExecContext(ctx, query,
		entry.UserUID, entry.TemplateID, entry.Action,
		entry.CanvaDesignID, entry.CanvaDesignTitle); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountViewedSince считает записи просмотров пользователя начиная с since.
// Каждое открытие карточки расходует квоту, включая повторные просмотры
// одного и того же шаблона.
func (s *Storage) CountViewedSince(ctx context.Context, userUID string, since time.Time) (int, error) {
	const op = "storage.CountViewedSince"

	var count int
	query := `SELECT COUNT(*) FROM usage_history
			  WHERE user_uid = $1 AND action = $2 AND created_at >= $3`
	if err := s.DB.QueryRowContext(ctx, query,
		userUID, models.ActionViewed, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListHistory возвращает историю действий пользователя, новые первыми.
func (s *Storage) ListHistory(ctx context.Context, userUID string, limit, offset int) ([]*models.HistoryEntry, error) {
	const op = "storage.ListHistory"

	query := `SELECT id, user_uid, template_id, action,
			      canva_design_id, canva_design_title, created_at
			  FROM usage_history
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.HistoryEntry
	for rows.Next() {
		entry := &models.HistoryEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserUID, &entry.TemplateID,
			&entry.Action, &entry.CanvaDesignID, &entry.CanvaDesignTitle,
			&entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AddBookmark добавляет закладку. Возвращает false, если закладка уже была:
// повторное добавление не увеличивает счётчик шаблона.
func (s *Storage) AddBookmark(ctx context.Context, userUID, templateID string) (bool, error) {
	const op = "storage.AddBookmark"

	query := `INSERT INTO bookmarks (user_uid, template_id)
			  VALUES ($1, $2)
			  ON CONFLICT (user_uid, template_id) DO NOTHING`
	commandTag, err := s.DB.ExecContext(ctx, query, userUID, templateID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := commandTag.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rows == 1, nil
}

// RemoveBookmark удаляет закладку. Возвращает false, если закладки не было.
func (s *Storage) RemoveBookmark(ctx context.Context, userUID, templateID string) (bool, error) {
	const op = "storage.RemoveBookmark"

	query := `DELETE FROM bookmarks WHERE user_uid = $1 AND template_id = $2`
	commandTag, err := s.DB.ExecContext(ctx, query, userUID, templateID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := commandTag.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rows == 1, nil
}

// ListBookmarkedTemplates возвращает шаблоны из закладок пользователя,
// последние добавленные первыми.
func (s *Storage) ListBookmarkedTemplates(ctx context.Context, userUID string, limit, offset int) ([]*models.Template, error) {
	const op = "storage.ListBookmarkedTemplates"

	query := `SELECT t.id, t.title, t.description, t.instruction, t.caption, t.tags,
			      t.content_type, t.canva_template_id, t.canva_template_url, t.canva_edit_url,
			      t.thumbnail_url, t.preview_images, t.is_published, t.published_at,
			      t.view_count, t.edit_count, t.bookmark_count, t.trending_score, t.is_trending,
			      t.created_by, t.created_at, t.updated_at
			  FROM templates t
			  JOIN bookmarks b ON b.template_id = t.id
			  WHERE b.user_uid = $1
			  ORDER BY b.created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
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
