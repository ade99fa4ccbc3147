package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

const requestColumns = `id, user_uid, user_name, user_email, status,
		      processed_by, processed_at, admin_notes, team_member_id, team_role,
		      request_reason, business_type, created_at, updated_at`

// CreateAccessRequest сохраняет новую заявку на командный доступ.
func (s *Storage) CreateAccessRequest(ctx context.Context, req models.AccessRequest) error {
	const op = "storage.CreateAccessRequest"

	query := `INSERT INTO access_requests (id, user_uid, user_name, user_email,
			      status, request_reason, business_type)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := s.DB.ExecContext(ctx, query,
		req.ID, req.UserUID, req.UserName, req.UserEmail,
		req.Status, req.RequestReason, req.BusinessType); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetAccessRequest возвращает заявку по ID.
func (s *Storage) GetAccessRequest(ctx context.Context, id string) (*models.AccessRequest, error) {
	const op = "storage.GetAccessRequest"

	query := `SELECT ` + requestColumns + ` FROM access_requests WHERE id = $1`
	req, err := scanAccessRequest(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

// FindPendingByUser возвращает PENDING-заявку пользователя, либо nil,
// если такой нет.
func (s *Storage) FindPendingByUser(ctx context.Context, userUID string) (*models.AccessRequest, error) {
	const op = "storage.FindPendingByUser"

	query := `SELECT ` + requestColumns + ` FROM access_requests
			  WHERE user_uid = $1 AND status = $2
			  LIMIT 1`
	req, err := scanAccessRequest(s.DB.QueryRowContext(ctx, query, userUID, models.RequestStatusPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

// FindLatestByUser возвращает последнюю заявку пользователя, либо nil.
func (s *Storage) FindLatestByUser(ctx context.Context, userUID string) (*models.AccessRequest, error) {
	const op = "storage.FindLatestByUser"

	query := `SELECT ` + requestColumns + ` FROM access_requests
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT 1`
	req, err := scanAccessRequest(s.DB.QueryRowContext(ctx, query, userUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

// MarkProcessing переводит заявку PENDING -> PROCESSING условным
// обновлением. Возвращает false, если заявка не находилась в PENDING:
// это закрывает гонку двойного одобрения без блокировок.
func (s *Storage) MarkProcessing(ctx context.Context, id, adminUID, notes string) (bool, error) {
	const op = "storage.MarkProcessing"

	query := `UPDATE access_requests
			  SET status = $1, processed_by = $2, processed_at = now(),
			      admin_notes = $3, updated_at = now()
			  WHERE id = $4 AND status = $5`
	commandTag, err := s.DB.ExecContext(ctx, query,
		models.RequestStatusProcessing, adminUID, notes, id, models.RequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := commandTag.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rows == 1, nil
}

// RollbackProcessing выполняет компенсирующий откат PROCESSING -> PENDING
// после сбоя провижининга: статус возвращается, отметки обработки очищаются.
func (s *Storage) RollbackProcessing(ctx context.Context, id string) error {
	const op = "storage.RollbackProcessing"

	query := `UPDATE access_requests
			  SET status = $1, processed_by = NULL, processed_at = NULL,
			      updated_at = now()
			  WHERE id = $2 AND status = $3`
	if _, err := s.DB.ExecContext(ctx, query,
		models.RequestStatusPending, id, models.RequestStatusProcessing); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkApproved переводит заявку PROCESSING -> APPROVED с деталями команды.
func (s *Storage) MarkApproved(ctx context.Context, id, teamMemberID, teamRole, notes string) error {
	const op = "storage.MarkApproved"

	query := `UPDATE access_requests
			  SET status = $1, team_member_id = $2, team_role = $3,
			      admin_notes = $4, updated_at = now()
			  WHERE id = $5 AND status = $6`
	if _, err := s.DB.ExecContext(ctx, query,
		models.RequestStatusApproved, teamMemberID, teamRole, notes,
		id, models.RequestStatusProcessing); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkRejected переводит заявку PENDING -> REJECTED условным обновлением.
// Возвращает false, если заявка не находилась в PENDING.
func (s *Storage) MarkRejected(ctx context.Context, id, adminUID, notes string) (bool, error) {
	const op = "storage.MarkRejected"

	query := `UPDATE access_requests
			  SET status = $1, processed_by = $2, processed_at = now(),
			      admin_notes = $3, updated_at = now()
			  WHERE id = $4 AND status = $5`
	commandTag, err := s.DB.ExecContext(ctx, query,
		models.RequestStatusRejected, adminUID, notes, id, models.RequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := commandTag.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rows == 1, nil
}

// ListAccessRequests возвращает заявки, опционально фильтруя по статусу,
// новые первыми.
func (s *Storage) ListAccessRequests(ctx context.Context, status string, limit, offset int) ([]*models.AccessRequest, error) {
	const op = "storage.ListAccessRequests"

	query := `SELECT ` + requestColumns + ` FROM access_requests`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $" + strconv.Itoa(len(args))
	}
	args = append(args, limit)
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AccessRequest
	for rows.Next() {
		req, err := scanAccessRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountRequestsByStatus агрегирует количество заявок по статусам.
func (s *Storage) CountRequestsByStatus(ctx context.Context) (*models.RequestStats, error) {
	const op = "storage.CountRequestsByStatus"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM access_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	stats := &models.RequestStats{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		switch status {
		case models.RequestStatusPending:
			stats.Pending = count
		case models.RequestStatusProcessing:
			stats.Processing = count
		case models.RequestStatusApproved:
			stats.Approved = count
		case models.RequestStatusRejected:
			stats.Rejected = count
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

func scanAccessRequest(row rowScanner) (*models.AccessRequest, error) {
	req := &models.AccessRequest{}
	var processedBy sql.NullString
	var processedAt sql.NullTime
	var adminNotes, teamMemberID, teamRole sql.NullString

	if err := row.Scan(&req.ID, &req.UserUID, &req.UserName, &req.UserEmail,
		&req.Status, &processedBy, &processedAt, &adminNotes,
		&teamMemberID, &teamRole, &req.RequestReason, &req.BusinessType,
		&req.CreatedAt, &req.UpdatedAt); err != nil {
		return nil, err
	}

	if processedBy.Valid {
		req.ProcessedBy = &processedBy.String
	}
	if processedAt.Valid {
		req.ProcessedAt = &processedAt.Time
	}
	req.AdminNotes = adminNotes.String
	req.TeamMemberID = teamMemberID.String
	req.TeamRole = teamRole.String
	return req, nil
}
