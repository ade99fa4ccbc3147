// Package access реализует машину состояний заявок на командный доступ:
// подача, одобрение с провижинингом во внешней системе и отклонение.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/template-marketplace/internal/canva"
	"github.com/magabrotheeeer/template-marketplace/internal/errs"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// RequestRepository определяет методы хранилища заявок.
type RequestRepository interface {
	// CreateAccessRequest сохраняет новую заявку.
	CreateAccessRequest(ctx context.Context, req models.AccessRequest) error
	// GetAccessRequest возвращает заявку по ID.
	GetAccessRequest(ctx context.Context, id string) (*models.AccessRequest, error)
	// FindPendingByUser возвращает PENDING-заявку пользователя, либо nil.
	FindPendingByUser(ctx context.Context, userUID string) (*models.AccessRequest, error)
	// FindLatestByUser возвращает последнюю заявку пользователя, либо nil.
	FindLatestByUser(ctx context.Context, userUID string) (*models.AccessRequest, error)
	// MarkProcessing условный переход PENDING -> PROCESSING, false при несовпадении статуса.
	MarkProcessing(ctx context.Context, id, adminUID, notes string) (bool, error)
	// RollbackProcessing компенсирующий откат PROCESSING -> PENDING.
	RollbackProcessing(ctx context.Context, id string) error
	// MarkApproved переход PROCESSING -> APPROVED с деталями команды.
	MarkApproved(ctx context.Context, id, teamMemberID, teamRole, notes string) error
	// MarkRejected условный переход PENDING -> REJECTED, false при несовпадении статуса.
	MarkRejected(ctx context.Context, id, adminUID, notes string) (bool, error)
	// ListAccessRequests возвращает заявки с фильтром по статусу.
	ListAccessRequests(ctx context.Context, status string, limit, offset int) ([]*models.AccessRequest, error)
	// CountRequestsByStatus агрегирует количество заявок по статусам.
	CountRequestsByStatus(ctx context.Context) (*models.RequestStats, error)
}

// UserRepository определяет методы хранилища пользователей.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GrantTeamAccess выставляет командный доступ и роль.
	GrantTeamAccess(ctx context.Context, userUID, teamRole string) error
}

// Provisioner определяет операции провижининга во внешней системе.
type Provisioner interface {
	// IsTeamMember проверяет членство в команде (best-effort).
	IsTeamMember(ctx context.Context, adminAccessToken, userEmail string) (bool, error)
	// ApproveTeamAccess добавляет пользователя в команду.
	ApproveTeamAccess(ctx context.Context, adminAccessToken, userEmail, role string) (*canva.Provisioned, error)
}

// TokenGate выдаёт действительный access-токен пользователя,
// прогоняя каскад проверки-обновления.
type TokenGate interface {
	ValidateAndRefresh(ctx context.Context, userUID string) (string, error)
}

// Notifier отправляет уведомления о решении по заявке. Сбой доставки
// не влияет на исход операции.
type Notifier interface {
	NotifyApproved(ctx context.Context, email, name string)
	NotifyRejected(ctx context.Context, email, name, notes string)
}

// Service реализует бизнес-логику заявок на командный доступ.
type Service struct {
	requests RequestRepository
	users    UserRepository
	prov     Provisioner
	gate     TokenGate
	notify   Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(requests RequestRepository, users UserRepository, prov Provisioner,
	gate TokenGate, notify Notifier, log *slog.Logger) *Service {
	return &Service{
		requests: requests,
		users:    users,
		prov:     prov,
		gate:     gate,
		notify:   notify,
		log:      log,
	}
}

// Submit создает заявку на командный доступ. У пользователя может быть
// не более одной PENDING-заявки; уже выданный доступ повторно не запрашивается.
// Имя, email и тип бизнеса снимаются на момент подачи; переданный в заявке
// тип бизнеса имеет приоритет над профильным.
func (s *Service) Submit(ctx context.Context, userUID, reason, businessType string) (*models.AccessRequest, error) {
	const op = "services.access.Submit"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.TeamAccess {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrAlreadyGranted)
	}

	pending, err := s.requests.FindPendingByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pending != nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrDuplicatePending)
	}

	if businessType == "" {
		businessType = user.BusinessType
	}
	req := models.AccessRequest{
		ID:            uuid.NewString(),
		UserUID:       userUID,
		UserName:      user.Name,
		UserEmail:     user.Email,
		Status:        models.RequestStatusPending,
		RequestReason: reason,
		BusinessType:  businessType,
	}
	if err := s.requests.CreateAccessRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("access request submitted",
		slog.String("request_id", req.ID),
		slog.String("user_uid", userUID))
	return &req, nil
}

// Approve одобряет заявку. Переход PENDING -> PROCESSING выполняется
// условным обновлением до провижининга, закрывая гонку двойного одобрения.
// Командный доступ выставляется пользователю только после подтвержденного
// успеха провижининга; любой сбой откатывает заявку обратно в PENDING.
func (s *Service) Approve(ctx context.Context, requestID, approverUID, role, notes string) (*models.AccessRequest, error) {
	const op = "services.access.Approve"

	req, err := s.requests.GetAccessRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if req.Status != models.RequestStatusPending {
		return nil, fmt.Errorf("%s: %w: request is %s", op, errs.ErrInvalidState, req.Status)
	}

	ok, err := s.requests.MarkProcessing(ctx, requestID, approverUID, notes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		// Заявку успел забрать параллельный запрос
		return nil, fmt.Errorf("%s: %w: request is no longer pending", op, errs.ErrInvalidState)
	}

	provisioned, err := s.provision(ctx, req, approverUID, role)
	if err != nil {
		if rbErr := s.requests.RollbackProcessing(ctx, requestID); rbErr != nil {
			s.log.Error("rollback to pending failed",
				slog.String("request_id", requestID), sl.Err(rbErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.requests.MarkApproved(ctx, requestID, provisioned.ID, provisioned.Role, notes); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.GrantTeamAccess(ctx, req.UserUID, provisioned.Role); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("access request approved",
		slog.String("request_id", requestID),
		slog.String("approver_uid", approverUID),
		slog.String("team_member_id", provisioned.ID))
	s.notify.NotifyApproved(ctx, req.UserEmail, req.UserName)

	return s.requests.GetAccessRequest(ctx, requestID)
}

// provision выполняет внешнюю часть одобрения: проверяет подключение
// одобряющего, членство цели и добавляет её в команду.
func (s *Service) provision(ctx context.Context, req *models.AccessRequest, approverUID, role string) (*canva.Provisioned, error) {
	adminToken, err := s.gate.ValidateAndRefresh(ctx, approverUID)
	if err != nil {
		if errors.Is(err, errs.ErrReauthRequired) {
			return nil, errs.ErrApproverNotConnected
		}
		return nil, err
	}

	// Проверка членства best-effort: внешняя система может её не
	// поддерживать, тогда ответ трактуется как "не найден".
	member, err := s.prov.IsTeamMember(ctx, adminToken, req.UserEmail)
	if err != nil {
		s.log.Warn("team membership check failed, assuming not a member",
			slog.String("request_id", req.ID), sl.Err(err))
	} else if member {
		return nil, errs.ErrAlreadyMember
	}

	provisioned, err := s.prov.ApproveTeamAccess(ctx, adminToken, req.UserEmail, role)
	if err != nil {
		return nil, err
	}
	return provisioned, nil
}

// Reject отклоняет заявку. Переход допустим только из PENDING и
// выполняется условным обновлением; внешние вызовы не нужны.
func (s *Service) Reject(ctx context.Context, requestID, approverUID, notes string) (*models.AccessRequest, error) {
	const op = "services.access.Reject"

	ok, err := s.requests.MarkRejected(ctx, requestID, approverUID, notes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		req, getErr := s.requests.GetAccessRequest(ctx, requestID)
		if getErr != nil {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w: request is %s", op, errs.ErrInvalidState, req.Status)
	}

	req, err := s.requests.GetAccessRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("access request rejected",
		slog.String("request_id", requestID),
		slog.String("approver_uid", approverUID))
	s.notify.NotifyRejected(ctx, req.UserEmail, req.UserName, notes)
	return req, nil
}

// Status возвращает последнюю заявку пользователя, либо nil.
func (s *Service) Status(ctx context.Context, userUID string) (*models.AccessRequest, error) {
	const op = "services.access.Status"

	req, err := s.requests.FindLatestByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

// List возвращает заявки для административной панели.
func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*models.AccessRequest, error) {
	const op = "services.access.List"

	result, err := s.requests.ListAccessRequests(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Stats возвращает агрегаты по статусам заявок.
func (s *Service) Stats(ctx context.Context) (*models.RequestStats, error) {
	const op = "services.access.Stats"

	stats, err := s.requests.CountRequestsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
