// Package errs определяет закрытый набор доменных ошибок ядра.
//
// Ошибки несут только доменный смысл; сопоставление с HTTP-статусами
// выполняется на транспортном уровне (internal/http/response), поэтому
// сервисы остаются независимыми от транспорта.
package errs

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок ядра.
var (
	// ErrPermissionDenied нет необходимых прав или квота исчерпана
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound сущность не найдена
	ErrNotFound = errors.New("not found")

	// ErrInvalidState нарушено предусловие машины состояний
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict конфликт с существующим состоянием
	ErrConflict = errors.New("conflict")

	// ErrValidation некорректные входные данные
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized внешние учетные данные недействительны или истекли
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited внешний сервис ограничил частоту запросов
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable внешний сервис недоступен
	ErrUnavailable = errors.New("service unavailable")
)

// Именованные отказы подсистемы доступа и OAuth-подключения.
var (
	// ErrDuplicatePending у пользователя уже есть PENDING-заявка
	ErrDuplicatePending = fmt.Errorf("%w: access request already pending", ErrConflict)

	// ErrAlreadyGranted командный доступ уже выдан
	ErrAlreadyGranted = fmt.Errorf("%w: team access already granted", ErrConflict)

	// ErrAlreadyMember пользователь уже состоит в команде
	ErrAlreadyMember = fmt.Errorf("%w: user is already a team member", ErrConflict)

	// ErrOAuthDenied провайдер вернул ошибку авторизации
	ErrOAuthDenied = fmt.Errorf("%w: oauth authorization denied", ErrValidation)

	// ErrMissingParameters в callback отсутствует code или state
	ErrMissingParameters = fmt.Errorf("%w: missing authorization code or user id", ErrValidation)

	// ErrVerifierNotFound code verifier не найден или истек
	ErrVerifierNotFound = fmt.Errorf("%w: code verifier", ErrNotFound)

	// ErrReauthRequired сохраненные токены сброшены, требуется переподключение
	ErrReauthRequired = fmt.Errorf("%w: reconnect required", ErrUnauthorized)

	// ErrApproverNotConnected у администратора нет подключенного аккаунта Canva
	ErrApproverNotConnected = fmt.Errorf("%w: approver has no connected canva account", ErrInvalidState)
)

// ExternalError описывает сбой внешнего сервиса с сохранением
// классификации (Kind — один из базовых видов выше).
type ExternalError struct {
	Service string // Имя внешнего сервиса
	Kind    error  // Классификация: ErrUnauthorized, ErrRateLimited, ErrUnavailable...
	Message string
	Err     error
}

// Error реализует интерфейс error.
func (e *ExternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Service, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

// Unwrap возвращает исходную ошибку.
func (e *ExternalError) Unwrap() error { return e.Err }

// Is сопоставляет ошибку с её классификацией, чтобы работал errors.Is
// с базовыми видами.
func (e *ExternalError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// External создает ошибку внешнего сервиса с заданной классификацией.
func External(service string, kind error, message string, err error) *ExternalError {
	return &ExternalError{Service: service, Kind: kind, Message: message, Err: err}
}
