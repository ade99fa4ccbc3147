// Package models содержит доменные структуры маркетплейса шаблонов:
// пользователей, шаблоны, контент, заявки на доступ и зеркало подписок.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей системы.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User представляет зарегистрированного пользователя системы.
//
// Поля Canva* принадлежат менеджеру OAuth-подключения и изменяются только им.
// Поля TeamAccess и TeamRole выставляются только процессом одобрения заявок.
type User struct {
	UID          string  // Уникальный идентификатор пользователя
	Email        string  // Электронная почта (уникальная, используется для входа)
	Name         string  // Отображаемое имя
	PasswordHash string  // Хэш пароля пользователя
	Role         string  // Роль пользователя, ADMIN или USER
	BusinessType string  // Тип бизнеса (опционально)
	Subscription *string // Ссылка на запись подписки (может отсутствовать)

	// Интеграция с Canva
	CanvaAccessToken  string   // Текущий access token
	CanvaRefreshToken string   // Текущий refresh token
	CanvaUserID       string   // Идентификатор пользователя во внешней системе
	CanvaConnected    bool     // Признак активного подключения
	CanvaScopes       []string // Выданные scope-ы

	TeamAccess bool   // Одобрен ли доступ к команде
	TeamRole   string // Роль в команде после одобрения

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanvaCredentials группирует пару токенов и внешний идентификатор,
// которые всегда сохраняются атомарно одним обновлением.
type CanvaCredentials struct {
	AccessToken  string
	RefreshToken string
	CanvaUserID  string
	Scopes       []string
}

// RegisterRequest используется для приёма данных регистрации из JSON-запроса.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest используется для приёма данных входа из JSON-запроса.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
