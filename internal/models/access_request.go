package models

import "time"

// Статусы заявки на командный доступ. Переходы строго
// PENDING -> PROCESSING -> APPROVED | REJECTED; откат PROCESSING -> PENDING
// выполняется только при сбое внешнего провижининга.
const (
	RequestStatusPending    = "PENDING"
	RequestStatusProcessing = "PROCESSING"
	RequestStatusApproved   = "APPROVED"
	RequestStatusRejected   = "REJECTED"
)

// AccessRequest представляет заявку пользователя на доступ к команде Canva.
//
// UserName и UserEmail — снимок данных пользователя на момент подачи заявки.
/// Инвариант: у пользователя не может быть больше одной PENDING-заявки.
type AccessRequest struct {
	ID       string // Уникальный идентификатор заявки
	UserUID  string // UID заявителя
	UserName string // Имя на момент подачи
	UserEmail string // Почта на момент подачи

	Status string

	ProcessedBy *string    // UID администратора, взявшего заявку в обработку
	ProcessedAt *time.Time // Время взятия в обработку
	AdminNotes  string     // Заметки администратора

	// Детали команды после одобрения
	TeamMemberID string
	TeamRole     string

	RequestReason string
	BusinessType  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RequestStats агрегирует количество заявок по статусам для админ-панели.
type RequestStats struct {
	Pending    int `json:"PENDING"`
	Processing int `json:"PROCESSING"`
	Approved   int `json:"APPROVED"`
	Rejected   int `json:"REJECTED"`
}

// DummyAccessRequest используется для приёма данных заявки из JSON-запроса.
type DummyAccessRequest struct {
	RequestReason string `json:"request_reason"`
	BusinessType  string `json:"business_type"`
}

// DummyApprove используется для приёма решения администратора об одобрении.
type DummyApprove struct {
	AdminNotes string `json:"admin_notes"`
	TeamRole   string `json:"team_role" validate:"omitempty,oneof=member designer admin"`
}

// DummyReject используется для приёма решения администратора об отклонении.
type DummyReject struct {
	AdminNotes string `json:"admin_notes" validate:"required"`
}
