package models

import "time"

// Действия, фиксируемые в истории работы пользователя с шаблонами.
const (
	ActionViewed        = "viewed"
	ActionEdited        = "edited"
	ActionBookmarked    = "bookmarked"
	ActionDownloaded    = "downloaded"
	ActionAccessedCanva = "accessed_canva"
)

/// HistoryEntry представляет одну запись истории: пользователь выполнил
// действие над шаблоном. Записи со значением ActionViewed за текущий месяц
// учитываются при проверке квоты просмотров.
type HistoryEntry struct {
	ID         int64
	UserUID    string
	TemplateID string
	Action     string

	// Данные дизайна Canva (для действий редактирования)
	CanvaDesignID    string
	CanvaDesignTitle string

	CreatedAt time.Time
}

// Bookmark представляет закладку пользователя на шаблон.
type Bookmark struct {
	UserUID      string
	TemplateID   string
	BookmarkedAt time.Time
}
