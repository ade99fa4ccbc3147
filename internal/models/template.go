// Package models содержит доменные структуры маркетплейса шаблонов.
package models

import "time"

// Типы контента, допустимые для шаблонов и контент-элементов.
const (
	ContentTypePost     = "Post"
	ContentTypeCarousel = "Carousel"
	ContentTypeReel     = "Reel"
	ContentTypeStory    = "Story"
)

// Template представляет кураторский шаблон каталога.
//
// TrendingScore и IsTrending — производные от счётчиков и возраста записи,
// пересчитываются перед каждым сохранением.
type Template struct {
	ID          string   // Уникальный идентификатор шаблона
	Title       string   // Заголовок
	Description string   // Описание
	Instruction string   // Инструкция по использованию
	Caption     string   // Подпись для публикации
	Tags        []string // Теги для поиска
	ContentType string   // Тип контента: Post, Carousel, Reel, Story

	// Интеграция с Canva
	CanvaTemplateID  string // Внутренний идентификатор, не отдается пользователям
	CanvaTemplateURL string // Публичная share-ссылка
	CanvaEditURL     string

	ThumbnailURL  string
	PreviewImages []string

	IsPublished bool
	PublishedAt *time.Time

	// Счетчики вовлеченности
	ViewCount     int
	EditCount     int
	BookmarkCount int

	TrendingScore float64
	IsTrending    bool

	CreatedBy string // UID администратора, создавшего шаблон
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TemplateListFilter описывает параметры выборки опубликованных шаблонов.
type TemplateListFilter struct {
	Search      string
	ContentType string
	Tags        []string
	SortBy      string // newest, popular, trending
	Limit       int
	Offset      int
}

// DummyTemplate используется для приёма данных шаблона из JSON-запроса
// администратора, прежде чем конвертировать их в Template.
type DummyTemplate struct {
	Title            string   `json:"title" validate:"required"`
	Description      string   `json:"description" validate:"required"`
	Instruction      string   `json:"instruction"`
	Caption          string   `json:"caption"`
	Tags             []string `json:"tags"`
	ContentType      string   `json:"content_type" validate:"required,oneof=Post Carousel Reel Story"`
	CanvaTemplateID  string   `json:"canva_template_id"`
	CanvaTemplateURL string   `json:"canva_template_url"`
	ThumbnailURL     string   `json:"thumbnail_url"`
	IsPublished      bool     `json:"is_published"`
}
