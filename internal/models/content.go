package models

import "time"

// ContentItem представляет элемент контент-каталога (старый каталог,
// в отличие от кураторских Template). Счётчики отражают основной сигнал
// вовлеченности этого каталога: использование и скачивание.
type ContentItem struct {
	ID          string
	Title       string
	ImageURLs   []string
	VideoURLs   []string
	Description string
	Instruction string
	Caption     string
	ContentType string
	Categories  []string
	Tags        []string

	CanvaTemplateID string

	UsageCount    int
	ViewCount     int
	DownloadCount int

	TrendingScore float64
	IsTrending    bool

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DummyContentItem используется для приёма данных контент-элемента из
// JSON-запроса администратора.
type DummyContentItem struct {
	Title           string   `json:"title" validate:"required"`
	ImageURLs       []string `json:"image_urls"`
	VideoURLs       []string `json:"video_urls"`
	Description     string   `json:"description"`
	Instruction     string   `json:"instruction"`
	Caption         string   `json:"caption"`
	ContentType     string   `json:"content_type" validate:"omitempty,oneof=Post Carousel Reel Story"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags"`
	CanvaTemplateID string   `json:"canva_template_id"`
}
