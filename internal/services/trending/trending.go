// Package trending вычисляет trending-оценку сущностей каталога.
// Оценка — чистая функция счётчиков и возраста записи, пересчитывается
// перед каждым сохранением сущности.
package trending

import (
	"time"

	"github.com/magabrotheeeer/template-marketplace/internal/lib/month"
	"github.com/magabrotheeeer/template-marketplace/internal/storage/repository"
)

// Пороговые значения оценки, выше которых сущность помечается трендовой.
const (
	ContentThreshold  = 10.0
	TemplateThreshold = 15.0
)

// Веса вкладов счётчиков. Контент-каталог и кураторские шаблоны отслеживают
// разные сигналы вовлечённости, поэтому векторы различаются.
const (
	contentUsageWeight    = 0.4
	contentDownloadWeight = 0.4
	contentViewWeight     = 0.2

	templateEditWeight     = 0.5
	templateBookmarkWeight = 0.3
	templateViewWeight     = 0.2
)

// Score trending-оценка и признак трендовости.
type Score struct {
	Value      float64
	IsTrending bool
}

// RecencyWeight линейно затухающий вес свежести: 1 в момент создания,
// 0 начиная с 30 дней. Отрицательный возраст (рассинхронизация часов)
// ограничивается единицей.
func RecencyWeight(ageInDays float64) float64 {
	w := (30 - ageInDays) / 30
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// ForContent вычисляет оценку контент-элемента по снимку счётчиков.
func ForContent(snap *repository.CounterSnapshot, now time.Time) Score {
	raw := float64(snap.UsageCount)*contentUsageWeight +
		float64(snap.DownloadCount)*contentDownloadWeight +
		float64(snap.ViewCount)*contentViewWeight
	value := raw * RecencyWeight(month.AgeInDays(snap.CreatedAt, now))
	return Score{Value: value, IsTrending: value > ContentThreshold}
}

// ForTemplate вычисляет оценку шаблона по снимку счётчиков.
func ForTemplate(snap *repository.CounterSnapshot, now time.Time) Score {
	raw := float64(snap.EditCount)*templateEditWeight +
		float64(snap.BookmarkCount)*templateBookmarkWeight +
		float64(snap.ViewCount)*templateViewWeight
	value := raw * RecencyWeight(month.AgeInDays(snap.CreatedAt, now))
	return Score{Value: value, IsTrending: value > TemplateThreshold}
}
