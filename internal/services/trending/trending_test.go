package trending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/template-marketplace/internal/storage/repository"
)

func TestRecencyWeight(t *testing.T) {
	tests := []struct {
		name string
		age  float64
		want float64
	}{
		{name: "Свежая запись", age: 0, want: 1},
		{name: "Половина окна", age: 15, want: 0.5},
		{name: "Граница окна", age: 30, want: 0},
		{name: "Старше окна", age: 90, want: 0},
		{name: "Отрицательный возраст ограничен единицей", age: -5, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RecencyWeight(tt.age), 1e-9)
		})
	}
}

func TestRecencyWeight_Monotonic(t *testing.T) {
	prev := RecencyWeight(0)
	for age := 1.0; age <= 60; age++ {
		cur := RecencyWeight(age)
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0.0)
		assert.LessOrEqual(t, cur, 1.0)
		prev = cur
	}
}

func TestForTemplate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		snap         repository.CounterSnapshot
		wantValue    float64
		wantTrending bool
	}{
		{
			name: "Свежий активный шаблон выше порога",
			snap: repository.CounterSnapshot{
				ViewCount: 20, EditCount: 30, BookmarkCount: 10,
				CreatedAt: now,
			},
			// 30*0.5 + 10*0.3 + 20*0.2 = 22, вес свежести 1
			wantValue:    22,
			wantTrending: true,
		},
		{
			name: "Те же счётчики месяц спустя",
			snap: repository.CounterSnapshot{
				ViewCount: 20, EditCount: 30, BookmarkCount: 10,
				CreatedAt: now.AddDate(0, 0, -30),
			},
			wantValue:    0,
			wantTrending: false,
		},
		{
			name: "Оценка на границе порога не трендовая",
			snap: repository.CounterSnapshot{
				EditCount: 30,
				CreatedAt: now,
			},
			// 30*0.5 = 15, строго больше не выполняется
			wantValue:    15,
			wantTrending: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForTemplate(&tt.snap, now)
			assert.InDelta(t, tt.wantValue, got.Value, 1e-9)
			assert.Equal(t, tt.wantTrending, got.IsTrending)
		})
	}
}

func TestForContent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	snap := repository.CounterSnapshot{
		UsageCount: 15, DownloadCount: 10, ViewCount: 5,
		CreatedAt: now,
	}
	// 15*0.4 + 10*0.4 + 5*0.2 = 11
	got := ForContent(&snap, now)
	assert.InDelta(t, 11.0, got.Value, 1e-9)
	assert.True(t, got.IsTrending)
}

func TestForTemplate_Idempotent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := repository.CounterSnapshot{
		ViewCount: 7, EditCount: 3, BookmarkCount: 2,
		CreatedAt: now.AddDate(0, 0, -10),
	}

	first := ForTemplate(&snap, now)
	second := ForTemplate(&snap, now)
	assert.Equal(t, first, second)
}
