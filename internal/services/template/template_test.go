package template

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/template-marketplace/internal/errs"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
	"github.com/magabrotheeeer/template-marketplace/internal/storage/repository"
)

type TemplatesMock struct{ mock.Mock }

func (m *TemplatesMock) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Template), args.Error(1)
}
func (m *TemplatesMock) ListPublished(ctx context.Context, filter models.TemplateListFilter) ([]*models.Template, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Template), args.Error(1)
}
func (m *TemplatesMock) CountPublished(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *TemplatesMock) IncrementTemplateCounter(ctx context.Context, id, column string, delta int) (*repository.CounterSnapshot, error) {
	args := m.Called(ctx, id, column, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.CounterSnapshot), args.Error(1)
}
func (m *TemplatesMock) UpdateTemplateTrending(ctx context.Context, id string, score float64, isTrending bool) error {
	args := m.Called(ctx, id, score, isTrending)
	return args.Error(0)
}

type HistoryMock struct{ mock.Mock }

func (m *HistoryMock) AddHistory(ctx context.Context, entry models.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *HistoryMock) ListHistory(ctx context.Context, userUID string, limit, offset int) ([]*models.HistoryEntry, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistoryEntry), args.Error(1)
}
func (m *HistoryMock) AddBookmark(ctx context.Context, userUID, templateID string) (bool, error) {
	args := m.Called(ctx, userUID, templateID)
	return args.Bool(0), args.Error(1)
}
func (m *HistoryMock) RemoveBookmark(ctx context.Context, userUID, templateID string) (bool, error) {
	args := m.Called(ctx, userUID, templateID)
	return args.Bool(0), args.Error(1)
}
func (m *HistoryMock) ListBookmarkedTemplates(ctx context.Context, userUID string, limit, offset int) ([]*models.Template, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Template), args.Error(1)
}
func (m *HistoryMock) CountViewedSince(ctx context.Context, userUID string, since time.Time) (int, error) {
	args := m.Called(ctx, userUID, since)
	return args.Int(0), args.Error(1)
}

type EntsMock struct{ mock.Mock }

func (m *EntsMock) ResolveAccess(ctx context.Context, userUID string) (*models.Entitlement, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entitlement), args.Error(1)
}
func (m *EntsMock) CheckViewQuota(ctx context.Context, userUID string, now time.Time) (*models.Entitlement, bool, error) {
	args := m.Called(ctx, userUID, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Entitlement), args.Bool(1), args.Error(2)
}

func newService(templates *TemplatesMock, history *HistoryMock, ents *EntsMock) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(templates, history, ents, log)
}

func published() *models.Template {
	return &models.Template{
		ID:               "tpl-1",
		Title:            "Пост для запуска продукта",
		IsPublished:      true,
		CanvaTemplateURL: "https://www.canva.com/design/share",
		CanvaEditURL:     "https://www.canva.com/design/edit",
	}
}

func TestList_ClampsPageToPlanLimit(t *testing.T) {
	templates := new(TemplatesMock)
	history := new(HistoryMock)
	ents := new(EntsMock)
	ents.On("ResolveAccess", mock.Anything, "user-1").
		Return(&models.Entitlement{TemplateLimit: models.FreeTemplateLimit}, nil)
	templates.On("ListPublished", mock.Anything, mock.MatchedBy(func(f models.TemplateListFilter) bool {
		return f.Limit == models.FreeTemplateLimit
	})).Return([]*models.Template{published()}, nil)
	templates.On("CountPublished", mock.Anything).Return(42, nil)

	result, err := newService(templates, history, ents).
		List(context.Background(), "user-1", models.TemplateListFilter{Limit: 50})

	assert.NoError(t, err)
	assert.Equal(t, 42, result.Total)
	templates.AssertExpectations(t)
}

func TestRead(t *testing.T) {
	t.Run("Успешный просмотр списывает квоту", func(t *testing.T) {
		templates := new(TemplatesMock)
		history := new(HistoryMock)
		ents := new(EntsMock)
		ents.On("CheckViewQuota", mock.Anything, "user-1", mock.Anything).
			Return(&models.Entitlement{TemplateLimit: models.FreeTemplateLimit}, true, nil)
		templates.On("GetTemplate", mock.Anything, "tpl-1").Return(published(), nil)
		history.On("AddHistory", mock.Anything, mock.MatchedBy(func(e models.HistoryEntry) bool {
			return e.Action == models.ActionViewed && e.TemplateID == "tpl-1"
		})).Return(nil)
		templates.On("IncrementTemplateCounter", mock.Anything, "tpl-1", "view_count", 1).
			Return(&repository.CounterSnapshot{ViewCount: 1, CreatedAt: time.Now()}, nil)
		templates.On("UpdateTemplateTrending", mock.Anything, "tpl-1", mock.Anything, mock.Anything).
			Return(nil)

		got, err := newService(templates, history, ents).Read(context.Background(), "user-1", "tpl-1")

		assert.NoError(t, err)
		assert.Equal(t, "tpl-1", got.ID)
		history.AssertExpectations(t)
	})

	t.Run("Исчерпанная квота блокирует просмотр", func(t *testing.T) {
		templates := new(TemplatesMock)
		history := new(HistoryMock)
		ents := new(EntsMock)
		templates.On("GetTemplate", mock.Anything, "tpl-1").Return(published(), nil)
		ents.On("CheckViewQuota", mock.Anything, "user-1", mock.Anything).
			Return(&models.Entitlement{TemplateLimit: models.FreeTemplateLimit}, false, nil)

		_, err := newService(templates, history, ents).Read(context.Background(), "user-1", "tpl-1")

		assert.ErrorIs(t, err, errs.ErrPermissionDenied)
		history.AssertNotCalled(t, "AddHistory", mock.Anything, mock.Anything)
	})

	t.Run("Отсутствующий шаблон отвечает NotFound и при исчерпанной квоте", func(t *testing.T) {
		templates := new(TemplatesMock)
		history := new(HistoryMock)
		ents := new(EntsMock)
		templates.On("GetTemplate", mock.Anything, "tpl-missing").
			Return(nil, errors.New("no rows"))

		_, err := newService(templates, history, ents).Read(context.Background(), "user-1", "tpl-missing")

		assert.ErrorIs(t, err, errs.ErrNotFound)
		ents.AssertNotCalled(t, "CheckViewQuota", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Неопубликованный шаблон недоступен", func(t *testing.T) {
		templates := new(TemplatesMock)
		history := new(HistoryMock)
		ents := new(EntsMock)
		draft := published()
		draft.IsPublished = false
		templates.On("GetTemplate", mock.Anything, "tpl-1").Return(draft, nil)

		_, err := newService(templates, history, ents).Read(context.Background(), "user-1", "tpl-1")

		assert.ErrorIs(t, err, errs.ErrNotFound)
		ents.AssertNotCalled(t, "CheckViewQuota", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestShareURL(t *testing.T) {
	templates := new(TemplatesMock)
	history := new(HistoryMock)
	ents := new(EntsMock)
	templates.On("GetTemplate", mock.Anything, "tpl-1").Return(published(), nil)
	history.On("AddHistory", mock.Anything, mock.MatchedBy(func(e models.HistoryEntry) bool {
		return e.Action == models.ActionEdited
	})).Return(nil)
	templates.On("IncrementTemplateCounter", mock.Anything, "tpl-1", "edit_count", 1).
		Return(&repository.CounterSnapshot{EditCount: 1, CreatedAt: time.Now()}, nil)
	templates.On("UpdateTemplateTrending", mock.Anything, "tpl-1", mock.Anything, mock.Anything).
		Return(nil)

	url, err := newService(templates, history, ents).ShareURL(context.Background(), "user-1", "tpl-1")

	assert.NoError(t, err)
	assert.Equal(t, "https://www.canva.com/design/edit", url)
}

func TestBookmark(t *testing.T) {
	t.Run("Первая закладка увеличивает счётчик", func(t *testing.T) {
		templates := new(TemplatesMock)
		history := new(HistoryMock)
		ents := new(EntsMock)
		templates.On("GetTemplate", mock.Anything, "tpl-1").Return(published(), nil)
		history.On("AddBookmark", mock.Anything, "user-1", "tpl-1").Return(true, nil)
		history.On("AddHistory", mock.Anything, mock.Anything).Return(nil)
		templates.On("IncrementTemplateCounter", mock.Anything, "tpl-1", "bookmark_count", 1).
			Return(&repository.CounterSnapshot{BookmarkCount: 1, CreatedAt: time.Now()}, nil)
		templates.On("UpdateTemplateTrending", mock.Anything, "tpl-1", mock.Anything, mock.Anything).
			Return(nil)

		err := newService(templates, history, ents).Bookmark(context.Background(), "user-1", "tpl-1")

		assert.NoError(t, err)
	})

	t.Run("Повторная закладка не трогает счётчик", func(t *testing.T) {
		templates := new(TemplatesMock)
		history := new(HistoryMock)
		ents := new(EntsMock)
		templates.On("GetTemplate", mock.Anything, "tpl-1").Return(published(), nil)
		history.On("AddBookmark", mock.Anything, "user-1", "tpl-1").Return(false, nil)

		err := newService(templates, history, ents).Bookmark(context.Background(), "user-1", "tpl-1")

		assert.NoError(t, err)
		templates.AssertNotCalled(t, "IncrementTemplateCounter",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestStatus(t *testing.T) {
	templates := new(TemplatesMock)
	history := new(HistoryMock)
	ents := new(EntsMock)
	ents.On("ResolveAccess", mock.Anything, "user-1").
		Return(&models.Entitlement{TemplateLimit: models.FreeTemplateLimit}, nil)
	history.On("CountViewedSince", mock.Anything, "user-1", mock.Anything).Return(7, nil)

	status, err := newService(templates, history, ents).Status(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, 7, status.ViewedCount)
	assert.Equal(t, 3, status.Remaining)
}
