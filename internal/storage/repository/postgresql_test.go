package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/template-marketplace/internal/migrations"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

func setupTestDb(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err, "failed to create storage")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "failed to run migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			storage.DB.Close()
		}
		if pgContainer != nil {
			pgContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}

func seedUser(t *testing.T, s *Storage, email string) string {
	uid, err := s.RegisterUser(context.Background(), models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
	})
	require.NoError(t, err)
	return uid
}

func seedTemplate(t *testing.T, s *Storage, title string) string {
	now := time.Now()
	id, err := s.CreateTemplate(context.Background(), models.Template{
		Title:       title,
		Description: "test template",
		ContentType: "Post",
		IsPublished: true,
		PublishedAt: &now,
	})
	require.NoError(t, err)
	return id
}

func TestStorage_AccessRequestTransitions(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	userUID := seedUser(t, storage, "applicant@example.com")
	adminUID := seedUser(t, storage, "admin@example.com")

	req := models.AccessRequest{
		ID:            uuid.NewString(),
		UserUID:       userUID,
		UserName:      "Test User",
		UserEmail:     "applicant@example.com",
		Status:        models.RequestStatusPending,
		RequestReason: "want team access",
	}
	require.NoError(t, storage.CreateAccessRequest(ctx, req))

	pending, err := storage.FindPendingByUser(ctx, userUID)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, req.ID, pending.ID)

	ok, err := storage.MarkProcessing(ctx, req.ID, adminUID, "taking it")
	require.NoError(t, err)
	assert.True(t, ok)

	// Повторная попытка проигрывает условному обновлению
	ok, err = storage.MarkProcessing(ctx, req.ID, adminUID, "second take")
	require.NoError(t, err)
	assert.False(t, ok)

	// Откат возвращает заявку в PENDING и очищает данные обработки
	require.NoError(t, storage.RollbackProcessing(ctx, req.ID))
	pending, err = storage.FindPendingByUser(ctx, userUID)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Nil(t, pending.ProcessedBy)

	ok, err = storage.MarkProcessing(ctx, req.ID, adminUID, "retry")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, storage.MarkApproved(ctx, req.ID, "tm-123", "member", "done"))

	approved, err := storage.GetAccessRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, approved.Status)
	assert.Equal(t, "tm-123", approved.TeamMemberID)
	assert.Equal(t, "member", approved.TeamRole)

	stats, err := storage.CountRequestsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 0, stats.Pending)
}

func TestStorage_MarkRejected(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	userUID := seedUser(t, storage, "applicant@example.com")
	adminUID := seedUser(t, storage, "admin@example.com")

	req := models.AccessRequest{
		ID:      uuid.NewString(),
		UserUID: userUID,
		Status:  models.RequestStatusPending,
	}
	require.NoError(t, storage.CreateAccessRequest(ctx, req))

	ok, err := storage.MarkRejected(ctx, req.ID, adminUID, "not eligible")
	require.NoError(t, err)
	assert.True(t, ok)

	// Уже отклоненную заявку нельзя отклонить повторно
	ok, err = storage.MarkRejected(ctx, req.ID, adminUID, "again")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_UpsertSubscription(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	userUID := seedUser(t, storage, "payer@example.com")

	now := time.Now()
	sub := models.Subscription{
		UserUID:              userUID,
		StripeCustomerID:     "cus_123",
		StripeSubscriptionID: "sub_123",
		PlanName:             "Pro",
		Status:               models.SubscriptionStatusActive,
		StartDate:            &now,
	}

	firstID, err := storage.UpsertSubscription(ctx, sub)
	require.NoError(t, err)
	require.NotEmpty(t, firstID)

	// Повторная доставка того же события не создает дубликата
	sub.Status = models.SubscriptionStatusPastDue
	secondID, err := storage.UpsertSubscription(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	got, err := storage.GetSubscriptionByUser(ctx, userUID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.SubscriptionStatusPastDue, got.Status)
	assert.Equal(t, "Pro", got.PlanName)
}

func TestStorage_FindPlan(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()

	bySlug, err := storage.FindPlan(ctx, "pro")
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, "Pro", bySlug.Name)

	byName, err := storage.FindPlan(ctx, "Pro")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "pro", byName.Slug)

	missing, err := storage.FindPlan(ctx, "enterprise")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStorage_Bookmarks(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	userUID := seedUser(t, storage, "reader@example.com")
	templateID := seedTemplate(t, storage, "Summer Sale")

	added, err := storage.AddBookmark(ctx, userUID, templateID)
	require.NoError(t, err)
	assert.True(t, added)

	// Повторная закладка не создает дубликата
	added, err = storage.AddBookmark(ctx, userUID, templateID)
	require.NoError(t, err)
	assert.False(t, added)

	list, err := storage.ListBookmarkedTemplates(ctx, userUID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Summer Sale", list[0].Title)

	removed, err := storage.RemoveBookmark(ctx, userUID, templateID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = storage.RemoveBookmark(ctx, userUID, templateID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStorage_CountViewedSince(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	userUID := seedUser(t, storage, "viewer@example.com")
	firstTemplate := seedTemplate(t, storage, "First")
	secondTemplate := seedTemplate(t, storage, "Second")

	for _, templateID := range []string{firstTemplate, firstTemplate, secondTemplate} {
		require.NoError(t, storage.AddHistory(ctx, models.HistoryEntry{
			UserUID:    userUID,
			TemplateID: templateID,
			Action:     models.ActionViewed,
		}))
	}

	since := time.Now().Add(-time.Hour)

	// Каждое открытие карточки расходует квоту, повторный просмотр
	// того же шаблона не исключение
	count, err := storage.CountViewedSince(ctx, userUID, since)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Действия других типов и чужие просмотры не учитываются
	require.NoError(t, storage.AddHistory(ctx, models.HistoryEntry{
		UserUID:    userUID,
		TemplateID: secondTemplate,
		Action:     models.ActionBookmarked,
	}))
	otherUID := seedUser(t, storage, "other@example.com")
	require.NoError(t, storage.AddHistory(ctx, models.HistoryEntry{
		UserUID:    otherUID,
		TemplateID: firstTemplate,
		Action:     models.ActionViewed,
	}))

	count, err = storage.CountViewedSince(ctx, userUID, since)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
