// Package listrequests реализует административные HTTP-обработчики
// списка заявок на командный доступ и агрегатов по статусам.
package listrequests

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

const defaultLimit = 20

// Service описывает интерфейс бизнес-логики заявок для админ-панели.
type Service interface {
	List(ctx context.Context, status string, limit, offset int) ([]*models.AccessRequest, error)
	Stats(ctx context.Context) (*models.RequestStats, error)
}

// Handler обрабатывает выдачу списка заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список заявок на командный доступ
// @Tags Admin
// @Produce  json
// @Param status query string false "Фильтр по статусу (PENDING, PROCESSING, APPROVED, REJECTED)"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список заявок"
// @Router /admin/access/requests [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.listrequests"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}

	requests, err := h.service.List(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		log.Error("failed to list access requests", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not list access requests"))
		return
	}

	log.Info("access requests listed", slog.Int("count", len(requests)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"requests": requests,
	}))
}

// StatsHandler обрабатывает выдачу агрегатов по статусам заявок.
type StatsHandler struct {
	log     *slog.Logger
	service Service
}

// NewStats создает новый StatsHandler с переданным логгером и сервисом.
func NewStats(log *slog.Logger, service Service) *StatsHandler {
	return &StatsHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Агрегаты по заявкам на командный доступ
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any "Количество заявок по статусам"
// @Router /admin/access/stats [get]
// @Security BearerAuth
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.listrequests.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error("failed to count access requests", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not count access requests"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"stats": stats,
	}))
}
