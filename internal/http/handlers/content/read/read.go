// Package read реализует HTTP-обработчики карточки контент-элемента
// и учёта его использования и скачивания.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// Service описывает интерфейс бизнес-логики контент-элементов.
type Service interface {
	GetContentItem(ctx context.Context, id string) (*models.ContentItem, error)
	RegisterContentUsage(ctx context.Context, id string)
	RegisterContentDownload(ctx context.Context, id string)
}

// Handler обрабатывает выдачу карточки контент-элемента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Карточка контент-элемента
// @Tags Content
// @Produce  json
// @Param id path string true "ID контент-элемента"
// @Success 200 {object} map[string]any "Контент-элемент"
// @Failure 404 {object} response.ErrorResponse "Элемент не найден"
// @Router /content/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("content id is required"))
		return
	}

	item, err := h.service.GetContentItem(r.Context(), id)
	if err != nil {
		log.Error("failed to get content item", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not get content item"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"item": item,
	}))
}

// UsageHandler фиксирует использование контент-элемента.
type UsageHandler struct {
	log     *slog.Logger
	service Service
}

// NewUsage создает новый UsageHandler с переданным логгером и сервисом.
func NewUsage(log *slog.Logger, service Service) *UsageHandler {
	return &UsageHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Зафиксировать использование контент-элемента
// @Tags Content
// @Produce  json
// @Param id path string true "ID контент-элемента"
// @Success 200 {object} response.Response "OK"
// @Router /content/{id}/usage [post]
// @Security BearerAuth
func (h *UsageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.read.usage"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("content id is required"))
		return
	}

	h.service.RegisterContentUsage(r.Context(), id)
	log.Info("content usage registered", slog.String("content_id", id))
	render.JSON(w, r, response.OK())
}

// DownloadHandler фиксирует скачивание контент-элемента.
type DownloadHandler struct {
	log     *slog.Logger
	service Service
}

// NewDownload создает новый DownloadHandler с переданным логгером и сервисом.
func NewDownload(log *slog.Logger, service Service) *DownloadHandler {
	return &DownloadHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Зафиксировать скачивание контент-элемента
// @Tags Content
// @Produce  json
// @Param id path string true "ID контент-элемента"
// @Success 200 {object} response.Response "OK"
// @Router /content/{id}/download [post]
// @Security BearerAuth
func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.read.download"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("content id is required"))
		return
	}

	h.service.RegisterContentDownload(r.Context(), id)
	log.Info("content download registered", slog.String("content_id", id))
	render.JSON(w, r, response.OK())
}
