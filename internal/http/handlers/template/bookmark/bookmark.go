// Package bookmark реализует HTTP-обработчики закладок: добавление,
// удаление и список шаблонов в закладках пользователя.
package bookmark

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// Service описывает интерфейс бизнес-логики закладок.
type Service interface {
	Bookmark(ctx context.Context, userUID, templateID string) error
	Unbookmark(ctx context.Context, userUID, templateID string) error
	Bookmarks(ctx context.Context, userUID string, limit, offset int) ([]*models.Template, error)
}

// AddHandler обрабатывает добавление шаблона в закладки.
type AddHandler struct {
	log     *slog.Logger
	service Service
}

// NewAdd создает обработчик добавления закладки.
func NewAdd(log *slog.Logger, service Service) *AddHandler {
	return &AddHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Добавить шаблон в закладки
// @Tags Templates
// @Produce  json
// @Param id path string true "ID шаблона"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден"
// @Router /templates/{id}/bookmark [post]
// @Security BearerAuth
func (h *AddHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.template.bookmark.add"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	templateID := chi.URLParam(r, "id")

	if err := h.service.Bookmark(r.Context(), userUID, templateID); err != nil {
		log.Error("failed to add bookmark", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not add bookmark"))
		return
	}

	log.Info("bookmark added", slog.String("template_id", templateID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"bookmarked": true,
	}))
}

// RemoveHandler обрабатывает удаление шаблона из закладок.
type RemoveHandler struct {
	log     *slog.Logger
	service Service
}

// NewRemove создает обработчик удаления закладки.
func NewRemove(log *slog.Logger, service Service) *RemoveHandler {
	return &RemoveHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Убрать шаблон из закладок
// @Tags Templates
// @Produce  json
// @Param id path string true "ID шаблона"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Закладка не найдена"
// @Router /templates/{id}/bookmark [delete]
// @Security BearerAuth
func (h *RemoveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.template.bookmark.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	templateID := chi.URLParam(r, "id")

	if err := h.service.Unbookmark(r.Context(), userUID, templateID); err != nil {
		log.Error("failed to remove bookmark", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not remove bookmark"))
		return
	}

	log.Info("bookmark removed", slog.String("template_id", templateID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"bookmarked": false,
	}))
}

// ListHandler обрабатывает выдачу списка закладок пользователя.
type ListHandler struct {
	log     *slog.Logger
	service Service
}

// NewList создает обработчик списка закладок.
func NewList(log *slog.Logger, service Service) *ListHandler {
	return &ListHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список закладок
// @Tags Templates
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Шаблоны из закладок"
// @Router /templates/bookmarks [get]
// @Security BearerAuth
func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.template.bookmark.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	limit, offset := 20, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}

	templates, err := h.service.Bookmarks(r.Context(), userUID, limit, offset)
	if err != nil {
		log.Error("failed to list bookmarks", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not list bookmarks"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"templates": templates,
	}))
}
