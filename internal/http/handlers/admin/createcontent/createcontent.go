// Package createcontent реализует административный HTTP-обработчик
// создания контент-элементов каталога.
package createcontent

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// Service описывает интерфейс бизнес-логики наполнения контент-каталога.
type Service interface {
	CreateContentItem(ctx context.Context, adminUID string, req models.DummyContentItem) (string, error)
	UpdateContentItem(ctx context.Context, id string, req models.DummyContentItem) error
}

// Handler обрабатывает создание контент-элементов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Создать контент-элемент
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.DummyContentItem true "Данные контент-элемента"
// @Success 200 {object} map[string]any "ID созданного элемента"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/content [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.createcontent"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	adminUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	var req models.DummyContentItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		validateErr := err.(validator.ValidationErrors)
		log.Error("invalid request", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(validateErr))
		return
	}

	id, err := h.service.CreateContentItem(r.Context(), adminUID, req)
	if err != nil {
		log.Error("failed to create content item", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not create content item"))
		return
	}

	log.Info("content item created", slog.String("content_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"content_id": id,
	}))
}

// UpdateHandler обрабатывает обновление контент-элементов.
type UpdateHandler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// NewUpdate создает новый UpdateHandler с переданным логгером и сервисом.
func NewUpdate(log *slog.Logger, service Service) *UpdateHandler {
	return &UpdateHandler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Обновить контент-элемент
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID контент-элемента"
// @Param request body models.DummyContentItem true "Данные контент-элемента"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Элемент не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/content/{id} [put]
// @Security BearerAuth
func (h *UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.updatecontent"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	contentID := chi.URLParam(r, "id")

	var req models.DummyContentItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		validateErr := err.(validator.ValidationErrors)
		log.Error("invalid request", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(validateErr))
		return
	}

	if err := h.service.UpdateContentItem(r.Context(), contentID, req); err != nil {
		log.Error("failed to update content item", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not update content item"))
		return
	}

	log.Info("content item updated", slog.String("content_id", contentID))
	render.JSON(w, r, response.OK())
}
