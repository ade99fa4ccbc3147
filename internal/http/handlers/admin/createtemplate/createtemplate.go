// Package createtemplate реализует административные HTTP-обработчики
// создания и публикации кураторских шаблонов.
package createtemplate

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

// Service описывает интерфейс бизнес-логики наполнения каталога шаблонов.
type Service interface {
	CreateTemplate(ctx context.Context, adminUID string, req models.DummyTemplate) (string, error)
	PublishTemplate(ctx context.Context, templateID string, publish bool) error
}

// Handler обрабатывает создание шаблонов.
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
// @Summary Создать кураторский шаблон
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.DummyTemplate true "Данные шаблона"
// @Success 200 {object} map[string]any "ID созданного шаблона"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/templates [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.createtemplate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	adminUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	var req models.DummyTemplate
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

	id, err := h.service.CreateTemplate(r.Context(), adminUID, req)
	if err != nil {
		log.Error("failed to create template", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not create template"))
		return
	}

	log.Info("template created", slog.String("template_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"template_id": id,
	}))
}

// PublishRequest — структура входных данных публикации.
type PublishRequest struct {
	Publish bool `json:"publish"`
}

// PublishHandler обрабатывает публикацию шаблона.
type PublishHandler struct {
	log     *slog.Logger
	service Service
}

// NewPublish создает новый PublishHandler с переданным логгером и сервисом.
func NewPublish(log *slog.Logger, service Service) *PublishHandler {
	return &PublishHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Опубликовать или снять с публикации шаблон
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID шаблона"
// @Param request body PublishRequest true "Флаг публикации"
// @Success 200 {object} response.Response "OK"
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден"
// @Router /admin/templates/{id}/publish [post]
// @Security BearerAuth
func (h *PublishHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.createtemplate.publish"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	templateID := chi.URLParam(r, "id")
	if templateID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("template id is required"))
		return
	}

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.PublishTemplate(r.Context(), templateID, req.Publish); err != nil {
		log.Error("failed to publish template", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not publish template"))
		return
	}

	log.Info("template publish state changed",
		slog.String("template_id", templateID), slog.Bool("publish", req.Publish))
	render.JSON(w, r, response.OK())
}
