// Package read реализует HTTP-обработчик просмотра карточки шаблона.
//
// Handler извлекает ID из URL-параметров и вызывает бизнес-логику,
// которая списывает месячную квоту просмотров. Исчерпанная квота
// возвращается клиенту статусом 403.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// Handler обрабатывает запросы на просмотр карточки шаблона.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики просмотра шаблона.
type Service interface {
	Read(ctx context.Context, userUID, templateID string) (*models.Template, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Карточка шаблона
// @Description Возвращает карточку опубликованного шаблона, списывая месячную квоту просмотров.
// @Tags Templates
// @Produce  json
// @Param id path string true "ID шаблона"
// @Success 200 {object} map[string]any "Карточка шаблона"
// @Failure 403 {object} response.ErrorResponse "Месячный лимит просмотров исчерпан"
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден"
// @Router /templates/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.template.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	templateID := chi.URLParam(r, "id")

	t, err := h.service.Read(r.Context(), userUID, templateID)
	if err != nil {
		log.Error("failed to read template", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not read template"))
		return
	}

	log.Info("template read", slog.String("template_id", templateID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"template": t,
	}))
}
