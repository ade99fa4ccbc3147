// Package status реализует HTTP-обработчик выдачи сводки квоты пользователя:
// права доступа, количество просмотренных за месяц шаблонов и остаток.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	templateservice "github.com/magabrotheeeer/template-marketplace/internal/services/template"
)

// Handler обрабатывает запросы на выдачу сводки квоты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики сводки квоты.
type Service interface {
	Status(ctx context.Context, userUID string) (*templateservice.AccessStatus, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводка квоты просмотров
// @Description Возвращает права доступа, просмотрено за месяц и остаток квоты.
// @Tags Templates
// @Produce  json
// @Success 200 {object} map[string]any "Сводка квоты"
// @Router /templates/access-status [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.template.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	status, err := h.service.Status(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get access status", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not get access status"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(status))
}
