// Package status реализует HTTP-обработчик выдачи состояния последней
// заявки пользователя на командный доступ.
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
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// Handler обрабатывает запросы состояния заявки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики состояния заявки.
type Service interface {
	Status(ctx context.Context, userUID string) (*models.AccessRequest, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Состояние заявки на командный доступ
// @Description Возвращает последнюю заявку пользователя, либо пустой ответ, если заявок не было.
// @Tags Access
// @Produce  json
// @Success 200 {object} map[string]any "Последняя заявка"
// @Router /access/status [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	req, err := h.service.Status(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get request status", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not get request status"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"request": req,
	}))
}
